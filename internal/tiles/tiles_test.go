package tiles

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	c, err := Lookup("31UDQ")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if c.Lat != 48.8273399 || c.Lon != 2.4206416 {
		t.Errorf("unexpected centroid %+v", c)
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	upper, err := Lookup("31UDQ")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	lower, err := Lookup("31udq")
	if err != nil {
		t.Fatalf("lowercase Lookup failed: %v", err)
	}
	if upper != lower {
		t.Errorf("case changed the result: %+v vs %+v", upper, lower)
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("99ZZZ")
	if !errors.Is(err, ErrUnknownTile) {
		t.Fatalf("expected ErrUnknownTile, got %v", err)
	}
}

func TestCentroidPointString(t *testing.T) {
	c := Centroid{Lat: 48.8273399, Lon: 2.4206416}
	if got := c.PointString(); got != "48.8273399,2.4206416" {
		t.Errorf("PointString = %q", got)
	}
}
