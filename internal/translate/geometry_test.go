package translate

import (
	"reflect"
	"testing"
)

func TestParseFootprint(t *testing.T) {
	ring, err := ParseFootprint("POLYGON ((8.5 50.1,8.6 50.2,8.7 50.0,8.5 50.1))")
	if err != nil {
		t.Fatalf("ParseFootprint failed: %v", err)
	}
	want := [][]float64{{8.5, 50.1}, {8.6, 50.2}, {8.7, 50.0}, {8.5, 50.1}}
	if !reflect.DeepEqual(ring, want) {
		t.Errorf("ring = %v, want %v", ring, want)
	}
}

func TestParseFootprint_Invalid(t *testing.T) {
	for _, in := range []string{
		"POINT (8.5 50.1)",
		"POLYGON ((8.5))",
		"POLYGON ((8.5 north))",
		"",
	} {
		if _, err := ParseFootprint(in); err == nil {
			t.Errorf("ParseFootprint(%q) succeeded, want error", in)
		}
	}
}

const gmlDoc = `<gml:Polygon xmlns:gml="http://www.opengis.net/gml">
  <gml:outerBoundaryIs>
    <gml:LinearRing>
      <gml:coordinates>50.1,8.5 50.2,8.6 50.0,8.7 50.1,8.5</gml:coordinates>
    </gml:LinearRing>
  </gml:outerBoundaryIs>
</gml:Polygon>`

func TestParseGMLRing_ReversesAxisOrder(t *testing.T) {
	ring, err := ParseGMLRing(gmlDoc)
	if err != nil {
		t.Fatalf("ParseGMLRing failed: %v", err)
	}
	// Source pairs are lat,lon; positions come back as [lon, lat].
	want := [][]float64{{8.5, 50.1}, {8.6, 50.2}, {8.7, 50.0}, {8.5, 50.1}}
	if !reflect.DeepEqual(ring, want) {
		t.Errorf("ring = %v, want %v", ring, want)
	}
}

func TestParseGMLRing_Invalid(t *testing.T) {
	for name, in := range map[string]string{
		"not xml":     "POLYGON ((0 0))",
		"empty ring":  `<gml:Polygon xmlns:gml="http://www.opengis.net/gml"><gml:outerBoundaryIs><gml:LinearRing><gml:coordinates></gml:coordinates></gml:LinearRing></gml:outerBoundaryIs></gml:Polygon>`,
		"lone number": `<gml:Polygon xmlns:gml="http://www.opengis.net/gml"><gml:outerBoundaryIs><gml:LinearRing><gml:coordinates>50.1</gml:coordinates></gml:LinearRing></gml:outerBoundaryIs></gml:Polygon>`,
	} {
		if _, err := ParseGMLRing(in); err == nil {
			t.Errorf("%s: ParseGMLRing succeeded, want error", name)
		}
	}
}
