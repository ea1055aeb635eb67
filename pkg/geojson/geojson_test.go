package geojson

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNewPolygon_ClosesOpenRing(t *testing.T) {
	g, err := NewPolygon([][]float64{{0, 0}, {1, 0}, {1, 1}})
	if err != nil {
		t.Fatalf("NewPolygon failed: %v", err)
	}
	ring, err := g.OuterRing()
	if err != nil {
		t.Fatalf("OuterRing failed: %v", err)
	}
	want := [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 0}}
	if !reflect.DeepEqual(ring, want) {
		t.Errorf("ring = %v, want closed ring %v", ring, want)
	}
}

func TestNewPolygon_KeepsClosedRing(t *testing.T) {
	closed := [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 0}}
	g, err := NewPolygon(closed)
	if err != nil {
		t.Fatalf("NewPolygon failed: %v", err)
	}
	ring, err := g.OuterRing()
	if err != nil {
		t.Fatalf("OuterRing failed: %v", err)
	}
	if len(ring) != 4 {
		t.Errorf("closed ring grew to %d positions", len(ring))
	}
}

func TestNewPolygon_Invalid(t *testing.T) {
	if _, err := NewPolygon([][]float64{{0, 0}, {1, 1}}); err == nil {
		t.Error("2-position ring accepted")
	}
	if _, err := NewPolygon([][]float64{{0, 0}, {1}, {1, 1}}); err == nil {
		t.Error("1-value position accepted")
	}
}

func TestPoint(t *testing.T) {
	g, err := NewPoint(2.4206416, 48.8273399)
	if err != nil {
		t.Fatalf("NewPoint failed: %v", err)
	}
	coords, err := g.Point()
	if err != nil {
		t.Fatalf("Point failed: %v", err)
	}
	if coords[0] != 2.4206416 || coords[1] != 48.8273399 {
		t.Errorf("coords = %v", coords)
	}
	if _, err := g.Polygon(); err == nil {
		t.Error("Polygon accessor accepted a Point geometry")
	}
}

func TestCoordinateList(t *testing.T) {
	got, err := CoordinateList([][]float64{{0, 0}, {1, 1}, {0, 1}, {0, 0}})
	if err != nil {
		t.Fatalf("CoordinateList failed: %v", err)
	}
	want := "0.0000000 0.0000000,1.0000000 1.0000000,0.0000000 1.0000000,0.0000000 0.0000000"
	if got != want {
		t.Errorf("CoordinateList = %q, want %q", got, want)
	}
}

func TestFeatureMarshal(t *testing.T) {
	g, _ := NewPolygon([][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 0}})
	fc := NewFeatureCollection([]Feature{NewFeature(g, 1, map[string]any{"name": "x"})})

	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded FeatureCollection
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if decoded.Type != "FeatureCollection" || len(decoded.Features) != 1 {
		t.Fatalf("unexpected collection %+v", decoded)
	}
	if decoded.Features[0].Type != "Feature" || decoded.Features[0].Properties["name"] != "x" {
		t.Errorf("unexpected feature %+v", decoded.Features[0])
	}
}

const mapGeoJSON = `{
  "type": "FeatureCollection",
  "features": [{
    "type": "Feature",
    "properties": {},
    "geometry": {
      "type": "Polygon",
      "coordinates": [[[0, 0], [1, 1], [0, 1], [0, 0]]]
    }
  }]
}`

func TestReadFile_PolygonCoordinateList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.geojson")
	if err := os.WriteFile(path, []byte(mapGeoJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	got, err := fc.PolygonCoordinateList(0)
	if err != nil {
		t.Fatalf("PolygonCoordinateList failed: %v", err)
	}
	want := "0.0000000 0.0000000,1.0000000 1.0000000,0.0000000 1.0000000,0.0000000 0.0000000"
	if got != want {
		t.Errorf("coordinate list = %q, want %q", got, want)
	}

	if _, err := fc.PolygonCoordinateList(1); err == nil {
		t.Error("out-of-range feature index accepted")
	}
}

func TestReadFile_NotACollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geom.geojson")
	if err := os.WriteFile(path, []byte(`{"type":"Polygon","coordinates":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path); err == nil || !strings.Contains(err.Error(), "FeatureCollection") {
		t.Errorf("expected FeatureCollection type error, got %v", err)
	}
}
