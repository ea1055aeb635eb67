// Package geojson provides the small subset of GeoJSON needed by the
// SciHub client: geometry and feature types, polygon construction, and
// rendering of polygon rings as the coordinate lists the catalog's query
// syntax expects.
package geojson

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Geometry represents a GeoJSON geometry object. Coordinates are kept raw
// until a typed accessor is called, since their shape depends on Type.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature represents a GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	ID         any            `json:"id,omitempty"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection represents a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewPoint creates a Point geometry from a lon/lat pair.
func NewPoint(lon, lat float64) (*Geometry, error) {
	coords, err := json.Marshal([]float64{lon, lat})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal point coordinates: %w", err)
	}
	return &Geometry{Type: "Point", Coordinates: coords}, nil
}

// NewPolygon creates a Polygon geometry from a single outer ring of
// [lon, lat] positions. The ring is closed if the input leaves it open.
func NewPolygon(ring [][]float64) (*Geometry, error) {
	if len(ring) < 3 {
		return nil, fmt.Errorf("polygon ring needs at least 3 positions, got %d", len(ring))
	}
	for i, pos := range ring {
		if len(pos) < 2 {
			return nil, fmt.Errorf("invalid position at index %d: expected [lon, lat]", i)
		}
	}
	first, last := ring[0], ring[len(ring)-1]
	if first[0] != last[0] || first[1] != last[1] {
		ring = append(ring, []float64{first[0], first[1]})
	}
	coords, err := json.Marshal([][][]float64{ring})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal polygon coordinates: %w", err)
	}
	return &Geometry{Type: "Polygon", Coordinates: coords}, nil
}

// NewFeature creates a feature from a geometry, an identifier and a flat
// property map.
func NewFeature(geometry *Geometry, id any, properties map[string]any) Feature {
	return Feature{
		Type:       "Feature",
		ID:         id,
		Geometry:   geometry,
		Properties: properties,
	}
}

// NewFeatureCollection wraps features into a collection.
func NewFeatureCollection(features []Feature) *FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return &FeatureCollection{Type: "FeatureCollection", Features: features}
}

// Point returns the coordinates as [lon, lat].
// Returns an error if the geometry is not a Point.
func (g *Geometry) Point() ([]float64, error) {
	if g.Type != "Point" {
		return nil, fmt.Errorf("geometry is not a Point, got %s", g.Type)
	}
	var coords []float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Point coordinates: %w", err)
	}
	if len(coords) < 2 {
		return nil, fmt.Errorf("invalid Point coordinates: expected at least 2 values, got %d", len(coords))
	}
	return coords, nil
}

// Polygon returns the coordinates as rings of [lon, lat] positions.
// Returns an error if the geometry is not a Polygon.
func (g *Geometry) Polygon() ([][][]float64, error) {
	if g.Type != "Polygon" {
		return nil, fmt.Errorf("geometry is not a Polygon, got %s", g.Type)
	}
	var coords [][][]float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Polygon coordinates: %w", err)
	}
	return coords, nil
}

// OuterRing returns the first ring of a Polygon geometry.
func (g *Geometry) OuterRing() ([][]float64, error) {
	rings, err := g.Polygon()
	if err != nil {
		return nil, err
	}
	if len(rings) == 0 {
		return nil, fmt.Errorf("polygon has no rings")
	}
	return rings[0], nil
}

// CoordinateList renders a polygon ring as "lon lat" pairs joined by
// commas, at 7-decimal precision (1 mm at the equator). This is the form
// the catalog's area filter consumes.
func CoordinateList(ring [][]float64) (string, error) {
	if len(ring) == 0 {
		return "", fmt.Errorf("empty coordinate ring")
	}
	pairs := make([]string, len(ring))
	for i, pos := range ring {
		if len(pos) < 2 {
			return "", fmt.Errorf("invalid position at index %d: expected [lon, lat]", i)
		}
		pairs[i] = fmt.Sprintf("%.7f %.7f", pos[0], pos[1])
	}
	return strings.Join(pairs, ","), nil
}

// ReadFile loads a feature collection from a GeoJSON file.
func ReadFile(path string) (*FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read GeoJSON file: %w", err)
	}
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON file %s: %w", path, err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected a FeatureCollection, got %q", fc.Type)
	}
	return &fc, nil
}

// PolygonCoordinateList extracts the outer ring of the geometry of feature
// featureIndex and renders it with CoordinateList. featureIndex selects the
// feature in a multi-feature collection; 0 takes the first.
func (fc *FeatureCollection) PolygonCoordinateList(featureIndex int) (string, error) {
	if featureIndex < 0 || featureIndex >= len(fc.Features) {
		return "", fmt.Errorf("feature index %d out of range: collection has %d features", featureIndex, len(fc.Features))
	}
	geometry := fc.Features[featureIndex].Geometry
	if geometry == nil {
		return "", fmt.Errorf("feature %d has no geometry", featureIndex)
	}
	ring, err := geometry.OuterRing()
	if err != nil {
		return "", err
	}
	return CoordinateList(ring)
}
