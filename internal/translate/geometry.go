package translate

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// footprint strings in OpenSearch entries look like
// `POLYGON ((lon lat,lon lat,...))`; the OData ContentGeometry field instead
// embeds a GML polygon whose ring coordinates are comma-separated lat,lon
// pairs. Both are normalized here to ordered [lon, lat] positions.

const (
	footprintPrefix = "POLYGON (("
	footprintSuffix = "))"
)

// ParseFootprint parses an OpenSearch footprint attribute into the ordered
// [lon, lat] positions of its outer ring.
func ParseFootprint(s string) ([][]float64, error) {
	if !strings.HasPrefix(s, footprintPrefix) || !strings.HasSuffix(s, footprintSuffix) {
		return nil, fmt.Errorf("footprint %q is not in POLYGON ((...)) form", s)
	}
	inner := s[len(footprintPrefix) : len(s)-len(footprintSuffix)]
	pairs := strings.Split(inner, ",")
	ring := make([][]float64, 0, len(pairs))
	for _, pair := range pairs {
		fields := strings.Fields(strings.TrimSpace(pair))
		if len(fields) < 2 {
			return nil, fmt.Errorf("invalid footprint coordinate pair %q", pair)
		}
		lon, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude %q in footprint: %w", fields[0], err)
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude %q in footprint: %w", fields[1], err)
		}
		ring = append(ring, []float64{lon, lat})
	}
	return ring, nil
}

// gmlPolygon maps the fixed outerBoundaryIs/LinearRing/coordinates path of
// the GML geometry block embedded in product metadata.
type gmlPolygon struct {
	OuterBoundary struct {
		LinearRing struct {
			Coordinates string `xml:"http://www.opengis.net/gml coordinates"`
		} `xml:"http://www.opengis.net/gml LinearRing"`
	} `xml:"http://www.opengis.net/gml outerBoundaryIs"`
}

// ParseGMLRing extracts the outer ring from an embedded GML polygon
// document. GML lists each position as "lat,lon"; the pair is reversed so
// callers get the same [lon, lat] axis order as ParseFootprint.
func ParseGMLRing(doc string) ([][]float64, error) {
	var polygon gmlPolygon
	if err := xml.Unmarshal([]byte(doc), &polygon); err != nil {
		return nil, fmt.Errorf("failed to parse GML geometry: %w", err)
	}
	raw := strings.TrimSpace(polygon.OuterBoundary.LinearRing.Coordinates)
	if raw == "" {
		return nil, fmt.Errorf("GML geometry has no outer ring coordinates")
	}
	pairs := strings.Fields(raw)
	ring := make([][]float64, 0, len(pairs))
	for _, pair := range pairs {
		parts := strings.Split(pair, ",")
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid GML coordinate pair %q", pair)
		}
		lat, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude %q in GML ring: %w", parts[0], err)
		}
		lon, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude %q in GML ring: %w", parts[1], err)
		}
		ring = append(ring, []float64{lon, lat})
	}
	return ring, nil
}
