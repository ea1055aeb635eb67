// Package tiles maps Sentinel-2 grid tile identifiers to precomputed
// centroid coordinates, used as a point-filter shortcut for queries.
package tiles

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	_ "embed"
)

//go:embed tile_centroids.csv
var centroidsCSV string

// ErrUnknownTile is returned when a tile identifier is not in the grid.
var ErrUnknownTile = errors.New("unknown tile identifier")

// Centroid is a tile's representative point.
type Centroid struct {
	Lat float64
	Lon float64
}

// PointString renders the centroid as the "lat,lon" pair the catalog's
// point filter consumes, at 7-decimal precision.
func (c Centroid) PointString() string {
	return fmt.Sprintf("%.7f,%.7f", c.Lat, c.Lon)
}

var (
	loadOnce  sync.Once
	loadErr   error
	centroids map[string]Centroid
)

func load() {
	reader := csv.NewReader(strings.NewReader(centroidsCSV))
	records, err := reader.ReadAll()
	if err != nil {
		loadErr = fmt.Errorf("failed to parse tile centroid data: %w", err)
		return
	}
	centroids = make(map[string]Centroid, len(records))
	for i, record := range records {
		if i == 0 {
			// header: tile,lat,lon
			continue
		}
		if len(record) != 3 {
			loadErr = fmt.Errorf("malformed tile centroid record %d: %v", i, record)
			return
		}
		lat, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			loadErr = fmt.Errorf("malformed latitude in tile centroid record %d: %w", i, err)
			return
		}
		lon, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			loadErr = fmt.Errorf("malformed longitude in tile centroid record %d: %w", i, err)
			return
		}
		centroids[record[0]] = Centroid{Lat: lat, Lon: lon}
	}
}

// Lookup returns the centroid of the named tile.
func Lookup(tile string) (Centroid, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return Centroid{}, loadErr
	}
	c, ok := centroids[strings.ToUpper(tile)]
	if !ok {
		return Centroid{}, fmt.Errorf("%w: %s", ErrUnknownTile, tile)
	}
	return c, nil
}
