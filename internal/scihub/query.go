package scihub

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rkm/scihub-go/internal/translate"
)

// ErrNoGeometry is returned when a query has neither an area nor a point
// constraint.
var ErrNoGeometry = errors.New("query needs an area or a point constraint")

// Date is a query date bound: either a concrete time or a raw string. Raw
// strings in 8-digit YYYYMMDD form are normalized when the query is built;
// any other string is passed through unchanged so callers can use the
// catalog's native date expressions directly.
type Date struct {
	t   time.Time
	raw string
}

// TimeDate wraps a concrete time as a query date bound.
func TimeDate(t time.Time) Date { return Date{t: t} }

// RawDate wraps a date string as a query date bound.
func RawDate(s string) Date { return Date{raw: s} }

// IsZero reports whether the bound is unset.
func (d Date) IsZero() bool { return d.t.IsZero() && d.raw == "" }

// String renders the bound in the form the query syntax expects.
func (d Date) String() string {
	if !d.t.IsZero() {
		return translate.FormatTime(d.t)
	}
	return translate.FormatDate(d.raw)
}

// Query describes one catalog search. Area is a polygon coordinate list
// ("lon lat" pairs joined by commas), Point a single "lat,lon" pair; at
// least one of the two must be set. Filters are arbitrary keyword clauses.
type Query struct {
	Area    string
	Point   string
	Start   Date
	End     Date
	Filters map[string]string
}

// Build renders the query as the catalog's full-text search string. The
// output is deterministic: clauses appear in fixed order (date range,
// area, point, filters) and filter clauses are sorted by key, so equal
// inputs always produce byte-identical queries. An unset End defaults to
// now; an unset Start defaults to 24 hours before End. Values are embedded
// without escaping, matching the catalog's own query examples.
func (q Query) Build() (string, error) {
	if q.Area == "" && q.Point == "" {
		return "", ErrNoGeometry
	}

	end := q.End
	if end.IsZero() {
		end = TimeDate(time.Now())
	}
	start := q.Start
	if start.IsZero() {
		if end.t.IsZero() {
			return "", fmt.Errorf("start date is required when the end date is a raw expression")
		}
		start = TimeDate(end.t.Add(-24 * time.Hour))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "(beginPosition:[%s TO %s])", start, end)
	if q.Area != "" {
		fmt.Fprintf(&b, ` AND (footprint:"Intersects(POLYGON((%s)))")`, q.Area)
	}
	if q.Point != "" {
		fmt.Fprintf(&b, ` AND (footprint:"intersects(%s)")`, q.Point)
	}
	keys := make([]string, 0, len(q.Filters))
	for key := range q.Filters {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " AND (%s:%s)", key, q.Filters[key])
	}
	return b.String(), nil
}
