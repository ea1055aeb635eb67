// Package translate normalizes the date and geometry encodings used by the
// SciHub OpenSearch and OData endpoints into the forms the rest of the
// client works with.
package translate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// InstantFormat is the UTC instant format the catalog's full-text query
// syntax and this client's product records use.
const InstantFormat = "2006-01-02T15:04:05Z"

// compactDateFormat is the 8-digit YYYYMMDD shorthand accepted as query
// input.
const compactDateFormat = "20060102"

// FormatTime renders t as a catalog instant, second precision, UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(InstantFormat)
}

// FormatDate normalizes a date string for query use. An 8-digit YYYYMMDD
// value becomes a catalog instant at midnight UTC. Anything else passes
// through unchanged: raw catalog expressions such as "NOW-1DAY" are valid
// query input and must not be rewritten.
func FormatDate(s string) string {
	if t, err := time.Parse(compactDateFormat, s); err == nil {
		return FormatTime(t)
	}
	return s
}

// ConvertTimestamp decodes the OData wrapper "/Date(<millis>)/" carrying a
// Unix-epoch-milliseconds value into a catalog instant string.
func ConvertTimestamp(s string) (string, error) {
	if !strings.HasPrefix(s, "/Date(") || !strings.HasSuffix(s, ")/") {
		return "", fmt.Errorf("timestamp %q is not in /Date(ms)/ form", s)
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "/Date("), ")/")
	millis, err := strconv.ParseInt(inner, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid epoch milliseconds in timestamp %q: %w", s, err)
	}
	return FormatTime(time.UnixMilli(millis)), nil
}
