package scihub

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NamedField is one element of the str/date/int attribute lists carried by
// OpenSearch entries.
type NamedField struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Link is an alternate-representation link on an entry. The bare download
// link is the one without a rel attribute.
type Link struct {
	Href string `json:"href"`
	Rel  string `json:"rel,omitempty"`
}

// Entry is one raw catalog search result.
type Entry struct {
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Str   []NamedField `json:"str"`
	Date  []NamedField `json:"date"`
	Link  []Link       `json:"link"`
}

// Attribute returns the named str attribute's content, reporting whether
// it was present.
func (e *Entry) Attribute(name string) (string, bool) {
	for _, f := range e.Str {
		if f.Name == name {
			return f.Content, true
		}
	}
	return "", false
}

// DateField returns the named date attribute's content, reporting whether
// it was present.
func (e *Entry) DateField(name string) (string, bool) {
	for _, f := range e.Date {
		if f.Name == name {
			return f.Content, true
		}
	}
	return "", false
}

// DownloadLink returns the entry's bare download link, if any.
func (e *Entry) DownloadLink() (string, bool) {
	for _, l := range e.Link {
		if l.Rel == "" {
			return l.Href, true
		}
	}
	return "", false
}

// Product is the normalized per-product metadata record. Footprint is the
// ordered outer ring of the coverage polygon as [lon, lat] positions.
// Date is the acquisition start instant in the catalog's UTC format.
type Product struct {
	ID        string
	Title     string
	Size      int64
	MD5       string
	Date      string
	Footprint [][]float64
	URL       string
}

// SearchResult holds the normalized entries of one search call. Results
// are created per call and replaced, never merged, by the next search.
type SearchResult struct {
	// Query is the full-text query that produced this result.
	Query string

	entries []Entry
}

// Entries returns the result's catalog entries in response order. A result
// with no matches yields an empty slice.
func (r *SearchResult) Entries() []Entry {
	return r.entries
}

// feedDocument is the search response wrapper. The catalog collapses
// feed.entry to a single object when exactly one product matches, so the
// field stays raw until decodeEntries resolves the ambiguity.
type feedDocument struct {
	Feed struct {
		Entry json.RawMessage `json:"entry"`
	} `json:"feed"`
}

// decodeEntries normalizes feed.entry into a slice: an array decodes
// directly, a lone object becomes a one-element slice, and an absent or
// null field means zero matches.
func decodeEntries(raw json.RawMessage) ([]Entry, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []Entry{}, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var entries []Entry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode entry list: %w", err)
		}
		return entries, nil
	}
	var single Entry
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("failed to decode single entry: %w", err)
	}
	return []Entry{single}, nil
}

// odataDocument is the per-product metadata response shape.
type odataDocument struct {
	D struct {
		ID            string          `json:"Id"`
		Name          string          `json:"Name"`
		ContentLength json.RawMessage `json:"ContentLength"`
		Checksum      struct {
			Value string `json:"Value"`
		} `json:"Checksum"`
		ContentDate struct {
			Start string `json:"Start"`
		} `json:"ContentDate"`
		ContentGeometry string `json:"ContentGeometry"`
	} `json:"d"`
}

// contentLength parses the ContentLength field, which the catalog emits
// either as a JSON number or as a quoted decimal string.
func (d *odataDocument) contentLength() (int64, error) {
	raw := strings.Trim(strings.TrimSpace(string(d.D.ContentLength)), `"`)
	if raw == "" {
		return 0, &SchemaError{Key: "d.ContentLength"}
	}
	size, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid content length %q: %w", raw, err)
	}
	if size < 0 {
		return 0, fmt.Errorf("negative content length %d", size)
	}
	return size, nil
}
