// Package scihub implements the catalog client: query construction,
// search and per-product metadata calls, response normalization and error
// classification for the Copernicus Open Access Hub APIs.
package scihub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rkm/scihub-go/internal/translate"
	"github.com/rkm/scihub-go/pkg/geojson"
)

// DefaultAPIURL is the hub queried when no URL is configured.
const DefaultAPIURL = "https://scihub.copernicus.eu/apihub/"

// searchPath caps every search at the catalog's page size.
const searchPath = "search?format=json&rows=100"

// Credentials are the opaque basic-auth credentials attached to every
// catalog call.
type Credentials struct {
	User     string
	Password string
}

// Client talks to the catalog's search and per-product metadata endpoints
// over one reused authenticated HTTP session. All fields are fixed at
// construction except lastQuery, which each search call records.
type Client struct {
	apiURL       string
	creds        Credentials
	httpClient   *http.Client
	streamClient *http.Client
	logger       *slog.Logger

	lastQuery string
}

// NewClient creates a catalog client. An empty apiURL selects
// DefaultAPIURL; a missing trailing slash is added. timeout bounds the
// metadata calls only; archive transfers share the same transport but are
// bounded by the caller's context, since a multi-gigabyte body outlives
// any reasonable wall-clock timeout.
func NewClient(apiURL string, creds Credentials, timeout time.Duration) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		apiURL:       apiURL,
		creds:        creds,
		httpClient:   &http.Client{Timeout: timeout, Transport: transport},
		streamClient: &http.Client{Transport: transport},
		logger:       slog.Default(),
	}
}

// WithLogger sets a custom logger for the client.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger
	return c
}

// APIURL returns the hub URL the client was built with (trailing slash
// included).
func (c *Client) APIURL() string { return c.apiURL }

// LastQuery returns the query string of the most recent search, or "" when
// no search has been issued yet.
func (c *Client) LastQuery() string { return c.lastQuery }

// Search builds the query and issues it. See SearchRaw.
func (c *Client) Search(ctx context.Context, q Query) (*SearchResult, error) {
	query, err := q.Build()
	if err != nil {
		return nil, err
	}
	return c.SearchRaw(ctx, query)
}

// SearchRaw issues a full-text query against the catalog's search endpoint
// and returns the normalized result. A catalog failure surfaces as an
// *APIError; a network failure as a wrapped transport error.
func (c *Client) SearchRaw(ctx context.Context, query string) (*SearchResult, error) {
	c.logger.DebugContext(ctx, "executing catalog search", slog.String("query", query))

	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+searchPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.creds.User, c.creds.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "catalog search request failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("catalog search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}
	if err := ResponseError(resp.StatusCode, body); err != nil {
		c.logger.ErrorContext(ctx, "catalog rejected search",
			slog.Int("status_code", resp.StatusCode),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	var doc feedDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	entries, err := decodeEntries(doc.Feed.Entry)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		c.logger.InfoContext(ctx, "no products found for query", slog.String("query", query))
	}

	c.lastQuery = query
	c.logger.DebugContext(ctx, "catalog search completed", slog.Int("entry_count", len(entries)))
	return &SearchResult{Query: query, entries: entries}, nil
}

// TotalSizeGB sums the advertised sizes of entries in gigabytes, rounded
// once to two decimals at the end. Entries report size as "<value> <unit>"
// with unit GB, MB or KB.
func TotalSizeGB(entries []Entry) (float64, error) {
	var total float64
	for i := range entries {
		raw, ok := entries[i].Attribute("size")
		if !ok {
			return 0, &SchemaError{Key: "entry.str[size]"}
		}
		fields := strings.Fields(raw)
		if len(fields) < 2 {
			return 0, fmt.Errorf("invalid size attribute %q", raw)
		}
		value, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid size value %q: %w", fields[0], err)
		}
		switch fields[1] {
		case "MB":
			value /= 1024
		case "KB":
			value /= 1024 * 1024
		}
		total += value
	}
	return math.Round(total*100) / 100, nil
}

// footprint properties copied from each entry. polarisationmode is
// optional: Sentinel-2 entries do not carry it, and its absence only omits
// the key for that feature.
var (
	requiredProperties = []string{"platformname", "identifier", "sensoroperationalmode", "orbitdirection", "producttype"}
	optionalProperties = []string{"polarisationmode"}
)

// Footprints renders the entries' coverage polygons and a flat attribute
// map per entry as a GeoJSON feature collection. Feature ids count from 1
// in entry order.
func Footprints(entries []Entry) (*geojson.FeatureCollection, error) {
	features := make([]geojson.Feature, 0, len(entries))
	for i := range entries {
		entry := &entries[i]

		raw, ok := entry.Attribute("footprint")
		if !ok {
			return nil, &SchemaError{Key: "entry.str[footprint]"}
		}
		ring, err := translate.ParseFootprint(raw)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", entry.ID, err)
		}
		polygon, err := geojson.NewPolygon(ring)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", entry.ID, err)
		}

		begin, ok := entry.DateField("beginposition")
		if !ok {
			return nil, &SchemaError{Key: "entry.date[beginposition]"}
		}
		link, ok := entry.DownloadLink()
		if !ok {
			return nil, &SchemaError{Key: "entry.link"}
		}

		props := map[string]any{
			"product_id":         entry.ID,
			"date_beginposition": begin,
			"download_link":      link,
		}
		for _, name := range requiredProperties {
			value, ok := entry.Attribute(name)
			if !ok {
				return nil, &SchemaError{Key: "entry.str[" + name + "]"}
			}
			props[name] = value
		}
		for _, name := range optionalProperties {
			if value, ok := entry.Attribute(name); ok {
				props[name] = value
			}
		}

		features = append(features, geojson.NewFeature(polygon, i+1, props))
	}
	return geojson.NewFeatureCollection(features), nil
}

// ProductInfo fetches per-product metadata by id and normalizes it into a
// Product: the embedded GML geometry becomes a [lon, lat] ring, the OData
// timestamp wrapper a catalog instant, and the download URL is derived
// from the id.
func (c *Client) ProductInfo(ctx context.Context, id string) (*Product, error) {
	infoURL := c.apiURL + "odata/v1/Products('" + id + "')/?$format=json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, infoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata request: %w", err)
	}
	req.SetBasicAuth(c.creds.User, c.creds.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "product metadata request failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("product metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata response: %w", err)
	}
	if err := ResponseError(resp.StatusCode, body); err != nil {
		return nil, err
	}

	var doc odataDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode metadata response: %w", err)
	}
	switch {
	case doc.D.ID == "":
		return nil, &SchemaError{Key: "d.Id"}
	case doc.D.Name == "":
		return nil, &SchemaError{Key: "d.Name"}
	case doc.D.Checksum.Value == "":
		return nil, &SchemaError{Key: "d.Checksum.Value"}
	case doc.D.ContentDate.Start == "":
		return nil, &SchemaError{Key: "d.ContentDate.Start"}
	case doc.D.ContentGeometry == "":
		return nil, &SchemaError{Key: "d.ContentGeometry"}
	}

	size, err := doc.contentLength()
	if err != nil {
		return nil, err
	}
	ring, err := translate.ParseGMLRing(doc.D.ContentGeometry)
	if err != nil {
		return nil, err
	}
	date, err := translate.ConvertTimestamp(doc.D.ContentDate.Start)
	if err != nil {
		return nil, err
	}

	return &Product{
		ID:        doc.D.ID,
		Title:     doc.D.Name,
		Size:      size,
		MD5:       doc.D.Checksum.Value,
		Date:      date,
		Footprint: ring,
		URL:       c.apiURL + "odata/v1/Products('" + id + "')/$value",
	}, nil
}

// Stream issues an authenticated GET for rawURL, asking the server to
// resume from offset when offset > 0. The caller owns the response and its
// body; status interpretation is left to the caller since resume handling
// depends on 200 vs 206 vs 416.
func (c *Client) Stream(ctx context.Context, rawURL string, offset int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer request: %w", err)
	}
	req.SetBasicAuth(c.creds.User, c.creds.Password)
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transfer request failed: %w", err)
	}
	return resp, nil
}
