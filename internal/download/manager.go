// Package download moves product archives to disk: single resumable
// verified transfers and sequential batch downloads with bounded retries.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/rkm/scihub-go/internal/scihub"
)

// brokenResumeVersion is the newest transfer-backend version known to
// corrupt byte-range resumes of files at or past resumeSizeLimit. The
// comparison is numeric semver, never a string compare: "7.9.0" sorts
// after "7.43.0" lexicographically but is well below it numerically.
const brokenResumeVersion = "7.43.0"

// resumeSizeLimit is the partial-file size at which affected backends
// corrupt resumed transfers (2 GiB).
const resumeSizeLimit int64 = 2 << 30

// DefaultRetryInterval is the wait between metadata fetch attempts.
const DefaultRetryInterval = time.Minute

// RetryPolicy bounds the metadata fetch loop inside Download. MaxAttempts
// 0 retries forever, preserving the legacy "the catalog must eventually
// answer" behavior; a positive value gives up after that many attempts.
type RetryPolicy struct {
	MaxAttempts int
	Interval    time.Duration
}

// Options controls integrity handling for a single download.
type Options struct {
	// VerifyChecksum verifies the transferred file against the server's
	// declared MD5 and fails with a ChecksumError on mismatch.
	VerifyChecksum bool

	// VerifyExisting checksums a pre-existing complete file instead of
	// trusting its size; a corrupt file is deleted and re-downloaded.
	VerifyExisting bool
}

// Status describes how a download concluded.
type Status string

const (
	// StatusDownloaded means bytes were transferred and the size matched;
	// no checksum was requested.
	StatusDownloaded Status = "downloaded"
	// StatusVerified means the file's checksum matched the server's.
	StatusVerified Status = "verified"
	// StatusSkipped means a complete file was already on disk and was
	// trusted by size alone.
	StatusSkipped Status = "skipped"
	// StatusFailed means the transfer or its verification failed.
	StatusFailed Status = "failed"
)

// Outcome is the immutable result of one download attempt.
type Outcome struct {
	Path    string
	Product *scihub.Product
	Status  Status
}

// Manager downloads product archives through a catalog client. Transfers
// are strictly sequential; the manager owns the target file of the one
// in-flight download.
type Manager struct {
	api    *scihub.Client
	logger *slog.Logger
	retry  RetryPolicy

	// transportVersion is the reported version of the transfer backend,
	// checked against brokenResumeVersion before resuming large files.
	// Empty means unaffected.
	transportVersion string
}

// NewManager creates a download manager on top of a catalog client.
func NewManager(api *scihub.Client, retry RetryPolicy) *Manager {
	if retry.Interval <= 0 {
		retry.Interval = DefaultRetryInterval
	}
	return &Manager{
		api:    api,
		logger: slog.Default(),
		retry:  retry,
	}
}

// WithLogger sets a custom logger for the manager.
func (m *Manager) WithLogger(logger *slog.Logger) *Manager {
	m.logger = logger
	return m
}

// WithTransportVersion records the transfer backend's version for the
// large-file resume defect gate.
func (m *Manager) WithTransportVersion(version string) *Manager {
	m.transportVersion = version
	return m
}

// Download fetches one product's archive into dir as "<title>.zip",
// resuming a partial file from its current offset. A complete file of the
// expected size short-circuits the transfer; see Options for integrity
// handling. A failure after metadata resolves returns a StatusFailed
// Outcome alongside the error; a metadata failure returns a nil Outcome.
// The returned Outcome is never mutated afterward.
func (m *Manager) Download(ctx context.Context, id, dir string, opts Options) (*Outcome, error) {
	product, err := m.productInfo(ctx, id)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, product.Title+".zip")
	failed := &Outcome{Path: path, Product: product, Status: StatusFailed}
	m.logger.InfoContext(ctx, "downloading product",
		slog.String("product_id", id),
		slog.String("path", path),
		slog.Int64("size", product.Size),
	)

	if fi, statErr := os.Stat(path); statErr == nil && fi.Size() == product.Size {
		if !opts.VerifyExisting {
			m.logger.InfoContext(ctx, "file already downloaded", slog.String("path", path))
			return &Outcome{Path: path, Product: product, Status: StatusSkipped}, nil
		}
		ok, err := MD5Matches(path, product.MD5)
		if err != nil {
			return failed, err
		}
		if ok {
			m.logger.InfoContext(ctx, "existing file passed checksum", slog.String("path", path))
			return &Outcome{Path: path, Product: product, Status: StatusVerified}, nil
		}
		m.logger.WarnContext(ctx, "existing file is corrupt, re-downloading", slog.String("path", path))
		if err := os.Remove(path); err != nil {
			return failed, fmt.Errorf("failed to remove corrupt file: %w", err)
		}
	}

	if fi, statErr := os.Stat(path); statErr == nil && resumeUnsafe(fi.Size(), m.transportVersion) {
		// Resuming past the limit corrupts output on affected backends;
		// restarting is the only safe option.
		m.logger.WarnContext(ctx, "discarding partial file: resume defect in transfer backend",
			slog.String("path", path),
			slog.Int64("partial_size", fi.Size()),
			slog.String("transport_version", m.transportVersion),
		)
		if err := os.Remove(path); err != nil {
			return failed, fmt.Errorf("failed to remove partial file: %w", err)
		}
	}

	if err := m.transfer(ctx, product, path); err != nil {
		return failed, err
	}

	status := StatusDownloaded
	if opts.VerifyChecksum {
		actual, err := MD5File(path)
		if err != nil {
			return failed, err
		}
		if !strings.EqualFold(actual, product.MD5) {
			return failed, &ChecksumError{Path: path, Expected: product.MD5, Actual: actual}
		}
		status = StatusVerified
	}
	return &Outcome{Path: path, Product: product, Status: status}, nil
}

// productInfo resolves product metadata, retrying catalog errors per the
// manager's RetryPolicy. Transport and schema failures propagate
// immediately; the batch layer owns retrying those.
func (m *Manager) productInfo(ctx context.Context, id string) (*scihub.Product, error) {
	for attempt := 1; ; attempt++ {
		product, err := m.api.ProductInfo(ctx, id)
		if err == nil {
			return product, nil
		}
		var apiErr *scihub.APIError
		if !errors.As(err, &apiErr) {
			return nil, err
		}
		if m.retry.MaxAttempts > 0 && attempt >= m.retry.MaxAttempts {
			return nil, fmt.Errorf("product metadata still failing after %d attempts: %w", attempt, err)
		}
		m.logger.WarnContext(ctx, "invalid API response, retrying metadata fetch",
			slog.String("product_id", id),
			slog.Int("attempt", attempt),
			slog.Duration("wait", m.retry.Interval),
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.retry.Interval):
		}
	}
}

// transfer streams the archive to path, resuming from the current file
// length when a partial file remains, and requires the final size to equal
// the expected size.
func (m *Manager) transfer(ctx context.Context, product *scihub.Product, path string) error {
	var offset int64
	if fi, err := os.Stat(path); err == nil {
		offset = fi.Size()
	}

	resp, err := m.api.Stream(ctx, product.URL, offset)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	flags := os.O_WRONLY | os.O_CREATE
	switch resp.StatusCode {
	case http.StatusPartialContent:
		flags |= os.O_APPEND
	case http.StatusOK:
		// Server ignored the range request (or none was sent): the body
		// is the whole archive, so start the file over.
		flags |= os.O_TRUNC
		offset = 0
	case http.StatusRequestedRangeNotSatisfiable:
		if offset == product.Size {
			return nil
		}
		return fmt.Errorf("server rejected resume at offset %d of %d", offset, product.Size)
	default:
		body, _ := io.ReadAll(resp.Body)
		return scihub.ResponseError(resp.StatusCode, body)
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open target file: %w", err)
	}
	start := time.Now()
	written, copyErr := io.Copy(f, resp.Body)
	if closeErr := f.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return fmt.Errorf("transfer to %s failed after %d bytes: %w", path, written, copyErr)
	}

	total := offset + written
	if total != product.Size {
		return fmt.Errorf("incomplete download: %s has %d of %d bytes", path, total, product.Size)
	}
	m.logger.InfoContext(ctx, "transfer complete",
		slog.String("path", path),
		slog.Int64("bytes", written),
		slog.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
	return nil
}

// resumeUnsafe reports whether a partial file of the given size must be
// discarded instead of resumed on the given transfer backend version.
func resumeUnsafe(size int64, transportVersion string) bool {
	if size < resumeSizeLimit || transportVersion == "" {
		return false
	}
	v, err := semver.NewVersion(transportVersion)
	if err != nil {
		// An unparseable version is treated as unaffected rather than
		// silently discarding the user's partial download.
		return false
	}
	return v.Compare(semver.MustParse(brokenResumeVersion)) <= 0
}
