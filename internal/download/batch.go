package download

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/rkm/scihub-go/internal/scihub"
)

// DefaultMaxAttempts is the per-product attempt budget used when
// DownloadAll is called with a non-positive value.
const DefaultMaxAttempts = 10

// DownloadAll downloads every product of a search result into dir,
// strictly one at a time. Each product gets up to maxAttempts tries;
// checksum mismatches and other per-attempt errors are logged and count
// against the budget, while context cancellation (the process-interrupt
// path) aborts the whole batch immediately and is never retried.
//
// The returned map has one entry per product, keyed by target path; a nil
// value marks a product whose attempts were exhausted. Per-item failures
// never produce a batch error, so the error return is non-nil only for
// cancellation.
func (m *Manager) DownloadAll(ctx context.Context, result *scihub.SearchResult, dir string, maxAttempts int, opts Options) (map[string]*scihub.Product, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	entries := result.Entries()
	m.logger.InfoContext(ctx, "starting batch download",
		slog.Int("products", len(entries)),
		slog.String("dir", dir),
	)

	out := make(map[string]*scihub.Product, len(entries))
	for i := range entries {
		entry := &entries[i]
		// The title-derived path is the map key even when every attempt
		// fails before metadata resolves a fresh one.
		path := filepath.Join(dir, entry.Title+".zip")
		var product *scihub.Product

		for attempt := 1; attempt <= maxAttempts; attempt++ {
			outcome, err := m.Download(ctx, entry.ID, dir, opts)
			if err == nil {
				path, product = outcome.Path, outcome.Product
				break
			}
			if fatal(ctx, err) {
				m.logger.ErrorContext(ctx, "batch aborted", slog.String("error", err.Error()))
				return out, err
			}
			var checksumErr *ChecksumError
			if errors.As(err, &checksumErr) {
				m.logger.WarnContext(ctx, "invalid checksum, downloaded file is corrupt",
					slog.String("title", entry.Title),
					slog.Int("attempt", attempt),
					slog.Int("max_attempts", maxAttempts),
				)
			} else {
				m.logger.ErrorContext(ctx, "error downloading product",
					slog.String("title", entry.Title),
					slog.Int("attempt", attempt),
					slog.Int("max_attempts", maxAttempts),
					slog.String("error", err.Error()),
				)
			}
		}
		if product == nil {
			m.logger.ErrorContext(ctx, "giving up on product",
				slog.String("title", entry.Title),
				slog.Int("attempts", maxAttempts),
			)
		}
		out[path] = product
		m.logger.InfoContext(ctx, "batch progress",
			slog.Int("downloaded", i+1),
			slog.Int("total", len(entries)),
		)
	}
	return out, nil
}

// fatal reports whether err must abort the batch instead of being retried:
// context cancellation or deadline expiry, which is how process
// interruption reaches this code.
func fatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
