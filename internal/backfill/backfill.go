// Package backfill opportunistically fills in product thumbnails for
// inventory items by matching them against cached consumable suggestions and
// scraping a marketplace search page.
package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hearthhq/hearth/internal/scraper"
	"github.com/hearthhq/hearth/internal/storage"
	"github.com/hearthhq/hearth/internal/suggest"
)

const defaultConcurrency = 4

// SuggestionSource is the read-only batch lookup; it never triggers
// generation.
type SuggestionSource interface {
	Batch(ctx context.Context, pairs []suggest.Pair) map[string][]suggest.Suggestion
}

// ThumbnailFetcher resolves a page URL to a thumbnail image URL.
type ThumbnailFetcher interface {
	FetchThumbnail(ctx context.Context, pageURL string) (string, error)
}

// ItemStore is the narrow slice of item persistence the pipeline touches.
type ItemStore interface {
	ListThumbnailCandidates(ctx context.Context) ([]storage.ThumbnailCandidate, error)
	SetItemThumbnail(ctx context.Context, id, url string) error
}

// Runner performs backfill passes. Each item is processed in its own task
// with its own error boundary: a failed scrape is logged and forgotten, and
// the item stays thumbnail-less until a later pass reconsiders it. There is
// no retry and no shared state between tasks — each writes only its own row.
type Runner struct {
	suggestions SuggestionSource
	fetcher     ThumbnailFetcher
	items       ItemStore
	concurrency int
	logger      *slog.Logger
}

// NewRunner builds a Runner. concurrency <= 0 selects the default.
func NewRunner(suggestions SuggestionSource, fetcher ThumbnailFetcher, items ItemStore, concurrency int, logger *slog.Logger) *Runner {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		suggestions: suggestions,
		fetcher:     fetcher,
		items:       items,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Kick starts one pass in the background and returns immediately. The pass
// outlives the triggering request: in-flight work is detached from the
// request's cancellation, bounded by batch size rather than request
// lifetime.
func (r *Runner) Kick(ctx context.Context) {
	detached := context.WithoutCancel(ctx)
	go func() {
		if err := r.Run(detached); err != nil {
			r.logger.Warn("thumbnail backfill pass failed", "error", err)
		}
	}()
}

// Run executes one synchronous backfill pass: collect eligible items, one
// batch suggestion lookup for all their assets, then an independent bounded
// task per item.
func (r *Runner) Run(ctx context.Context) error {
	candidates, err := r.items.ListThumbnailCandidates(ctx)
	if err != nil {
		return fmt.Errorf("listing backfill candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil
	}

	pairs := make([]suggest.Pair, 0, len(candidates))
	for _, c := range candidates {
		pairs = append(pairs, suggest.Pair{Make: c.Make, Model: c.Model})
	}
	cached := r.suggestions.Batch(ctx, pairs)

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	matched := 0
	for _, c := range candidates {
		term, ok := matchSearchTerm(cached, c)
		if !ok {
			continue
		}
		matched++
		g.Go(func() error {
			if err := r.backfillItem(ctx, c, term); err != nil {
				// One item's failure must not abort the others.
				r.logger.Warn("thumbnail backfill failed for item",
					"item_id", c.ItemID, "item", c.ItemName, "error", err)
			}
			return nil
		})
	}
	g.Wait()

	r.logger.Info("thumbnail backfill pass complete",
		"candidates", len(candidates), "matched", matched)
	return nil
}

// matchSearchTerm finds the cached suggestion whose consumable name matches
// the item case-insensitively and returns its first product's search term.
func matchSearchTerm(cached map[string][]suggest.Suggestion, c storage.ThumbnailCandidate) (string, bool) {
	suggestions, ok := cached[suggest.NormalizeKey(c.Make, c.Model)]
	if !ok {
		return "", false
	}
	name := strings.TrimSpace(c.ItemName)
	for _, s := range suggestions {
		if strings.EqualFold(s.Consumable, name) && len(s.Products) > 0 {
			return s.Products[0].SearchTerm, true
		}
	}
	return "", false
}

func (r *Runner) backfillItem(ctx context.Context, c storage.ThumbnailCandidate, term string) error {
	thumb, err := r.fetcher.FetchThumbnail(ctx, scraper.SearchURL(term))
	if err != nil {
		return fmt.Errorf("fetching thumbnail: %w", err)
	}
	if err := r.items.SetItemThumbnail(ctx, c.ItemID, thumb); err != nil {
		return fmt.Errorf("saving thumbnail: %w", err)
	}
	return nil
}
