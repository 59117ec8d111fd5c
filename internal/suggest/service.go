package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// generateTimeout bounds one generator call; on expiry the whole request
	// fails and the caller may re-issue it (which observes a fresh miss).
	generateTimeout = 15 * time.Second

	// maxResponseTokens caps the generator's output size.
	maxResponseTokens = 2048
)

// CacheStore is the persistence surface the retrievers need. Keys are stored
// already normalized, so implementations perform plain equality matching.
type CacheStore interface {
	// GetSuggestions returns the cached list for a normalized (make, model)
	// pair and whether an entry exists. An existing entry with an empty list
	// is a valid negative-cache hit.
	GetSuggestions(ctx context.Context, mk, model string) ([]Suggestion, bool, error)

	// BatchGetSuggestions returns cached lists for the subset of the given
	// normalized pairs that exist, keyed by NormalizeKey. Absent pairs are
	// simply missing from the map.
	BatchGetSuggestions(ctx context.Context, pairs []Pair) (map[string][]Suggestion, error)

	// UpsertSuggestions overwrites the entry for a normalized pair.
	UpsertSuggestions(ctx context.Context, mk, model, category string, suggestions []Suggestion) error
}

// Generator produces free text expected to contain a JSON suggestion array.
type Generator interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Service serves consumable suggestions from the cache, generating and
// persisting them on miss. It is the only writer of the cache. Concurrent
// misses for the same key may both generate; the later upsert wins, which is
// an accepted duplicate-cost trade-off (the row replace is atomic, so
// readers never see a partial write).
type Service struct {
	store  CacheStore
	gen    Generator // nil when no generator credential is configured
	logger *slog.Logger
}

// NewService builds a Service. gen may be nil, in which case cache misses
// return ErrNotConfigured; cached reads still work.
func NewService(store CacheStore, gen Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, gen: gen, logger: logger}
}

// Request identifies what a single-mode lookup is asking about. Category and
// Name describe the appliance regardless of whether a cache key can be
// formed; their presence is enforced by the API layer.
type Request struct {
	Make     string `json:"make"`
	Model    string `json:"model"`
	Category string `json:"category"`
	Name     string `json:"name"`
}

// Result is the single-mode response payload.
type Result struct {
	Suggestions []Suggestion `json:"suggestions"`
	FromCache   bool         `json:"fromCache"`
}

// Get is the read-through single retriever. Without both make and model the
// appliance is not identified well enough for suggestions to be meaningful,
// so cache and generator are skipped entirely and an empty fresh result is
// returned.
func (s *Service) Get(ctx context.Context, req Request) (Result, error) {
	mk := normalizeField(req.Make)
	model := normalizeField(req.Model)
	if mk == "" || model == "" {
		return Result{Suggestions: []Suggestion{}}, nil
	}

	stored, found, err := s.store.GetSuggestions(ctx, mk, model)
	if err != nil {
		// Degrade to a miss; suggestions are best-effort, not critical path.
		s.logger.Warn("suggestion cache read failed, treating as miss",
			"key", NormalizeKey(mk, model), "error", err)
		found = false
	}
	if found {
		return Result{Suggestions: stored, FromCache: true}, nil
	}

	if s.gen == nil {
		return Result{}, ErrNotConfigured
	}

	genCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	raw, err := s.gen.Complete(genCtx, BuildPrompt(req.Name, req.Category, req.Make, req.Model), maxResponseTokens)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	// A parse failure must not write anything to the cache.
	suggestions, err := ParseResponse(raw)
	if err != nil {
		return Result{}, err
	}

	// An empty validated list is persisted too: a negative cache entry stops
	// us from re-asking the generator about appliances with no consumables.
	if err := s.store.UpsertSuggestions(ctx, mk, model, req.Category, suggestions); err != nil {
		s.logger.Warn("persisting suggestions failed, returning unpersisted result",
			"key", NormalizeKey(mk, model), "error", err)
	}

	return Result{Suggestions: suggestions, FromCache: false}, nil
}

// Batch is the read-only bulk retriever: it never triggers generation.
// Pairs with an empty make or model are dropped, the remainder deduplicated
// by normalized key, and a single store query issued for the lot. Any store
// error degrades to an empty map.
func (s *Service) Batch(ctx context.Context, pairs []Pair) map[string][]Suggestion {
	seen := make(map[string]struct{}, len(pairs))
	unique := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		mk := normalizeField(p.Make)
		model := normalizeField(p.Model)
		if mk == "" || model == "" {
			continue
		}
		key := mk + keySep + model
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, Pair{Make: mk, Model: model})
	}
	if len(unique) == 0 {
		return map[string][]Suggestion{}
	}

	results, err := s.store.BatchGetSuggestions(ctx, unique)
	if err != nil {
		s.logger.Warn("batch suggestion lookup failed, returning empty map",
			"pairs", len(unique), "error", err)
		return map[string][]Suggestion{}
	}
	if results == nil {
		results = map[string][]Suggestion{}
	}
	return results
}
