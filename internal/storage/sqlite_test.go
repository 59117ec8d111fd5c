package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hearthhq/hearth/internal/suggest"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the schema_version count stays correct (migration not re-applied).
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}

	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}

	if len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

func TestIndexesExist(t *testing.T) {
	s := openTestStore(t)

	indexes := []string{"idx_items_asset_id", "idx_items_thumbnail", "idx_service_records_next_date"}
	for _, idx := range indexes {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&count)
		if err != nil {
			t.Fatalf("querying sqlite_master for %q: %v", idx, err)
		}
		if count != 1 {
			t.Errorf("index %q not found in sqlite_master", idx)
		}
	}
}

func sampleSuggestions() []suggest.Suggestion {
	cost := 18.99
	return []suggest.Suggestion{{
		Consumable:      "Air filter",
		Description:     "Filters intake air.",
		FrequencyMonths: 3,
		Products: []suggest.Product{
			{Name: "Filtrete 16x25x1", EstimatedCost: &cost, SearchTerm: "16x25x1 furnace filter"},
			{Name: "Honeywell FC100A", SearchTerm: "honeywell fc100a filter"},
		},
	}}
}

func TestSuggestionCacheRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := sampleSuggestions()
	if err := s.UpsertSuggestions(ctx, "rheem", "xe50", "Water Heater", want); err != nil {
		t.Fatalf("UpsertSuggestions: %v", err)
	}

	got, found, err := s.GetSuggestions(ctx, "rheem", "xe50")
	if err != nil {
		t.Fatalf("GetSuggestions: %v", err)
	}
	if !found {
		t.Fatal("expected entry to exist")
	}
	if len(got) != 1 || got[0].Consumable != "Air filter" || len(got[0].Products) != 2 {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if got[0].Products[0].EstimatedCost == nil || *got[0].Products[0].EstimatedCost != 18.99 {
		t.Errorf("estimatedCost mismatch: %v", got[0].Products[0].EstimatedCost)
	}
	if got[0].Products[1].EstimatedCost != nil {
		t.Errorf("nil estimatedCost should survive the round trip")
	}
}

func TestSuggestionCacheMiss(t *testing.T) {
	s := openTestStore(t)

	_, found, err := s.GetSuggestions(context.Background(), "nobody", "nothing")
	if err != nil {
		t.Fatalf("GetSuggestions: %v", err)
	}
	if found {
		t.Error("expected miss for unknown pair")
	}
}

func TestUpsertOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.UpsertSuggestions(ctx, "rheem", "xe50", "Water Heater", sampleSuggestions()); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	// Second write for the same key replaces the list (last write wins).
	if err := s.UpsertSuggestions(ctx, "rheem", "xe50", "Heater", []suggest.Suggestion{}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, found, err := s.GetSuggestions(ctx, "rheem", "xe50")
	if err != nil || !found {
		t.Fatalf("GetSuggestions: found=%v err=%v", found, err)
	}
	if len(got) != 0 {
		t.Errorf("expected overwritten empty list, got %+v", got)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM suggestion_cache").Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 1 {
		t.Errorf("expected a single row for the key, got %d", count)
	}
}

func TestNegativeCacheEntryIsAHit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.UpsertSuggestions(ctx, "nest", "learning", "Thermostat", nil); err != nil {
		t.Fatalf("UpsertSuggestions(nil): %v", err)
	}

	got, found, err := s.GetSuggestions(ctx, "nest", "learning")
	if err != nil {
		t.Fatalf("GetSuggestions: %v", err)
	}
	if !found {
		t.Fatal("an intentionally empty entry must still be found")
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil list", got)
	}
}

func TestBatchGetSuggestions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.UpsertSuggestions(ctx, "a", "1", "c", sampleSuggestions()); err != nil {
		t.Fatalf("upsert a|1: %v", err)
	}
	if err := s.UpsertSuggestions(ctx, "c", "3", "c", nil); err != nil {
		t.Fatalf("upsert c|3: %v", err)
	}

	got, err := s.BatchGetSuggestions(ctx, []suggest.Pair{
		{Make: "a", Model: "1"},
		{Make: "b", Model: "2"}, // not cached
		{Make: "c", Model: "3"},
	})
	if err != nil {
		t.Fatalf("BatchGetSuggestions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(got), got)
	}
	if _, ok := got["b|2"]; ok {
		t.Error("misses must be omitted, not synthesized")
	}
	if list, ok := got["c|3"]; !ok || len(list) != 0 {
		t.Errorf("negative entry c|3 missing or non-empty: %v", got)
	}
}

func TestBatchGetSuggestions_EmptyInput(t *testing.T) {
	s := openTestStore(t)

	got, err := s.BatchGetSuggestions(context.Background(), nil)
	if err != nil {
		t.Fatalf("BatchGetSuggestions(nil): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty map", got)
	}
}

func TestAssetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	want := Asset{ID: "a-1", Name: "Garage water heater", Category: "Water Heater", Make: "rheem", Model: "xe50", CreatedAt: now}
	if err := s.CreateAsset(ctx, want); err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}

	got, err := s.GetAsset(ctx, "a-1")
	if err != nil {
		t.Fatalf("GetAsset: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if _, err := s.GetAsset(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAsset(missing) = %v, want ErrNotFound", err)
	}
}

func TestThumbnailCandidatesAndUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	mustCreateAsset := func(a Asset) {
		t.Helper()
		a.CreatedAt = now
		if err := s.CreateAsset(ctx, a); err != nil {
			t.Fatalf("CreateAsset(%s): %v", a.ID, err)
		}
	}
	mustCreateItem := func(i Item) {
		t.Helper()
		i.CreatedAt = now
		if err := s.CreateItem(ctx, i); err != nil {
			t.Fatalf("CreateItem(%s): %v", i.ID, err)
		}
	}

	mustCreateAsset(Asset{ID: "a-1", Name: "Furnace", Make: "carrier", Model: "59sc2"})
	mustCreateAsset(Asset{ID: "a-2", Name: "Mystery box"}) // no make/model
	mustCreateItem(Item{ID: "i-1", AssetID: "a-1", Name: "Air filter"})
	mustCreateItem(Item{ID: "i-2", AssetID: "a-1", Name: "Igniter", ThumbnailURL: "https://img/x.jpg"})
	mustCreateItem(Item{ID: "i-3", AssetID: "a-2", Name: "Widget"})

	candidates, err := s.ListThumbnailCandidates(ctx)
	if err != nil {
		t.Fatalf("ListThumbnailCandidates: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ItemID != "i-1" {
		t.Fatalf("candidates = %+v, want only i-1", candidates)
	}
	if candidates[0].Make != "carrier" || candidates[0].Model != "59sc2" {
		t.Errorf("candidate asset fields = %+v", candidates[0])
	}

	if err := s.SetItemThumbnail(ctx, "i-1", "https://img/filter.jpg"); err != nil {
		t.Fatalf("SetItemThumbnail: %v", err)
	}
	item, err := s.GetItem(ctx, "i-1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item.ThumbnailURL != "https://img/filter.jpg" {
		t.Errorf("thumbnail = %q", item.ThumbnailURL)
	}

	if err := s.SetItemThumbnail(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetItemThumbnail(missing) = %v, want ErrNotFound", err)
	}

	// i-1 now has a thumbnail and drops out of the candidate list.
	candidates, err = s.ListThumbnailCandidates(ctx)
	if err != nil {
		t.Fatalf("ListThumbnailCandidates: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("candidates after update = %+v, want none", candidates)
	}
}

func TestServiceRecordRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	want := ServiceRecord{
		ID: "sr-1", AssetID: "a-1", Name: "Flush tank",
		FrequencyMonths: 12, LastDate: "2024-03-01", NextDate: "2025-03-01",
		CreatedAt: now,
	}
	if err := s.CreateServiceRecord(ctx, want); err != nil {
		t.Fatalf("CreateServiceRecord: %v", err)
	}

	got, err := s.GetServiceRecord(ctx, "sr-1")
	if err != nil {
		t.Fatalf("GetServiceRecord: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if err := s.UpdateServiceDates(ctx, "sr-1", "2025-03-02", "2026-03-02"); err != nil {
		t.Fatalf("UpdateServiceDates: %v", err)
	}
	got, err = s.GetServiceRecord(ctx, "sr-1")
	if err != nil {
		t.Fatalf("GetServiceRecord after update: %v", err)
	}
	if got.LastDate != "2025-03-02" || got.NextDate != "2026-03-02" {
		t.Errorf("dates not advanced: %+v", got)
	}
}
