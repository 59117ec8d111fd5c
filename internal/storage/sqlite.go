// Package storage persists hearth's records in SQLite: the consumable
// suggestion cache, assets, inventory items, and service records.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hearthhq/hearth/internal/suggest"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used by
// tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "hearth.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Check if already applied.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Suggestion cache ---

// UpsertSuggestions writes the cache entry for an already-normalized
// (make, model) pair, replacing any prior entry for the same key. The row
// replace is atomic; readers never see a partial write.
func (s *Store) UpsertSuggestions(ctx context.Context, mk, model, category string, suggestions []suggest.Suggestion) error {
	if suggestions == nil {
		suggestions = []suggest.Suggestion{}
	}
	payload, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("marshaling suggestions: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO suggestion_cache (make, model, category, suggestions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(make, model) DO UPDATE SET
			category = excluded.category,
			suggestions = excluded.suggestions,
			updated_at = excluded.updated_at`,
		mk, model, category, string(payload), now, now,
	)
	return err
}

// GetSuggestions returns the cached list for a normalized pair, with a found
// flag. An entry whose list is empty is still a hit (negative cache).
func (s *Store) GetSuggestions(ctx context.Context, mk, model string) ([]suggest.Suggestion, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT suggestions FROM suggestion_cache WHERE make = ? AND model = ?`,
		mk, model,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	suggestions, err := unmarshalSuggestions(payload)
	if err != nil {
		return nil, false, err
	}
	return suggestions, true, nil
}

// BatchGetSuggestions returns cached lists for the subset of the given
// normalized pairs that exist, in a single disjunctive query. Keys in the
// returned map follow suggest.NormalizeKey; absent pairs are omitted.
func (s *Store) BatchGetSuggestions(ctx context.Context, pairs []suggest.Pair) (map[string][]suggest.Suggestion, error) {
	results := make(map[string][]suggest.Suggestion)
	if len(pairs) == 0 {
		return results, nil
	}

	conds := make([]string, 0, len(pairs))
	args := make([]any, 0, len(pairs)*2)
	for _, p := range pairs {
		conds = append(conds, "(make = ? AND model = ?)")
		args = append(args, p.Make, p.Model)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT make, model, suggestions FROM suggestion_cache WHERE `+strings.Join(conds, " OR "),
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var mk, model, payload string
		if err := rows.Scan(&mk, &model, &payload); err != nil {
			return nil, err
		}
		suggestions, err := unmarshalSuggestions(payload)
		if err != nil {
			return nil, err
		}
		results[suggest.NormalizeKey(mk, model)] = suggestions
	}
	return results, rows.Err()
}

func unmarshalSuggestions(payload string) ([]suggest.Suggestion, error) {
	suggestions := []suggest.Suggestion{}
	if err := json.Unmarshal([]byte(payload), &suggestions); err != nil {
		return nil, fmt.Errorf("unmarshaling cached suggestions: %w", err)
	}
	return suggestions, nil
}

// --- Assets ---

func (s *Store) CreateAsset(ctx context.Context, a Asset) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (id, name, category, make, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Category, a.Make, a.Model, a.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetAsset(ctx context.Context, id string) (Asset, error) {
	var a Asset
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, make, model, created_at
		FROM assets WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.Category, &a.Make, &a.Model, &createdAt)
	if err == sql.ErrNoRows {
		return Asset{}, ErrNotFound
	}
	if err != nil {
		return Asset{}, err
	}
	if a.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Asset{}, fmt.Errorf("parsing created_at: %w", err)
	}
	return a, nil
}

func (s *Store) ListAssets(ctx context.Context) ([]Asset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, make, model, created_at
		FROM assets ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Asset
	for rows.Next() {
		var a Asset
		var createdAt string
		if err := rows.Scan(&a.ID, &a.Name, &a.Category, &a.Make, &a.Model, &createdAt); err != nil {
			return nil, err
		}
		if a.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

// --- Items ---

func (s *Store) CreateItem(ctx context.Context, i Item) error {
	if i.Quantity == 0 {
		i.Quantity = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, asset_id, name, quantity, thumbnail_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		i.ID, i.AssetID, i.Name, i.Quantity, i.ThumbnailURL, i.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetItem(ctx context.Context, id string) (Item, error) {
	var i Item
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, asset_id, name, quantity, thumbnail_url, created_at
		FROM items WHERE id = ?`, id,
	).Scan(&i.ID, &i.AssetID, &i.Name, &i.Quantity, &i.ThumbnailURL, &createdAt)
	if err == sql.ErrNoRows {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, err
	}
	if i.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Item{}, fmt.Errorf("parsing created_at: %w", err)
	}
	return i, nil
}

func (s *Store) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, asset_id, name, quantity, thumbnail_url, created_at
		FROM items ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Item
	for rows.Next() {
		var i Item
		var createdAt string
		if err := rows.Scan(&i.ID, &i.AssetID, &i.Name, &i.Quantity, &i.ThumbnailURL, &createdAt); err != nil {
			return nil, err
		}
		if i.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		results = append(results, i)
	}
	return results, rows.Err()
}

// ListThumbnailCandidates returns items without a thumbnail whose linked
// asset carries both make and model.
func (s *Store) ListThumbnailCandidates(ctx context.Context) ([]ThumbnailCandidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.name, a.make, a.model
		FROM items i JOIN assets a ON a.id = i.asset_id
		WHERE i.thumbnail_url = '' AND a.make != '' AND a.model != ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ThumbnailCandidate
	for rows.Next() {
		var c ThumbnailCandidate
		if err := rows.Scan(&c.ItemID, &c.ItemName, &c.Make, &c.Model); err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// SetItemThumbnail writes the thumbnail URL onto one item row.
func (s *Store) SetItemThumbnail(ctx context.Context, id, url string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE items SET thumbnail_url = ? WHERE id = ?`, url, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Service records ---

func (s *Store) CreateServiceRecord(ctx context.Context, r ServiceRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO service_records (id, asset_id, name, frequency_months, last_date, next_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.AssetID, r.Name, r.FrequencyMonths, r.LastDate, r.NextDate,
		r.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetServiceRecord(ctx context.Context, id string) (ServiceRecord, error) {
	var r ServiceRecord
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, asset_id, name, frequency_months, last_date, next_date, created_at
		FROM service_records WHERE id = ?`, id,
	).Scan(&r.ID, &r.AssetID, &r.Name, &r.FrequencyMonths, &r.LastDate, &r.NextDate, &createdAt)
	if err == sql.ErrNoRows {
		return ServiceRecord{}, ErrNotFound
	}
	if err != nil {
		return ServiceRecord{}, err
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return ServiceRecord{}, fmt.Errorf("parsing created_at: %w", err)
	}
	return r, nil
}

func (s *Store) ListServiceRecords(ctx context.Context) ([]ServiceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, asset_id, name, frequency_months, last_date, next_date, created_at
		FROM service_records ORDER BY next_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ServiceRecord
	for rows.Next() {
		var r ServiceRecord
		var createdAt string
		if err := rows.Scan(&r.ID, &r.AssetID, &r.Name, &r.FrequencyMonths, &r.LastDate, &r.NextDate, &createdAt); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// UpdateServiceDates advances a record after the task has been done.
func (s *Store) UpdateServiceDates(ctx context.Context, id, lastDate, nextDate string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE service_records SET last_date = ?, next_date = ? WHERE id = ?`,
		lastDate, nextDate, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
