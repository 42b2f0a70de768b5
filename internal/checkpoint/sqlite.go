package checkpoint

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/prefixscan/internal/model"
)

// SQLiteStore keeps the checkpoint in a SQLite database.
type SQLiteStore struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// path is the database file location.
	path string

	// mu guards the saved sets below.
	mu sync.Mutex

	// savedVisited and savedResults mirror what the database already holds,
	// so Save only writes the difference.
	savedVisited map[string]struct{}
	savedResults map[string]struct{}
}

// Options configures SQLiteStore behavior.
type Options struct {
	// CreateIfNotExists creates the database file and its directory if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool

	// ReadOnly opens an existing database without ever writing to it.
	// It overrides CreateIfNotExists and EnableWAL.
	ReadOnly bool
}

// DefaultOptions returns the options used for crawling.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// OpenSQLite opens or creates the SQLite checkpoint at path.
func OpenSQLite(path string, opts Options) (*SQLiteStore, error) {
	if opts.ReadOnly {
		opts.CreateIfNotExists = false
		opts.EnableWAL = false
	}

	existed := true
	if _, err := os.Stat(path); os.IsNotExist(err) {
		existed = false
		if !opts.CreateIfNotExists {
			return nil, fmt.Errorf("checkpoint database not found at %s", path)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to check checkpoint path: %w", err)
	}

	if opts.CreateIfNotExists {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
		}
	}

	// mode=rw refuses to create a new file; mode=rwc allows it.
	dsn := path + "?mode=rw"
	switch {
	case opts.ReadOnly:
		dsn = path + "?mode=ro"
	case opts.CreateIfNotExists:
		dsn = path + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint database: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:           db,
		path:         path,
		savedVisited: make(map[string]struct{}),
		savedResults: make(map[string]struct{}),
	}

	// Errors past this point on an existing file mean it is not a usable
	// checkpoint database.
	wrap := func(msg string, err error) error {
		_ = db.Close() //nolint:errcheck // already failing
		if existed {
			return fmt.Errorf("%w: %s: %s: %v", ErrCorruptCheckpoint, path, msg, err)
		}
		return fmt.Errorf("%s: %w", msg, err)
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			return nil, wrap("failed to enable WAL mode", err)
		}
	}

	if opts.ReadOnly {
		if _, err := db.ExecContext(context.Background(), "PRAGMA query_only=ON"); err != nil {
			return nil, wrap("failed to enforce read-only mode", err)
		}
		if err := store.checkTables(); err != nil {
			return nil, wrap("missing checkpoint tables", err)
		}
		return store, nil
	}

	if err := store.createTables(); err != nil {
		return nil, wrap("failed to create tables", err)
	}

	return store, nil
}

// createTables creates the schema if it doesn't exist.
func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS visited (
		prefix TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS results (
		name TEXT PRIMARY KEY
	);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// checkTables verifies the schema exists without modifying the database.
func (s *SQLiteStore) checkTables() error {
	for _, table := range []string{"visited", "results"} {
		var name string
		err := s.db.QueryRowContext(context.Background(),
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			return fmt.Errorf("table %s: %w", table, err)
		}
	}
	return nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Load reads both tables. An empty database yields an empty snapshot.
func (s *SQLiteStore) Load(ctx context.Context) (*model.Snapshot, error) {
	visited, err := s.queryColumn(ctx, "SELECT prefix FROM visited ORDER BY prefix")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptCheckpoint, s.path, err)
	}
	results, err := s.queryColumn(ctx, "SELECT name FROM results ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptCheckpoint, s.path, err)
	}
	snap := &model.Snapshot{Visited: visited, Results: results}
	if err := validateSnapshot(s.path, snap); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.savedVisited = toSet(visited)
	s.savedResults = toSet(results)
	s.mu.Unlock()

	return snap, nil
}

// queryColumn returns the single string column of every row of query.
func (s *SQLiteStore) queryColumn(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Save makes the database hold exactly snap, in one transaction. Only the
// difference from the last saved state is written.
func (s *SQLiteStore) Save(ctx context.Context, snap *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wantVisited := toSet(snap.Visited)
	wantResults := toSet(snap.Results)

	newVisited := missing(snap.Visited, s.savedVisited)
	newResults := missing(snap.Results, s.savedResults)
	staleVisited := missing(keys(s.savedVisited), wantVisited)
	staleResults := missing(keys(s.savedResults), wantResults)
	if len(newVisited) == 0 && len(newResults) == 0 && len(staleVisited) == 0 && len(staleResults) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin checkpoint transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	if err := execAll(ctx, tx, "DELETE FROM visited WHERE prefix = ?", staleVisited); err != nil {
		return fmt.Errorf("failed to remove released prefixes: %w", err)
	}
	if err := execAll(ctx, tx, "DELETE FROM results WHERE name = ?", staleResults); err != nil {
		return fmt.Errorf("failed to remove results: %w", err)
	}
	if err := execAll(ctx, tx, "INSERT OR IGNORE INTO visited (prefix) VALUES (?)", newVisited); err != nil {
		return fmt.Errorf("failed to save visited prefixes: %w", err)
	}
	if err := execAll(ctx, tx, "INSERT OR IGNORE INTO results (name) VALUES (?)", newResults); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit checkpoint: %w", err)
	}

	s.savedVisited = wantVisited
	s.savedResults = wantResults
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func execAll(ctx context.Context, tx *sql.Tx, query string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, v := range values {
		if _, err := stmt.ExecContext(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

// missing returns the values not present in saved.
func missing(values []string, saved map[string]struct{}) []string {
	var out []string
	for _, v := range values {
		if _, ok := saved[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
