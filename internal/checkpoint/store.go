package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/prefixscan/internal/config"
	"github.com/nao1215/prefixscan/internal/model"
)

// Checkpoint errors.
var (
	// ErrCorruptCheckpoint is returned when a checkpoint exists but cannot be read back.
	ErrCorruptCheckpoint = errors.New("checkpoint is corrupt or unreadable")

	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown checkpoint backend")
)

// Store loads and saves checkpoint snapshots.
type Store interface {
	// Load returns the persisted snapshot, or an empty snapshot when none exists.
	Load(ctx context.Context) (*model.Snapshot, error)

	// Save replaces the persisted snapshot with snap.
	Save(ctx context.Context, snap *model.Snapshot) error

	// Close releases any resources held by the store.
	Close() error
}

// Open creates the Store for path using the named backend.
// config.BackendAuto (or an empty name) selects SQLite for .db, .sqlite and
// .sqlite3 files and JSON for everything else.
func Open(path, backend string) (Store, error) {
	switch ResolveBackend(path, backend) {
	case config.BackendJSON:
		return NewFileStore(path), nil
	case config.BackendSQLite:
		return OpenSQLite(path, DefaultOptions())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// ResolveBackend returns the concrete backend name for path.
// Unknown names are returned unchanged.
func ResolveBackend(path, backend string) string {
	if backend != "" && backend != config.BackendAuto {
		return backend
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return config.BackendSQLite
	default:
		return config.BackendJSON
	}
}

// validateSnapshot rejects visited entries that are not prefixes over
// model.Alphabet.
func validateSnapshot(path string, snap *model.Snapshot) error {
	for _, prefix := range snap.Visited {
		if err := model.ValidatePrefix(prefix); err != nil {
			return fmt.Errorf("%w: %s: visited entry %q: %v", ErrCorruptCheckpoint, path, prefix, err)
		}
	}
	return nil
}

// Inspection is a read-only summary of a checkpoint.
type Inspection struct {
	// Path is the inspected checkpoint location.
	Path string `json:"path"`

	// Backend is the backend used to read it.
	Backend string `json:"backend"`

	// Exists is false when there is no checkpoint at Path.
	Exists bool `json:"exists"`

	// VisitedCount equals the number of requests the crawl has made so far,
	// since every visited prefix is queried exactly once.
	VisitedCount int `json:"visited_count"`

	// ResultCount is the number of distinct suggestions stored.
	ResultCount int `json:"result_count"`

	// Sample holds the first visited prefixes in stored order.
	Sample []string `json:"sample"`
}

// Inspect reads the checkpoint at path without modifying it.
// A missing checkpoint is reported through Inspection.Exists, not an error.
func Inspect(ctx context.Context, path, backend string, sampleSize int) (*Inspection, error) {
	resolved := ResolveBackend(path, backend)
	result := &Inspection{Path: path, Backend: resolved, Sample: []string{}}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to stat checkpoint: %w", err)
	}
	result.Exists = true

	var store Store
	switch resolved {
	case config.BackendJSON:
		store = NewFileStore(path)
	case config.BackendSQLite:
		s, err := OpenSQLite(path, Options{ReadOnly: true})
		if err != nil {
			return nil, err
		}
		store = s
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	defer store.Close()

	snap, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	result.VisitedCount = len(snap.Visited)
	result.ResultCount = len(snap.Results)
	if sampleSize > len(snap.Visited) {
		sampleSize = len(snap.Visited)
	}
	if sampleSize > 0 {
		result.Sample = append(result.Sample, snap.Visited[:sampleSize]...)
	}

	return result, nil
}
