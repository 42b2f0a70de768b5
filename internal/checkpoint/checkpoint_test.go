package checkpoint

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/prefixscan/internal/config"
	"github.com/nao1215/prefixscan/internal/model"
)

// storeFactories builds each backend against a fresh temp dir.
var storeFactories = []struct {
	name string
	file string
	open func(t *testing.T, path string) Store
}{
	{
		name: "json",
		file: "checkpoint.json",
		open: func(_ *testing.T, path string) Store { return NewFileStore(path) },
	},
	{
		name: "json gzip",
		file: "checkpoint.json.gz",
		open: func(_ *testing.T, path string) Store { return NewFileStore(path) },
	},
	{
		name: "sqlite",
		file: "checkpoint.db",
		open: func(t *testing.T, path string) Store {
			t.Helper()
			s, err := OpenSQLite(path, DefaultOptions())
			if err != nil {
				t.Fatalf("failed to open sqlite store: %v", err)
			}
			return s
		},
	},
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	for _, f := range storeFactories {
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "nested", f.file)

			store := f.open(t, path)
			snap, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("load of missing checkpoint failed: %v", err)
			}
			if !snap.IsEmpty() {
				t.Fatalf("expected empty snapshot, got %+v", snap)
			}

			first := model.NewSnapshot(
				map[string]struct{}{"a": {}, "b": {}},
				map[string]struct{}{"amy": {}},
			)
			if err := store.Save(ctx, first); err != nil {
				t.Fatalf("save failed: %v", err)
			}

			second := model.NewSnapshot(
				map[string]struct{}{"a": {}, "b": {}, "aa": {}},
				map[string]struct{}{"amy": {}, "ann": {}},
			)
			if err := store.Save(ctx, second); err != nil {
				t.Fatalf("second save failed: %v", err)
			}
			if err := store.Close(); err != nil {
				t.Fatalf("close failed: %v", err)
			}

			reopened := f.open(t, path)
			defer reopened.Close()

			got, err := reopened.Load(ctx)
			if err != nil {
				t.Fatalf("reload failed: %v", err)
			}
			if strings.Join(got.Visited, ",") != "a,aa,b" {
				t.Errorf("unexpected visited %v", got.Visited)
			}
			if strings.Join(got.Results, ",") != "amy,ann" {
				t.Errorf("unexpected results %v", got.Results)
			}
		})
	}
}

func TestStoreSaveReplaces(t *testing.T) {
	t.Parallel()

	for _, f := range storeFactories {
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			path := filepath.Join(t.TempDir(), f.file)

			store := f.open(t, path)
			if _, err := store.Load(ctx); err != nil {
				t.Fatalf("load failed: %v", err)
			}
			full := &model.Snapshot{Visited: []string{"a", "b"}, Results: []string{"amy", "bob"}}
			if err := store.Save(ctx, full); err != nil {
				t.Fatalf("save failed: %v", err)
			}
			released := &model.Snapshot{Visited: []string{"a"}, Results: []string{"amy"}}
			if err := store.Save(ctx, released); err != nil {
				t.Fatalf("second save failed: %v", err)
			}
			if err := store.Close(); err != nil {
				t.Fatalf("close failed: %v", err)
			}

			reopened := f.open(t, path)
			defer reopened.Close()

			got, err := reopened.Load(ctx)
			if err != nil {
				t.Fatalf("reload failed: %v", err)
			}
			if strings.Join(got.Visited, ",") != "a" {
				t.Errorf("expected released prefix to be gone, got %v", got.Visited)
			}
			if strings.Join(got.Results, ",") != "amy" {
				t.Errorf("unexpected results %v", got.Results)
			}
		})
	}
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	t.Run("writes the documented JSON shape", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "checkpoint.json")
		store := NewFileStore(path)
		snap := &model.Snapshot{Visited: []string{"a"}, Results: []string{"amy"}}
		if err := store.Save(context.Background(), snap); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read checkpoint: %v", err)
		}
		want := `{"visited":["a"],"results":["amy"]}`
		if string(data) != want {
			t.Errorf("expected %s, got %s", want, data)
		}
	})

	t.Run("accepts documents with missing fields", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "checkpoint.json")
		if err := os.WriteFile(path, []byte(`{"visited":["a"]}`), 0600); err != nil {
			t.Fatalf("failed to write checkpoint: %v", err)
		}

		snap, err := NewFileStore(path).Load(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(snap.Visited) != 1 || snap.Results == nil || len(snap.Results) != 0 {
			t.Errorf("unexpected snapshot %+v", snap)
		}
	})

	t.Run("corrupt document is fatal", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "checkpoint.json")
		if err := os.WriteFile(path, []byte(`{"visited": [`), 0600); err != nil {
			t.Fatalf("failed to write checkpoint: %v", err)
		}

		_, err := NewFileStore(path).Load(context.Background())
		if !errors.Is(err, ErrCorruptCheckpoint) {
			t.Errorf("expected ErrCorruptCheckpoint, got %v", err)
		}
	})

	t.Run("visited entry outside the alphabet is fatal", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "checkpoint.json")
		if err := os.WriteFile(path, []byte(`{"visited":["a","B7"],"results":[]}`), 0600); err != nil {
			t.Fatalf("failed to write checkpoint: %v", err)
		}

		_, err := NewFileStore(path).Load(context.Background())
		if !errors.Is(err, ErrCorruptCheckpoint) {
			t.Errorf("expected ErrCorruptCheckpoint, got %v", err)
		}
	})

	t.Run("corrupt gzip is fatal", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "checkpoint.json.gz")
		if err := os.WriteFile(path, []byte(`{"visited":[]}`), 0600); err != nil {
			t.Fatalf("failed to write checkpoint: %v", err)
		}

		_, err := NewFileStore(path).Load(context.Background())
		if !errors.Is(err, ErrCorruptCheckpoint) {
			t.Errorf("expected ErrCorruptCheckpoint, got %v", err)
		}
	})

	t.Run("gzip output is compressed", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "checkpoint.json.gz")
		if err := NewFileStore(path).Save(context.Background(), &model.Snapshot{Visited: []string{"a"}}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read checkpoint: %v", err)
		}
		if !bytes.HasPrefix(data, []byte{0x1f, 0x8b}) {
			t.Error("expected gzip magic bytes")
		}
	})

	t.Run("leaves no temporary files behind", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store := NewFileStore(filepath.Join(dir, "checkpoint.json"))
		for i := 0; i < 3; i++ {
			if err := store.Save(context.Background(), &model.Snapshot{}); err != nil {
				t.Fatalf("save failed: %v", err)
			}
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to read dir: %v", err)
		}
		if len(entries) != 1 {
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				names = append(names, e.Name())
			}
			t.Errorf("expected only the checkpoint file, got %v", names)
		}
	})
}

func TestOpenSQLite(t *testing.T) {
	t.Parallel()

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "missing", "checkpoint.db")
		_, err := OpenSQLite(path, Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected informative error, got %v", err)
		}
		if _, statErr := os.Stat(filepath.Dir(path)); !os.IsNotExist(statErr) {
			t.Error("directory should not have been created")
		}
	})

	t.Run("non-database file is corrupt", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "checkpoint.db")
		if err := os.WriteFile(path, bytes.Repeat([]byte("garbage!"), 256), 0600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		_, err := OpenSQLite(path, DefaultOptions())
		if !errors.Is(err, ErrCorruptCheckpoint) {
			t.Errorf("expected ErrCorruptCheckpoint, got %v", err)
		}
	})

	t.Run("save without changes is a no-op", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store, err := OpenSQLite(filepath.Join(t.TempDir(), "checkpoint.db"), DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open: %v", err)
		}
		defer store.Close()

		snap := &model.Snapshot{Visited: []string{"a"}, Results: []string{"amy"}}
		for i := 0; i < 2; i++ {
			if err := store.Save(ctx, snap); err != nil {
				t.Fatalf("save %d failed: %v", i, err)
			}
		}

		got, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if len(got.Visited) != 1 || len(got.Results) != 1 {
			t.Errorf("expected no duplicates, got %+v", got)
		}
	})
}

func TestOpenSQLiteReadOnly(t *testing.T) {
	t.Parallel()

	t.Run("does not modify the database", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "checkpoint.db")
		store, err := OpenSQLite(path, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open: %v", err)
		}
		if err := store.Save(ctx, &model.Snapshot{Visited: []string{"a"}, Results: []string{"amy"}}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}

		before, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read database: %v", err)
		}

		ro, err := OpenSQLite(path, Options{ReadOnly: true})
		if err != nil {
			t.Fatalf("failed to open read-only: %v", err)
		}
		got, err := ro.Load(ctx)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if err := ro.Save(ctx, &model.Snapshot{Visited: []string{"b"}}); err == nil {
			t.Error("expected save through a read-only store to fail")
		}
		if err := ro.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}

		if strings.Join(got.Visited, ",") != "a" {
			t.Errorf("unexpected visited %v", got.Visited)
		}
		after, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read database: %v", err)
		}
		if !bytes.Equal(before, after) {
			t.Error("read-only open changed the database file")
		}
	})

	t.Run("database without checkpoint tables is corrupt and left untouched", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "other.db")
		db, err := sql.Open("sqlite", path)
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if _, err := db.ExecContext(ctx, "CREATE TABLE notes (body TEXT)"); err != nil {
			t.Fatalf("failed to create table: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}

		_, err = Inspect(ctx, path, config.BackendAuto, 10)
		if !errors.Is(err, ErrCorruptCheckpoint) {
			t.Errorf("expected ErrCorruptCheckpoint, got %v", err)
		}

		db, err = sql.Open("sqlite", path)
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()
		var count int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE name = 'visited'").Scan(&count); err != nil {
			t.Fatalf("failed to query schema: %v", err)
		}
		if count != 0 {
			t.Error("inspect must not create tables")
		}
	})
}

func TestResolveBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		backend string
		want    string
	}{
		{path: "checkpoint.json", backend: "", want: config.BackendJSON},
		{path: "checkpoint.json.gz", backend: config.BackendAuto, want: config.BackendJSON},
		{path: "state.db", backend: config.BackendAuto, want: config.BackendSQLite},
		{path: "state.SQLITE", backend: "", want: config.BackendSQLite},
		{path: "state.db", backend: config.BackendJSON, want: config.BackendJSON},
		{path: "state.json", backend: config.BackendSQLite, want: config.BackendSQLite},
	}

	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.backend, func(t *testing.T) {
			t.Parallel()

			if got := ResolveBackend(tt.path, tt.backend); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("unknown backend", func(t *testing.T) {
		t.Parallel()

		_, err := Open("checkpoint.json", "redis")
		if !errors.Is(err, ErrUnknownBackend) {
			t.Errorf("expected ErrUnknownBackend, got %v", err)
		}
	})

	t.Run("json backend", func(t *testing.T) {
		t.Parallel()

		store, err := Open(filepath.Join(t.TempDir(), "checkpoint.json"), config.BackendAuto)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer store.Close()
		if _, ok := store.(*FileStore); !ok {
			t.Errorf("expected *FileStore, got %T", store)
		}
	})

	t.Run("sqlite backend", func(t *testing.T) {
		t.Parallel()

		store, err := Open(filepath.Join(t.TempDir(), "checkpoint.db"), config.BackendAuto)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer store.Close()
		if _, ok := store.(*SQLiteStore); !ok {
			t.Errorf("expected *SQLiteStore, got %T", store)
		}
	})
}

func TestInspect(t *testing.T) {
	t.Parallel()

	t.Run("missing checkpoint reports absence", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "checkpoint.json")
		got, err := Inspect(context.Background(), path, config.BackendAuto, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Exists {
			t.Error("expected Exists=false")
		}
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Error("inspect must not create the checkpoint")
		}
	})

	for _, f := range storeFactories {
		t.Run("counts and samples "+f.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			path := filepath.Join(t.TempDir(), f.file)
			store := f.open(t, path)

			visited := make(map[string]struct{})
			for _, p := range model.Seeds() {
				visited[p] = struct{}{}
			}
			if err := store.Save(ctx, model.NewSnapshot(visited, map[string]struct{}{"amy": {}})); err != nil {
				t.Fatalf("save failed: %v", err)
			}
			if err := store.Close(); err != nil {
				t.Fatalf("close failed: %v", err)
			}

			got, err := Inspect(ctx, path, config.BackendAuto, 10)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Exists {
				t.Fatal("expected Exists=true")
			}
			if got.VisitedCount != 26 {
				t.Errorf("expected 26 visited, got %d", got.VisitedCount)
			}
			if got.ResultCount != 1 {
				t.Errorf("expected 1 result, got %d", got.ResultCount)
			}
			if len(got.Sample) != 10 || got.Sample[0] != "a" {
				t.Errorf("unexpected sample %v", got.Sample)
			}
		})
	}

	t.Run("sample larger than checkpoint", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "checkpoint.json")
		if err := NewFileStore(path).Save(ctx, &model.Snapshot{Visited: []string{"a", "b"}}); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		got, err := Inspect(ctx, path, config.BackendAuto, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.Sample) != 2 {
			t.Errorf("expected 2 samples, got %v", got.Sample)
		}
	})

	t.Run("corrupt checkpoint is an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "checkpoint.json")
		if err := os.WriteFile(path, []byte("nope"), 0600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		_, err := Inspect(context.Background(), path, config.BackendAuto, 10)
		if !errors.Is(err, ErrCorruptCheckpoint) {
			t.Errorf("expected ErrCorruptCheckpoint, got %v", err)
		}
	})
}
