package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nao1215/prefixscan/internal/checkpoint"
	"github.com/nao1215/prefixscan/internal/model"
)

// State is the shared state of one crawl.
// All methods are safe for concurrent use.
type State struct {
	// mu guards every field below, and is held across checkpoint writes so
	// that each persisted snapshot is internally consistent.
	mu sync.Mutex

	// visited holds every prefix claimed for querying.
	visited map[string]struct{}

	// results holds every distinct name returned by the service.
	results map[string]struct{}

	// requests counts remote calls made by this process.
	requests int64

	// store receives a snapshot after every merge. Nil disables persistence.
	store checkpoint.Store

	logger *slog.Logger
}

// Stats is a point-in-time view of the state's counters.
type Stats struct {
	Visited  int
	Results  int
	Requests int64
}

// NewState creates a State seeded from snap, which may be nil.
// The request counter always starts at zero.
func NewState(snap *model.Snapshot, store checkpoint.Store, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}

	s := &State{
		visited: make(map[string]struct{}),
		results: make(map[string]struct{}),
		store:   store,
		logger:  logger,
	}
	if snap != nil {
		s.visited = snap.VisitedSet()
		s.results = snap.ResultSet()
	}
	return s
}

// TryVisit claims prefix. It returns false if the prefix was already claimed.
func (s *State) TryVisit(prefix string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.visited[prefix]; ok {
		return false
	}
	s.visited[prefix] = struct{}{}
	return true
}

// Unvisit releases a claimed prefix whose query was abandoned.
func (s *State) Unvisit(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.visited, prefix)
}

// CountRequest records one remote call.
func (s *State) CountRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests++
}

// Record merges names into the result set and saves a checkpoint.
// The save runs to completion even if ctx is cancelled meanwhile.
func (s *State) Record(ctx context.Context, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, name := range names {
		if _, ok := s.results[name]; ok {
			continue
		}
		s.results[name] = struct{}{}
		added++
	}

	if s.store == nil {
		return nil
	}

	snap := model.NewSnapshot(s.visited, s.results)
	if err := s.store.Save(context.WithoutCancel(ctx), snap); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	s.logger.Debug("checkpoint saved",
		"visited", len(snap.Visited),
		"results", len(snap.Results),
		"new_names", added,
	)
	return nil
}

// Flush saves the current snapshot, including prefixes released by Unvisit.
// Like Record, it ignores cancellation of ctx.
func (s *State) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil
	}

	snap := model.NewSnapshot(s.visited, s.results)
	if err := s.store.Save(context.WithoutCancel(ctx), snap); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	s.logger.Debug("checkpoint flushed", "visited", len(snap.Visited), "results", len(snap.Results))
	return nil
}

// Snapshot returns a sorted copy of the visited and result sets.
func (s *State) Snapshot() *model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return model.NewSnapshot(s.visited, s.results)
}

// Stats returns the current counters.
func (s *State) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Visited:  len(s.visited),
		Results:  len(s.results),
		Requests: s.requests,
	}
}
