package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/prefixscan/internal/model"
)

// Fetcher queries the remote service for one prefix.
// Failures are reported as an empty result, never as an error.
type Fetcher interface {
	Fetch(ctx context.Context, prefix string) []string
}

// Explorer walks one prefix subtree depth-first.
type Explorer struct {
	// fetcher performs the remote queries.
	fetcher Fetcher

	// state is shared with every other explorer of the crawl.
	state *State

	// maxDepth is the deepest depth queried. Seeds are depth 0.
	maxDepth int

	// delay is the pause before each query.
	delay time.Duration

	logger *slog.Logger
}

// ExplorerOption configures an Explorer.
type ExplorerOption func(*Explorer)

// WithMaxDepth sets the deepest depth to query.
// 0 queries only the seed letters.
func WithMaxDepth(depth int) ExplorerOption {
	return func(e *Explorer) {
		e.maxDepth = depth
	}
}

// WithDelay sets the pause before each query.
func WithDelay(d time.Duration) ExplorerOption {
	return func(e *Explorer) {
		e.delay = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ExplorerOption {
	return func(e *Explorer) {
		e.logger = logger
	}
}

// NewExplorer creates an Explorer querying through fetcher and recording into state.
func NewExplorer(fetcher Fetcher, state *State, opts ...ExplorerOption) *Explorer {
	e := &Explorer{
		fetcher:  fetcher,
		state:    state,
		maxDepth: 5,
		delay:    1 * time.Second,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Explore queries prefix at depth and, if it returned names, every child
// prefix at depth+1. Already visited prefixes and prefixes deeper than the
// maximum depth are skipped.
//
// The only errors returned are a failed checkpoint save and the context's
// error after cancellation.
func (e *Explorer) Explore(ctx context.Context, prefix string, depth int) error {
	if depth > e.maxDepth {
		return nil
	}
	if !e.state.TryVisit(prefix) {
		return nil
	}

	if err := e.wait(ctx); err != nil {
		e.state.Unvisit(prefix)
		return err
	}

	e.logger.Debug("querying prefix", "prefix", prefix, "depth", depth)
	names := e.fetcher.Fetch(ctx, prefix)
	e.state.CountRequest()

	// An empty result caused by shutdown is not an answer.
	if err := ctx.Err(); err != nil {
		e.state.Unvisit(prefix)
		return err
	}

	if err := e.state.Record(ctx, names); err != nil {
		return err
	}

	if len(names) == 0 {
		return nil
	}
	e.logger.Debug("prefix returned names", "prefix", prefix, "count", len(names))

	if depth+1 > e.maxDepth {
		return nil
	}
	for _, child := range model.Children(prefix) {
		if err := e.Explore(ctx, child, depth+1); err != nil {
			// A parent stays visited only once its subtree is complete.
			if ctx.Err() != nil {
				e.state.Unvisit(prefix)
			}
			return err
		}
	}
	return nil
}

// wait blocks for the configured delay or until ctx is done.
func (e *Explorer) wait(ctx context.Context) error {
	if e.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(e.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
