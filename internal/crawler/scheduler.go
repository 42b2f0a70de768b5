package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/prefixscan/internal/model"
)

// Scheduler runs one exploration task per seed letter on a bounded pool.
type Scheduler struct {
	// explorer is shared by all tasks.
	explorer *Explorer

	// workers is the maximum number of concurrent tasks.
	workers int

	logger *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithWorkers sets the maximum number of concurrent tasks.
// Default is 4 if not specified.
func WithWorkers(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithSchedulerLogger sets the logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a Scheduler around explorer.
func NewScheduler(explorer *Explorer, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		explorer: explorer,
		workers:  4,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Run explores the 26 seed subtrees and blocks until all of them finish.
//
// The first checkpoint save failure cancels the remaining tasks and is
// returned. If ctx is cancelled, Run waits for every task to stop, saves a
// final checkpoint without the abandoned prefixes and returns the context's
// error.
func (s *Scheduler) Run(ctx context.Context) error {
	parent := ctx
	seeds := model.Seeds()
	s.logger.Info("starting crawl",
		"seeds", len(seeds),
		"workers", s.workers,
	)

	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, seed := range seeds {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err := s.explorer.Explore(ctx, seed, model.Depth(seed)); err != nil {
				return err
			}
			s.logger.Debug("seed subtree done", "seed", seed)
			return nil
		})
	}

	err := g.Wait()
	if err != nil && parent.Err() != nil {
		if flushErr := s.explorer.state.Flush(parent); flushErr != nil {
			return fmt.Errorf("crawl interrupted: %w", flushErr)
		}
	}

	stats := s.explorer.state.Stats()
	s.logger.Info("crawl finished",
		"elapsed", time.Since(startTime),
		"requests", stats.Requests,
		"visited", stats.Visited,
		"names", stats.Results,
	)

	return err
}
