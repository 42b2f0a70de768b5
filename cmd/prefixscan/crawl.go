package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nao1215/prefixscan/internal/checkpoint"
	"github.com/nao1215/prefixscan/internal/client"
	"github.com/nao1215/prefixscan/internal/config"
	"github.com/nao1215/prefixscan/internal/crawler"
	"github.com/nao1215/prefixscan/internal/model"
	"github.com/nao1215/prefixscan/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Explore the autocomplete service and collect every name",
		Long: `Crawl queries the 26 single-letter prefixes and recursively extends every
prefix that returned at least one name, up to the maximum depth.

Every query is recorded in the checkpoint. If the checkpoint already exists,
the crawl resumes: prefixes it lists are never queried again and the names
it holds are kept. Press Ctrl+C to stop; the next run picks up from there.

When the crawl finishes, the collected names are written to all_names.txt,
all_names.json and all_names.csv, and run statistics to summary.txt
(summary.md on request).

Examples:
  # Crawl with defaults
  prefixscan crawl

  # Crawl a local service faster and deeper
  prefixscan crawl --base-url http://localhost:8000 --delay 100ms --depth 6 -w 8

  # Use a SQLite checkpoint and write only the JSON and Markdown artifacts
  prefixscan crawl --checkpoint state.db --format json,markdown

  # Send an API key (prefer PREFIXSCAN_API_KEY to keep it out of shell history)
  prefixscan crawl -H "X-API-Key: secret"`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	// Endpoint flags
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Scheme and host of the autocomplete service")
	cmd.Flags().String("api-version", config.DefaultAPIVersion,
		"API version path segment (empty for none)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (host:port)")
	cmd.Flags().StringArrayP("header", "H", nil,
		`Extra request header as "Name: value" (repeatable)`)

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum recursion depth (single letters are depth 0)")
	cmd.Flags().Duration("delay", config.DefaultDelay,
		"Pause before every request, per worker")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of seed letters explored concurrently")

	// Checkpoint flags
	cmd.Flags().StringP("checkpoint", "C", "",
		"Checkpoint path (default: checkpoint.json, or the XDG data dir for sqlite)")
	cmd.Flags().String("backend", config.BackendAuto,
		"Checkpoint backend: auto, json or sqlite")

	// Output flags
	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir,
		"Directory for output artifacts")
	cmd.Flags().StringSliceP("format", "f", config.DefaultFormats,
		"Output artifacts: text, json, csv, summary, markdown")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyCrawlFlags(cmd, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, saving progress...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
}

// applyCrawlFlags overlays the flags the user set explicitly onto cfg.
// Flags left at their defaults do not override the file or environment.
func applyCrawlFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("base-url") {
		if cfg.BaseURL, err = flags.GetString("base-url"); err != nil {
			return err
		}
	}
	if flags.Changed("api-version") {
		if cfg.APIVersion, err = flags.GetString("api-version"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if flags.Changed("header") {
		headers, err := flags.GetStringArray("header")
		if err != nil {
			return err
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		for _, h := range headers {
			name, value, ok := strings.Cut(h, ":")
			name = strings.TrimSpace(name)
			if !ok || name == "" {
				return fmt.Errorf("invalid header %q: expected \"Name: value\"", h)
			}
			cfg.Headers[name] = strings.TrimSpace(value)
		}
	}
	if flags.Changed("depth") {
		if cfg.MaxDepth, err = flags.GetInt("depth"); err != nil {
			return err
		}
	}
	if flags.Changed("delay") {
		if cfg.Delay, err = flags.GetDuration("delay"); err != nil {
			return err
		}
	}
	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return err
		}
	}
	if flags.Changed("checkpoint") {
		if cfg.CheckpointPath, err = flags.GetString("checkpoint"); err != nil {
			return err
		}
	}
	if flags.Changed("backend") {
		if cfg.CheckpointBackend, err = flags.GetString("backend"); err != nil {
			return err
		}
	}
	if flags.Changed("output-dir") {
		if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
			return err
		}
	}
	if flags.Changed("format") {
		if cfg.Formats, err = flags.GetStringSlice("format"); err != nil {
			return err
		}
	}

	return nil
}

// runCrawl executes the crawl and writes the output artifacts.
// An interrupted crawl still writes its partial results and returns nil;
// the checkpoint holds everything needed to resume.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	checkpointPath := cfg.ResolveCheckpointPath()
	store, err := checkpoint.Open(checkpointPath, cfg.CheckpointBackend)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close checkpoint", "error", err)
		}
	}()

	snap, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if !snap.IsEmpty() {
		logger.Info("resuming from checkpoint",
			"path", checkpointPath,
			"visited", len(snap.Visited),
			"names", len(snap.Results),
		)
	}

	c, err := client.New(cfg.Endpoint(),
		client.WithTimeout(cfg.Timeout),
		client.WithUserAgent(cfg.UserAgent),
		client.WithHeaders(cfg.Headers),
		client.WithProxy(cfg.ProxyAddress),
		client.WithMaxBodySize(cfg.MaxBodySize),
		client.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	state := crawler.NewState(snap, store, logger)
	explorer := crawler.NewExplorer(c, state,
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithDelay(cfg.Delay),
		crawler.WithLogger(logger),
	)
	scheduler := crawler.NewScheduler(explorer,
		crawler.WithWorkers(cfg.Workers),
		crawler.WithSchedulerLogger(logger),
	)

	summary := &model.Summary{
		RunID:            runID,
		Endpoint:         c.Endpoint(),
		StartedAt:        time.Now(),
		RestoredPrefixes: len(snap.Visited),
		RestoredNames:    len(snap.Results),
	}

	runErr := scheduler.Run(ctx)
	summary.FinishedAt = time.Now()

	interrupted := runErr != nil && ctx.Err() != nil && errors.Is(runErr, ctx.Err())
	if runErr != nil && !interrupted {
		return fmt.Errorf("crawl aborted: %w", runErr)
	}

	final := state.Snapshot()
	stats := state.Stats()
	summary.Requests = stats.Requests
	summary.UniqueNames = len(final.Results)
	summary.PrefixesVisited = len(final.Visited)
	summary.Interrupted = interrupted

	result := &report.Result{Names: final.Results, Summary: summary}
	written, err := report.WriteAll(cfg.OutputDir, cfg.Formats, result)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := report.NewSummaryWriter(out).Write(result); err != nil {
		return err
	}
	fmt.Fprintln(out)
	for _, path := range written {
		fmt.Fprintf(out, "Wrote %s\n", path)
	}
	if interrupted {
		fmt.Fprintf(out, "Crawl interrupted. Run again to resume from %s\n", checkpointPath)
	}

	return nil
}
