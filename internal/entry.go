// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/binsite/internal/render"
	"github.com/starford/binsite/internal/revision"
	"github.com/starford/binsite/internal/site"
	"github.com/starford/binsite/internal/storage"
	"github.com/starford/binsite/internal/watch"
)

// Run regenerates the site once and, when watching is enabled, keeps
// regenerating it until ctx is cancelled or a signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Logs go to stderr so a dry run can print the page on stdout.
	logger := slog.New(slog.NewJSONHandler(app.stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("template", cfg.Site.Template),
		slog.String("bins", cfg.Site.Bins),
		slog.String("output", cfg.Site.OutputPath()),
		slog.String("repository", cfg.Repository.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(storage.Paths{
		Template: cfg.Site.Template,
		Bins:     cfg.Site.Bins,
		Output:   cfg.Site.Output,
	}, cfg.Site.AtomicWrite)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	repo, err := revision.Open(cfg.Repository.Path, cfg.Repository.ShortLength)
	if err != nil {
		return err
	}

	gen := site.NewGenerator(store, repo,
		site.WithMarkers(cfg.Markers.Markers),
		site.WithRenderer(render.New(cfg.Site.LinkPrefix)),
		site.WithInPlace(cfg.Site.InPlace()),
		site.WithLogger(logger),
	)

	if app.dryRun {
		res, err := gen.Render(ctx)
		if err != nil {
			return err
		}
		if _, err := app.stdout.Write(res.Document); err != nil {
			return fmt.Errorf("write dry-run output: %w", err)
		}
		return nil
	}

	if _, err := gen.Regenerate(ctx); err != nil {
		return err
	}

	if !cfg.Watch.Enabled {
		return nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, stop := context.WithCancel(gCtx)
	defer stop()

	g.Go(func() error {
		defer stop()
		return watch.Watch(watchCtx, watch.Config{
			Dirs:     []string{cfg.Site.Bins},
			Files:    []string{cfg.Site.Template},
			Refresh:  repo.WatchPaths,
			Debounce: cfg.Watch.Debounce,
		}, logger, func(ctx context.Context) error {
			_, err := gen.Regenerate(ctx)
			return err
		})
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-watchCtx.Done():
		}
		stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Watcher stopped")
	return nil
}
