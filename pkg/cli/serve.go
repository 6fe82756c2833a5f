package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/getmockd/commercemock/internal/storage"
	"github.com/getmockd/commercemock/pkg/api"
	"github.com/getmockd/commercemock/pkg/config"
	"github.com/getmockd/commercemock/pkg/logging"
	"github.com/getmockd/commercemock/pkg/repository"
	"github.com/getmockd/commercemock/pkg/resources"
	"github.com/getmockd/commercemock/pkg/seed"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 30 * time.Second

func newServeCommand(opts *serveOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock API server (default command)",
		Example: `  # Start with defaults on :8989
  commercemock serve

  # Load fixtures and validate drafts against the schemas
  commercemock serve --seed 'fixtures/**/*.yaml' --strict

  # Start from a configuration file on a custom port
  commercemock serve --config commercemock.yaml --port 3000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	addServerFlags(cmd.Flags(), opts)
	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cfg, err := loadConfig(cmd.Flags(), opts)
	if err != nil {
		return err
	}

	log, closeLog, err := logging.Open(cfg.LoggingConfig())
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := newServer(ctx, cfg, log)
	if err != nil {
		return err
	}
	return serve(ctx, srv)
}

// newServer builds the store, the repositories and the HTTP server, and
// loads the seed fixtures.
func newServer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*api.Server, error) {
	metrics := repository.NewMetricsObserver()
	registry, err := resources.NewRegistry(storage.NewMemoryStore(), resources.Options{
		Observer:     repository.MultiObserver{metrics, repository.NewLoggingObserver(log)},
		DefaultLimit: cfg.Query.DefaultLimit,
		MaxLimit:     cfg.Query.MaxLimit,
		StrictDrafts: cfg.StrictDrafts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build repositories: %w", err)
	}

	if _, err := seed.NewLoader(registry, log).Load(ctx, cfg.Seed.Files); err != nil {
		return nil, fmt.Errorf("failed to load seed fixtures: %w", err)
	}
	// Seeding is not part of the reported traffic.
	metrics.Reset()

	srv := api.NewServer(registry, metrics, api.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})
	srv.SetLogger(log)
	return srv, nil
}

// serve runs srv until ctx is done or the listener fails, then shuts it down.
func serve(ctx context.Context, srv *api.Server) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
