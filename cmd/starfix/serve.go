package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/star/starfix/internal/api"
	"github.com/star/starfix/internal/catalog"
	"github.com/star/starfix/internal/ephemeris"
	"github.com/star/starfix/internal/health"
	"github.com/star/starfix/internal/metrics"
	"github.com/star/starfix/internal/observe"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP query service",
		Long: `Load the ephemeris and the star catalog, then serve the query routes.

Catalog sources are tried in order: SQLite snapshot, local file, newest
cache file, remote fetch (cached on success).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	logger := opts.logger(cmd.OutOrStdout())

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpCfg := loadHTTPConfig(logger, opts.file)

	eph, err := opts.newEphemeris(logger)
	if err != nil {
		return err
	}

	loader := catalog.NewLoader(loadCatalogConfig(logger, opts.file), logger)
	cat, src, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading star catalog: %w", err)
	}
	metrics.SetCatalogSize(cat.Len())

	readiness := readinessChecks(cat, eph, time.Now)

	pipeline := observe.New(cat, eph, logger)
	srv := api.NewServer(httpCfg, pipeline, readiness, logger)

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			"addr", httpCfg.Addr,
			"catalog_source", src.Kind,
			"catalog_stars", cat.Len(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// readinessChecks reports not ready while the catalog is empty or the
// current time has left the ephemeris validity span.
func readinessChecks(cat *catalog.Catalog, eph *ephemeris.Ephemeris, now func() time.Time) *health.Readiness {
	readiness := health.NewReadiness()
	readiness.Register("catalog", func() error {
		if cat.Len() == 0 {
			return errors.New("catalog is empty")
		}
		return nil
	})
	readiness.Register("ephemeris", func() error {
		if ds := eph.Dataset(); !ds.Covers(now()) {
			from, to := ds.Span()
			return fmt.Errorf("current time outside dataset span %s..%s",
				from.Format(time.DateOnly), to.Format(time.DateOnly))
		}
		return nil
	})
	return readiness
}
