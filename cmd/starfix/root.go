package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/star/starfix/internal/catalog"
	"github.com/star/starfix/internal/ephemeris"
	"github.com/star/starfix/internal/metrics"
	"github.com/star/starfix/internal/observe"
)

// validFormats are the accepted --format values.
var validFormats = []string{"text", "json"}

// rootOptions holds global flags and the config they resolve to.
type rootOptions struct {
	ConfigPath string
	Format     string

	file  fileConfig
	level slog.Level
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "starfix",
		Short: "Apparent positions of stars, planets, the Sun and the Moon",
		Long: `starfix answers point-in-time astronomical queries: apparent geocentric
RA/Dec/distance and magnitude for Hipparcos stars and solar-system bodies,
and the Greenwich hour angle of Aries.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			path := opts.ConfigPath
			if path == "" {
				path = os.Getenv("STARFIX_CONFIG")
			}
			fc, err := loadFileConfig(path)
			if err != nil {
				return err
			}
			level, err := loadLogLevel(fc)
			if err != nil {
				return err
			}
			opts.file = fc
			opts.level = level
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML config file (default $STARFIX_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newObserveCommand(opts))
	cmd.AddCommand(newGHACommand(opts))
	cmd.AddCommand(newCatalogCommand(opts))

	return cmd
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: o.level}))
}

// newEphemeris loads the configured dataset.
func (o *rootOptions) newEphemeris(logger *slog.Logger) (*ephemeris.Ephemeris, error) {
	cfg := loadEphemerisConfig(logger, o.file)
	ds, err := cfg.dataset()
	if err != nil {
		return nil, fmt.Errorf("loading ephemeris dataset: %w", err)
	}
	return ephemeris.New(ds, cfg.Config, logger), nil
}

// newPipeline wires the ephemeris and, when withCatalog is set, the star
// catalog into a pipeline. Without a catalog star lookups fail.
func (o *rootOptions) newPipeline(ctx context.Context, logger *slog.Logger, withCatalog bool) (*observe.Pipeline, error) {
	eph, err := o.newEphemeris(logger)
	if err != nil {
		return nil, err
	}

	cat := catalog.New(nil)
	if withCatalog {
		loader := catalog.NewLoader(loadCatalogConfig(logger, o.file), logger)
		cat, _, err = loader.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading star catalog: %w", err)
		}
		metrics.SetCatalogSize(cat.Len())
	}
	return observe.New(cat, eph, logger), nil
}
