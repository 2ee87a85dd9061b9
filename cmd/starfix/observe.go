package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/star/starfix/internal/observe"
	"github.com/star/starfix/internal/timescale"
)

const brightStarsKind = "bright-stars"

func newObserveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "observe <unix> <kind> [ident]",
		Short: "Compute one apparent position",
		Long: `Compute the apparent geocentric position of a target at a Unix time.

Kinds:
  star <hip>              Hipparcos star (needs the catalog)
  planet <name>           solar-system body, e.g. mars, jupiter
  sun, moon
  bright-stars <min-mag>  every catalog star with magnitude <= min-mag

Examples:
  starfix observe 1700000000 star 32349
  starfix observe 1700000000 planet saturn --format json
  starfix observe 1700000000 bright-stars 1.5`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			unix, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("%w: %q", observe.ErrInvalidTime, args[0])
			}
			ident := ""
			if len(args) == 3 {
				ident = args[2]
			}

			logger := opts.logger(cmd.ErrOrStderr())
			if args[1] == brightStarsKind {
				return runBrightStars(cmd, opts, unix, ident)
			}

			kind, err := observe.ParseKind(args[1])
			if err != nil {
				return err
			}
			if (kind == observe.KindStar || kind == observe.KindPlanet) && ident == "" {
				return fmt.Errorf("%s needs an identifier", kind)
			}

			pipeline, err := opts.newPipeline(cmd.Context(), logger, kind == observe.KindStar)
			if err != nil {
				return err
			}
			res, err := pipeline.ObserveAt(cmd.Context(), unix, kind, ident)
			if err != nil {
				return err
			}
			title := kind.String()
			if ident != "" {
				title += " " + ident
			}
			return writeResult(cmd.OutOrStdout(), opts.Format, title, res)
		},
	}
}

func runBrightStars(cmd *cobra.Command, opts *rootOptions, unix float64, rawMag string) error {
	minMag, err := strconv.ParseFloat(rawMag, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", observe.ErrInvalidMagnitude, rawMag)
	}
	t, err := timescale.Normalize(unix)
	if err != nil {
		return err
	}
	pipeline, err := opts.newPipeline(cmd.Context(), opts.logger(cmd.ErrOrStderr()), true)
	if err != nil {
		return err
	}
	rows, err := pipeline.ObserveBrightStars(cmd.Context(), t, minMag)
	if err != nil {
		return err
	}
	return writeBrightStars(cmd.OutOrStdout(), opts.Format, rows)
}

func newGHACommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "gha <unix>",
		Short: "Greenwich hour angle of the First Point of Aries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unix, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("%w: %q", observe.ErrInvalidTime, args[0])
			}
			t, err := timescale.Normalize(unix)
			if err != nil {
				return err
			}
			pipeline, err := opts.newPipeline(cmd.Context(), opts.logger(cmd.ErrOrStderr()), false)
			if err != nil {
				return err
			}
			gha, err := pipeline.AriesGHA(cmd.Context(), t)
			if err != nil {
				return err
			}
			return writeGHA(cmd.OutOrStdout(), opts.Format, gha)
		},
	}
}
