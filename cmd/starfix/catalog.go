package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/star/starfix/internal/catalog"
)

func newCatalogCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the star catalog",
	}
	cmd.AddCommand(newCatalogImportCommand(opts))
	return cmd
}

func newCatalogImportCommand(opts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Snapshot the catalog into SQLite",
		Long: `Load the catalog from the configured file, cache or remote source and
write it to a SQLite snapshot that serve loads first on later starts.

Examples:
  starfix catalog import --out ./hip.db
  STARFIX_CATALOG_PATH=hip_main.dat starfix catalog import --out ./hip.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd.ErrOrStderr())

			cfg := loadCatalogConfig(logger, opts.file)
			if out == "" {
				out = cfg.SQLitePath
			}
			if out == "" {
				return fmt.Errorf("no snapshot path: pass --out or set STARFIX_CATALOG_SQLITE")
			}
			// Never read the snapshot being replaced.
			cfg.SQLitePath = ""

			cat, src, err := catalog.NewLoader(cfg, logger).Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading star catalog: %w", err)
			}
			info, err := catalog.WriteSQLite(cmd.Context(), out, src.Kind+":"+src.Location, cat.Stars())
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"id":          info.ID,
					"path":        out,
					"source":      info.Source,
					"stars":       info.StarCount,
					"imported_at": info.ImportedAt,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("catalog imported"))
			fmt.Fprintln(cmd.OutOrStdout(), row("Path", out))
			fmt.Fprintln(cmd.OutOrStdout(), row("Stars", fmt.Sprint(info.StarCount)))
			fmt.Fprintln(cmd.OutOrStdout(), row("ID", info.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "SQLite snapshot path (default $STARFIX_CATALOG_SQLITE)")
	return cmd
}
