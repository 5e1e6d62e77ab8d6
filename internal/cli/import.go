package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jupaf/partidos/internal/ingest"
	"github.com/jupaf/partidos/pkg/partidos"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [dir]",
		Short: "Load scraped CSV files into tables",
		Long: `Import replaces one table per CSV file in dir (default partidos_data, or
import.dir in partidos.yaml).

Table names come from the file name: lower-cased, accents removed, spaces and
hyphens turned into underscores. Every column is text; empty cells are NULL.

Examples:
  partidos import
  partidos import ./partidos_data -v`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, cfg *partidos.Config, store partidos.Store, logger partidos.Logger) error {
				dir := cfg.ImportDir
				if len(args) == 1 {
					dir = args[0]
				}

				report, err := ingest.NewImporter(store, logger).ImportDir(ctx, dir)
				if err != nil {
					return err
				}

				logger.Info("✓ Imported %d file(s), %d row(s)", len(report.Tables), report.Rows())
				if len(report.Skipped) > 0 {
					logger.Info("⚠ Skipped %d file(s)", len(report.Skipped))
				}
				return nil
			})
		},
	}
}
