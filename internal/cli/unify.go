package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jupaf/partidos/internal/tui"
	"github.com/jupaf/partidos/internal/unifier"
	"github.com/jupaf/partidos/pkg/partidos"
)

func newUnifyCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "unify",
		Short: "Rebuild the unified match-log table",
		Long: `Unify drops and rebuilds the destination table from every source table.

The unify command:
1. Discovers tables ending with the source suffix (roster and destination excluded)
2. Reconciles their columns; a column declared with different types becomes text
3. Recreates the destination with the union of the columns
4. Copies every source's rows, with NULL for columns a source lacks

Steps 2-4 run in one transaction. Tables whose names contain anything but
letters, digits and underscores are skipped with a warning.

Examples:
  # Rebuild partidos in the default SQLite database
  partidos unify

  # Show the reconciled schema without writing
  partidos unify --dry-run

  # Rebuild in PostgreSQL
  partidos unify --dsn postgresql://scout@localhost/futbol`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, cfg *partidos.Config, store partidos.Store, logger partidos.Logger) error {
				u := unifier.New(store, logger, unifier.Options{
					Suffix:      cfg.SourceSuffix,
					Destination: cfg.Destination,
					Exclude:     exclusions(cfg),
				})

				if dryRun {
					plan, err := u.Plan(ctx)
					if err != nil {
						return err
					}
					out := cmd.OutOrStdout()
					return tui.RenderPlan(out, plan, tui.DetectMode(out))
				}

				_, err := u.Run(ctx)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Discover and reconcile only; print the plan and write nothing")
	return cmd
}
