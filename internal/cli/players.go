package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jupaf/partidos/internal/roster"
	"github.com/jupaf/partidos/pkg/partidos"
)

func newPlayersCmd() *cobra.Command {
	var tag bool

	cmd := &cobra.Command{
		Use:   "players",
		Short: "Sync the player roster from the source tables",
		Long: `Players creates the roster table (default jugadores) if needed and adds the
player of every source table: the table name without the suffix, with
underscores read as spaces. Existing players keep their ids.

With --tag, each source table also gets a jugador_id column set to its
player's id. This alters the source tables, so it is never done by unify.

Examples:
  partidos players
  partidos players --tag && partidos unify`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, cfg *partidos.Config, store partidos.Store, logger partidos.Logger) error {
				r := roster.New(store, logger, roster.Options{
					Table:       cfg.RosterTable,
					Suffix:      cfg.SourceSuffix,
					Destination: cfg.Destination,
					Exclude:     cfg.Exclude,
				})

				if _, err := r.Sync(ctx); err != nil {
					return err
				}
				if !tag {
					return nil
				}
				_, err := r.Tag(ctx)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&tag, "tag", false,
		"Also add "+partidos.RosterIDColumn+" to each source table and set it to the player's id")
	return cmd
}
