// Package roster maintains the player roster table and links source tables
// to it.
//
// A source table's player is its name without the source suffix, with
// underscores read as spaces: lionel_messi_partidos is "lionel messi".
package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jupaf/partidos/internal/unifier"
	"github.com/jupaf/partidos/pkg/partidos"
)

// Options names the tables the roster works with.
type Options struct {
	// Table is the roster table.
	Table string

	// Suffix selects source tables.
	Suffix string

	// Destination is excluded from the sources.
	Destination string

	// Exclude lists further names that are never sources.
	Exclude []string
}

// SyncReport summarizes a Sync.
type SyncReport struct {
	// Players lists the player names derived from the source tables.
	Players []string

	// Added counts names newly inserted into the roster.
	Added int64
}

// Tagged is one source table stamped with its player's id.
type Tagged struct {
	Table  string
	Player string
	ID     int64
	Rows   int64
}

// TagReport summarizes a Tag.
type TagReport struct {
	Tagged []Tagged

	// Missing lists source tables whose player is not in the roster.
	Missing []string
}

// Roster reads and writes the player roster.
type Roster struct {
	store  partidos.Store
	logger partidos.Logger
	opts   Options
}

// New creates a Roster.
//
// Panics if store or logger is nil.
func New(store partidos.Store, logger partidos.Logger, opts Options) *Roster {
	if store == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if opts.Table == "" {
		opts.Table = partidos.DefaultRosterTable
	}
	if opts.Suffix == "" {
		opts.Suffix = partidos.DefaultSourceSuffix
	}
	return &Roster{store: store, logger: logger, opts: opts}
}

// PlayerName derives a player name from a source table name.
func PlayerName(table, suffix string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.TrimSuffix(table, suffix), "_", " "))
}

// sources discovers source tables through cat. No sources is not an error here.
func (r *Roster) sources(ctx context.Context, cat partidos.Catalog) ([]string, error) {
	u := unifier.New(r.store, r.logger, unifier.Options{
		Suffix:      r.opts.Suffix,
		Destination: r.opts.Destination,
		Exclude:     append([]string{r.opts.Table}, r.opts.Exclude...),
	})
	sources, _, err := u.Discover(ctx, cat)
	if errors.Is(err, partidos.ErrNoSourceTables) {
		return nil, nil
	}
	return sources, err
}

// Sync creates the roster table if needed and inserts the player of every
// source table. Players already present are left alone.
func (r *Roster) Sync(ctx context.Context) (*SyncReport, error) {
	tx, err := r.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			r.logger.Error("Rollback failed: %v", rbErr)
		}
	}()

	sources, err := r.sources(ctx, tx)
	if err != nil {
		return nil, err
	}

	if err := tx.EnsureRoster(ctx, r.opts.Table); err != nil {
		return nil, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
	}

	report := &SyncReport{}
	for _, table := range sources {
		if name := PlayerName(table, r.opts.Suffix); name != "" {
			report.Players = append(report.Players, name)
		}
	}

	report.Added, err = tx.AddPlayers(ctx, r.opts.Table, report.Players)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to commit: %w", partidos.ErrExecutionFailed, err)
	}

	r.logger.Info("✓ %s: %d player(s), %d new", r.opts.Table, len(report.Players), report.Added)
	return report, nil
}

// Tag adds the roster id column to each source table that lacks it and sets
// it to the table's player id. All tables are tagged in one transaction.
func (r *Roster) Tag(ctx context.Context) (*TagReport, error) {
	tx, err := r.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			r.logger.Error("Rollback failed: %v", rbErr)
		}
	}()

	sources, err := r.sources(ctx, tx)
	if err != nil {
		return nil, err
	}

	if err := tx.EnsureRoster(ctx, r.opts.Table); err != nil {
		return nil, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
	}
	ids, err := tx.PlayerIDs(ctx, r.opts.Table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
	}
	idColumn, err := r.idColumn(ctx, tx)
	if err != nil {
		return nil, err
	}

	report := &TagReport{}
	for _, table := range sources {
		player := PlayerName(table, r.opts.Suffix)
		id, ok := ids[player]
		if !ok {
			r.logger.Info("⚠ Player not in roster: %s (%s)", player, table)
			report.Missing = append(report.Missing, table)
			continue
		}

		cols, err := tx.DescribeColumns(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
		}
		if !hasColumn(cols, idColumn.Name) {
			if err := tx.AddColumn(ctx, table, idColumn); err != nil {
				return nil, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
			}
		}

		n, err := tx.SetColumn(ctx, table, idColumn.Name, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
		}
		r.logger.Verbose("Tagged %s with %s = %d", table, idColumn.Name, id)
		report.Tagged = append(report.Tagged, Tagged{Table: table, Player: player, ID: id, Rows: n})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to commit: %w", partidos.ErrExecutionFailed, err)
	}

	r.logger.Info("✓ Tagged %d table(s), %d without a roster entry", len(report.Tagged), len(report.Missing))
	return report, nil
}

// idColumn returns the roster id column with the type the backend declared
// for it, so tagged tables join the roster on the same type.
func (r *Roster) idColumn(ctx context.Context, cat partidos.Catalog) (partidos.Column, error) {
	cols, err := cat.DescribeColumns(ctx, r.opts.Table)
	if err != nil {
		return partidos.Column{}, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
	}
	for _, col := range cols {
		if col.Name == partidos.RosterIDColumn {
			return col, nil
		}
	}
	return partidos.Column{}, fmt.Errorf("roster table %q has no %s column: %w",
		r.opts.Table, partidos.RosterIDColumn, partidos.ErrInvalidConfig)
}

func hasColumn(cols []partidos.Column, name string) bool {
	for _, col := range cols {
		if strings.EqualFold(col.Name, name) {
			return true
		}
	}
	return false
}
