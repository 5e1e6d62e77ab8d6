package unifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jupaf/partidos/internal/ident"
	"github.com/jupaf/partidos/pkg/partidos"
)

// Options selects the tables a run reads and writes.
type Options struct {
	// Suffix selects source tables by name suffix.
	Suffix string

	// Destination is the table rebuilt by Run. It is never a source.
	Destination string

	// Exclude lists further names that are never sources (the roster).
	Exclude []string
}

// Source is a discovered table with the columns it had at reconcile time,
// as declared by the backend.
type Source struct {
	Name    string
	Columns []partidos.Column
}

// Plan is the reconciled schema for a run.
type Plan struct {
	Destination string
	Sources     []Source
	Skipped     []string
	Columns     []partidos.Column

	// Conflicts lists columns reconciled to text because of differing types.
	Conflicts []string

	// NoOp is set when discovery matched no tables.
	NoOp bool
}

// Result reports a completed run.
type Result struct {
	Destination string
	Sources     []string
	Skipped     []string
	Columns     []partidos.Column

	// Rows is the total number of rows copied into the destination.
	Rows int64

	// NoOp is set when discovery matched no tables. Nothing was written.
	NoOp bool
}

// Unifier rebuilds the destination table from the source tables of a Store.
//
// Thread-Safety: NOT safe for concurrent use.
type Unifier struct {
	store  partidos.Store
	logger partidos.Logger
	opts   Options

	// foldCase is set for backends whose column names ignore ASCII case.
	foldCase bool
}

// New creates a Unifier.
//
// Panics if store or logger is nil.
func New(store partidos.Store, logger partidos.Logger, opts Options) *Unifier {
	if store == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if opts.Suffix == "" {
		opts.Suffix = partidos.DefaultSourceSuffix
	}
	if opts.Destination == "" {
		opts.Destination = partidos.DefaultDestination
	}
	return &Unifier{
		store:    store,
		logger:   logger,
		opts:     opts,
		foldCase: store.Driver() == partidos.DriverSQLite,
	}
}

// Discover lists the source tables of cat in name order. Unsafe names are
// returned in skipped and never used in a statement. Returns
// partidos.ErrNoSourceTables when nothing matched.
func (u *Unifier) Discover(ctx context.Context, cat partidos.Catalog) (sources, skipped []string, err error) {
	tables, err := cat.ListTables(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
	}

	for _, name := range tables {
		if !strings.HasSuffix(name, u.opts.Suffix) || u.excluded(name) {
			continue
		}
		if err := ident.CheckTable(name); err != nil {
			u.logger.Info("⚠ Skipping table: %v", err)
			skipped = append(skipped, name)
			continue
		}
		sources = append(sources, name)
	}

	if len(sources) == 0 {
		return nil, skipped, partidos.ErrNoSourceTables
	}
	u.logger.Verbose("Discovered %d source table(s)", len(sources))
	return sources, skipped, nil
}

func (u *Unifier) excluded(name string) bool {
	if name == u.opts.Destination {
		return true
	}
	for _, ex := range u.opts.Exclude {
		if name == ex {
			return true
		}
	}
	return false
}

// Reconcile describes each source through cat and merges the columns.
// A source with no columns has vanished since discovery and fails with
// partidos.ErrSourceVanished.
func (u *Unifier) Reconcile(ctx context.Context, cat partidos.Catalog, sources []string) (*Plan, error) {
	textType := u.store.TextType()
	reg := NewRegistry()
	if u.foldCase {
		reg = NewFoldingRegistry()
	}
	plan := &Plan{Destination: u.opts.Destination}

	for _, name := range sources {
		cols, err := cat.DescribeColumns(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
		}
		if len(cols) == 0 {
			return nil, fmt.Errorf("table %q: %w", name, partidos.ErrSourceVanished)
		}

		for _, col := range cols {
			typ := col.Type
			if !ident.IsSafeType(typ) {
				u.logger.Info("⚠ Column %q of %q has unsupported type %q, using %s", col.Name, name, typ, textType)
				typ = textType
			}
			reg.Add(col.Name, typ)
		}
		plan.Sources = append(plan.Sources, Source{Name: name, Columns: cols})
	}

	plan.Columns = reg.Columns(textType)
	for _, col := range plan.Columns {
		if len(reg.Types(col.Name)) > 1 {
			plan.Conflicts = append(plan.Conflicts, col.Name)
			u.logger.Verbose("Column %q has types %v, using %s", col.Name, reg.Types(col.Name), textType)
		}
	}
	return plan, nil
}

// Plan discovers and reconciles without writing anything.
func (u *Unifier) Plan(ctx context.Context) (*Plan, error) {
	sources, skipped, err := u.Discover(ctx, u.store)
	if errors.Is(err, partidos.ErrNoSourceTables) {
		return &Plan{Destination: u.opts.Destination, Skipped: skipped, NoOp: true}, nil
	}
	if err != nil {
		return nil, err
	}

	plan, err := u.Reconcile(ctx, u.store, sources)
	if err != nil {
		return nil, err
	}
	plan.Skipped = skipped
	return plan, nil
}

// Run rebuilds the destination. With no source tables it reports NoOp and
// writes nothing. Otherwise reconcile, recreate and copy are committed
// together or not at all.
func (u *Unifier) Run(ctx context.Context) (*Result, error) {
	sources, skipped, err := u.Discover(ctx, u.store)
	res := &Result{Destination: u.opts.Destination, Skipped: skipped}
	if errors.Is(err, partidos.ErrNoSourceTables) {
		u.logger.Info("No tables ending in %q found; %q left untouched", u.opts.Suffix, u.opts.Destination)
		res.NoOp = true
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	tx, err := u.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			u.logger.Error("Rollback failed: %v", rbErr)
		}
	}()

	plan, err := u.Reconcile(ctx, tx, sources)
	if err != nil {
		return nil, err
	}

	if err := u.recreate(ctx, tx, plan.Columns); err != nil {
		return nil, err
	}

	for _, src := range plan.Sources {
		n, err := tx.CopyRows(ctx, u.opts.Destination, src.Name, u.projection(src, plan.Columns))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
		}
		u.logger.Verbose("Copied %d row(s) from %s", n, src.Name)
		res.Rows += n
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to commit: %w", partidos.ErrExecutionFailed, err)
	}

	res.Sources = sources
	res.Columns = plan.Columns
	u.logger.Info("✓ Rebuilt %s: %d column(s), %d row(s) from %d table(s)",
		u.opts.Destination, len(res.Columns), res.Rows, len(res.Sources))
	return res, nil
}

func (u *Unifier) recreate(ctx context.Context, tx partidos.Tx, columns []partidos.Column) error {
	if err := tx.DropTable(ctx, u.opts.Destination); err != nil {
		return fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
	}
	if err := tx.CreateTable(ctx, u.opts.Destination, columns); err != nil {
		return fmt.Errorf("%w: %w", partidos.ErrExecutionFailed, err)
	}
	return nil
}

// projection maps each unified column to the same-named source column, or
// NULL. A source column is cast when the unified type is the text type and
// the source declared something else. On case-folding backends the source
// keeps its own spelling of the name.
func (u *Unifier) projection(src Source, unified []partidos.Column) []partidos.Projection {
	textType := ident.NormalizeType(u.store.TextType())
	have := make(map[string]partidos.Column, len(src.Columns))
	for _, col := range src.Columns {
		have[u.columnKey(col.Name)] = col
	}

	proj := make([]partidos.Projection, len(unified))
	for i, col := range unified {
		proj[i] = partidos.Projection{Column: col.Name}
		srcCol, ok := have[u.columnKey(col.Name)]
		if !ok {
			continue
		}
		proj[i].Source = srcCol.Name
		proj[i].CastToText = ident.NormalizeType(col.Type) == textType &&
			ident.NormalizeType(srcCol.Type) != textType
	}
	return proj
}

func (u *Unifier) columnKey(name string) string {
	if u.foldCase {
		return ident.FoldASCII(name)
	}
	return name
}
