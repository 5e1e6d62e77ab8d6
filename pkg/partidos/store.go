package partidos

import "context"

// Column is a column name and its declared type as reported by the backend.
// Type may be empty for SQLite columns declared without a type.
type Column struct {
	Name string
	Type string
}

// Projection selects the value for one destination column when copying a
// source table. An empty Source selects NULL.
type Projection struct {
	Column string

	// Source is the source column name, or "" for NULL.
	Source string

	// CastToText wraps the source column in a cast to the backend's text type.
	CastToText bool
}

// Catalog is the read-only part of the storage contract.
type Catalog interface {
	// ListTables returns every base table visible to the session, ordered by name.
	ListTables(ctx context.Context) ([]string, error)

	// DescribeColumns returns a table's columns in declaration order.
	// A table that does not exist yields an empty slice and no error.
	DescribeColumns(ctx context.Context, table string) ([]Column, error)
}

// Store is a single storage session. It is opened once per run and closed
// on every exit path.
//
// Thread-Safety: NOT safe for concurrent use.
type Store interface {
	Catalog

	// Begin starts a transaction. Every write goes through a Tx.
	Begin(ctx context.Context) (Tx, error)

	// Driver returns the driver name (DriverSQLite or DriverPostgres).
	Driver() string

	// TextType is the universal text type used for reconciled columns.
	TextType() string

	// Close releases the underlying connection. Idempotent.
	Close() error
}

// Tx is a transaction on a Store. Callers must end it with Commit or Rollback.
// Rollback after Commit is a no-op.
//
// Table and column names are passed unquoted; implementations quote them.
type Tx interface {
	Catalog

	// DropTable drops a table if it exists.
	DropTable(ctx context.Context, table string) error

	// CreateTable creates a table with exactly the given columns.
	CreateTable(ctx context.Context, table string, columns []Column) error

	// CopyRows appends every row of src into dest, projected per column.
	// Returns the number of rows copied.
	CopyRows(ctx context.Context, dest, src string, projection []Projection) (int64, error)

	// InsertRows inserts literal rows. Each row has one value per column.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// AddColumn adds a column to an existing table.
	AddColumn(ctx context.Context, table string, column Column) error

	// SetColumn sets a column to the same value on every row of a table.
	SetColumn(ctx context.Context, table, column string, value any) (int64, error)

	// EnsureRoster creates the roster table if missing.
	EnsureRoster(ctx context.Context, table string) error

	// AddPlayers inserts names into the roster, ignoring names already present.
	// Returns the number of names newly inserted.
	AddPlayers(ctx context.Context, table string, names []string) (int64, error)

	// PlayerIDs returns the roster as name -> id.
	PlayerIDs(ctx context.Context, table string) (map[string]int64, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
