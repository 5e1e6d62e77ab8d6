// Package postgres implements partidos.Store on a PostgreSQL database through pgx.
//
// Tables are resolved in current_schema(), so the search_path of the
// connection decides which schema is consolidated.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jupaf/partidos/internal/db/sqlgen"
	"github.com/jupaf/partidos/internal/ident"
	"github.com/jupaf/partidos/pkg/partidos"
)

// TextType is PostgreSQL's universal text type.
const TextType = "text"

const (
	queryListTables = `
		SELECT tablename
		FROM pg_catalog.pg_tables
		WHERE schemaname = current_schema()
		ORDER BY tablename
	`

	queryDescribeColumns = `
		SELECT a.attname, format_type(a.atttypid, a.atttypmod)
		FROM pg_catalog.pg_attribute a
		JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = current_schema()
		  AND c.relname = $1
		  AND c.relkind IN ('r', 'p')
		  AND a.attnum > 0
		  AND NOT a.attisdropped
		ORDER BY a.attnum
	`

	createRosterFmt = `CREATE TABLE IF NOT EXISTS %s (
		%s bigint GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		%s text UNIQUE
	)`
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store is a PostgreSQL-backed partidos.Store. It owns the pool and closes it.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps a connected pool. The Store takes ownership of the pool.
//
// Panics if pool is nil.
func New(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("pool cannot be nil")
	}
	return &Store{pool: pool}
}

// ListTables returns the base tables of current_schema(), ordered by name.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	return listTables(ctx, s.pool)
}

// DescribeColumns returns a table's columns in attnum order.
func (s *Store) DescribeColumns(ctx context.Context, table string) ([]partidos.Column, error) {
	return describeColumns(ctx, s.pool, table)
}

// Begin starts a transaction. DDL is transactional in PostgreSQL, so a
// rolled-back run leaves no trace.
func (s *Store) Begin(ctx context.Context) (partidos.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Driver returns partidos.DriverPostgres.
func (s *Store) Driver() string { return partidos.DriverPostgres }

// TextType returns text.
func (s *Store) TextType() string { return TextType }

// Close closes the pool. Safe to call more than once.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	return nil
}

// Tx is a PostgreSQL transaction.
type Tx struct {
	tx pgx.Tx
}

func (t *Tx) ListTables(ctx context.Context) ([]string, error) {
	return listTables(ctx, t.tx)
}

func (t *Tx) DescribeColumns(ctx context.Context, table string) ([]partidos.Column, error) {
	return describeColumns(ctx, t.tx, table)
}

func (t *Tx) DropTable(ctx context.Context, table string) error {
	if _, err := t.tx.Exec(ctx, sqlgen.DropTable(table)); err != nil {
		return fmt.Errorf("failed to drop table %q: %w", table, err)
	}
	return nil
}

func (t *Tx) CreateTable(ctx context.Context, table string, columns []partidos.Column) error {
	stmt, err := sqlgen.CreateTable(table, columns)
	if err != nil {
		return err
	}
	if _, err := t.tx.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create table %q: %w", table, err)
	}
	return nil
}

func (t *Tx) CopyRows(ctx context.Context, dest, src string, projection []partidos.Projection) (int64, error) {
	stmt, err := sqlgen.InsertSelect(dest, src, projection, TextType)
	if err != nil {
		return 0, err
	}
	tag, err := t.tx.Exec(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("failed to copy %q into %q: %w", src, dest, err)
	}
	return tag.RowsAffected(), nil
}

// InsertRows bulk-loads rows with the COPY protocol.
func (t *Tx) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := t.tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("failed to copy rows into %q: %w", table, err)
	}
	return n, nil
}

func (t *Tx) AddColumn(ctx context.Context, table string, column partidos.Column) error {
	stmt, err := sqlgen.AddColumn(table, column)
	if err != nil {
		return err
	}
	if _, err := t.tx.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to add column %q to %q: %w", column.Name, table, err)
	}
	return nil
}

func (t *Tx) SetColumn(ctx context.Context, table, column string, value any) (int64, error) {
	tag, err := t.tx.Exec(ctx, sqlgen.UpdateAll(table, column, sqlgen.Dollar), value)
	if err != nil {
		return 0, fmt.Errorf("failed to set %q on %q: %w", column, table, err)
	}
	return tag.RowsAffected(), nil
}

func (t *Tx) EnsureRoster(ctx context.Context, table string) error {
	stmt := fmt.Sprintf(createRosterFmt,
		ident.Quote(table), ident.Quote(partidos.RosterIDColumn), ident.Quote(partidos.RosterNameColumn))
	if _, err := t.tx.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create roster table %q: %w", table, err)
	}
	return nil
}

// AddPlayers queues one INSERT ... ON CONFLICT DO NOTHING per name in a single batch.
func (t *Tx) AddPlayers(ctx context.Context, table string, names []string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}

	stmt := sqlgen.InsertIgnore(table, partidos.RosterNameColumn, sqlgen.Dollar)
	batch := &pgx.Batch{}
	for _, name := range names {
		batch.Queue(stmt, name)
	}

	results := t.tx.SendBatch(ctx, batch)

	var added int64
	for _, name := range names {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return added, fmt.Errorf("failed to add player %q: %w", name, err)
		}
		added += tag.RowsAffected()
	}

	if err := results.Close(); err != nil {
		return added, fmt.Errorf("failed to complete roster batch insert: %w", err)
	}
	return added, nil
}

func (t *Tx) PlayerIDs(ctx context.Context, table string) (map[string]int64, error) {
	rows, err := t.tx.Query(ctx, sqlgen.SelectRoster(table))
	if err != nil {
		return nil, fmt.Errorf("failed to read roster %q: %w", table, err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		ids[name] = id
	}
	return ids, rows.Err()
}

func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback aborts the transaction. A rollback after Commit returns nil.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

func listTables(ctx context.Context, q querier) ([]string, error) {
	rows, err := q.Query(ctx, queryListTables)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return names, nil
}

func describeColumns(ctx context.Context, q querier, table string) ([]partidos.Column, error) {
	rows, err := q.Query(ctx, queryDescribeColumns, table)
	if err != nil {
		return nil, fmt.Errorf("failed to describe %q: %w", table, err)
	}
	defer rows.Close()

	var cols []partidos.Column
	for rows.Next() {
		var col partidos.Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

var (
	_ partidos.Store = (*Store)(nil)
	_ partidos.Tx    = (*Tx)(nil)
)
