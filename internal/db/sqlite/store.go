// Package sqlite implements partidos.Store on a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jupaf/partidos/internal/db/sqlgen"
	"github.com/jupaf/partidos/internal/ident"
	"github.com/jupaf/partidos/pkg/partidos"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// TextType is SQLite's universal text type.
const TextType = "TEXT"

const (
	queryListTables = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\' ORDER BY name`

	createRosterFmt = `CREATE TABLE IF NOT EXISTS %s (
		%s INTEGER PRIMARY KEY AUTOINCREMENT,
		%s TEXT UNIQUE
	)`
)

// querier is the subset of *sql.DB and *sql.Tx the catalog queries need.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store is a SQLite-backed partidos.Store. The pool is capped at one
// connection, so a Store is a single session for the whole run.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, errors.Join(partidos.ErrConnectionFailed, err))
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, errors.Join(partidos.ErrConnectionFailed, err))
	}

	return &Store{db: db}, nil
}

// ListTables returns the user tables ordered by name.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	return listTables(ctx, s.db)
}

// DescribeColumns returns a table's columns via PRAGMA table_info.
func (s *Store) DescribeColumns(ctx context.Context, table string) ([]partidos.Column, error) {
	return describeColumns(ctx, s.db, table)
}

// Begin starts a transaction.
func (s *Store) Begin(ctx context.Context) (partidos.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Driver returns partidos.DriverSQLite.
func (s *Store) Driver() string { return partidos.DriverSQLite }

// TextType returns TEXT.
func (s *Store) TextType() string { return TextType }

// Close closes the database. Safe to call more than once.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Tx is a SQLite transaction.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) ListTables(ctx context.Context) ([]string, error) {
	return listTables(ctx, t.tx)
}

func (t *Tx) DescribeColumns(ctx context.Context, table string) ([]partidos.Column, error) {
	return describeColumns(ctx, t.tx, table)
}

func (t *Tx) DropTable(ctx context.Context, table string) error {
	if _, err := t.tx.ExecContext(ctx, sqlgen.DropTable(table)); err != nil {
		return fmt.Errorf("failed to drop table %q: %w", table, err)
	}
	return nil
}

func (t *Tx) CreateTable(ctx context.Context, table string, columns []partidos.Column) error {
	stmt, err := sqlgen.CreateTable(table, columns)
	if err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create table %q: %w", table, err)
	}
	return nil
}

func (t *Tx) CopyRows(ctx context.Context, dest, src string, projection []partidos.Projection) (int64, error) {
	stmt, err := sqlgen.InsertSelect(dest, src, projection, TextType)
	if err != nil {
		return 0, err
	}
	res, err := t.tx.ExecContext(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("failed to copy %q into %q: %w", src, dest, err)
	}
	return res.RowsAffected()
}

func (t *Tx) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	stmt, err := t.tx.PrepareContext(ctx, sqlgen.Insert(table, columns, sqlgen.Question))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert into %q: %w", table, err)
	}
	defer stmt.Close()

	var n int64
	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return n, fmt.Errorf("failed to insert row %d into %q: %w", i+1, table, err)
		}
		n++
	}
	return n, nil
}

func (t *Tx) AddColumn(ctx context.Context, table string, column partidos.Column) error {
	stmt, err := sqlgen.AddColumn(table, column)
	if err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to add column %q to %q: %w", column.Name, table, err)
	}
	return nil
}

func (t *Tx) SetColumn(ctx context.Context, table, column string, value any) (int64, error) {
	res, err := t.tx.ExecContext(ctx, sqlgen.UpdateAll(table, column, sqlgen.Question), value)
	if err != nil {
		return 0, fmt.Errorf("failed to set %q on %q: %w", column, table, err)
	}
	return res.RowsAffected()
}

func (t *Tx) EnsureRoster(ctx context.Context, table string) error {
	stmt := fmt.Sprintf(createRosterFmt,
		ident.Quote(table), ident.Quote(partidos.RosterIDColumn), ident.Quote(partidos.RosterNameColumn))
	if _, err := t.tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create roster table %q: %w", table, err)
	}
	return nil
}

func (t *Tx) AddPlayers(ctx context.Context, table string, names []string) (int64, error) {
	var added int64
	stmt := sqlgen.InsertIgnore(table, partidos.RosterNameColumn, sqlgen.Question)
	for _, name := range names {
		res, err := t.tx.ExecContext(ctx, stmt, name)
		if err != nil {
			return added, fmt.Errorf("failed to add player %q: %w", name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return added, err
		}
		added += n
	}
	return added, nil
}

func (t *Tx) PlayerIDs(ctx context.Context, table string) (map[string]int64, error) {
	rows, err := t.tx.QueryContext(ctx, sqlgen.SelectRoster(table))
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

func (t *Tx) Commit(_ context.Context) error {
	return t.tx.Commit()
}

// Rollback aborts the transaction. A rollback after Commit returns nil.
func (t *Tx) Rollback(_ context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func listTables(ctx context.Context, q querier) ([]string, error) {
	rows, err := q.QueryContext(ctx, queryListTables)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func describeColumns(ctx context.Context, q querier, table string) ([]partidos.Column, error) {
	rows, err := q.QueryContext(ctx, "PRAGMA table_info("+ident.Quote(table)+")")
	if err != nil {
		return nil, fmt.Errorf("failed to describe %q: %w", table, err)
	}
	defer rows.Close()

	var cols []partidos.Column
	for rows.Next() {
		var (
			cid      int
			name     string
			typ      string
			notNull  int
			defValue sql.NullString
			pk       int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defValue, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, partidos.Column{Name: name, Type: typ})
	}
	return cols, rows.Err()
}

var (
	_ partidos.Store = (*Store)(nil)
	_ partidos.Tx    = (*Tx)(nil)
)
