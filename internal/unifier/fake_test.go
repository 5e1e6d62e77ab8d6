package unifier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jupaf/partidos/pkg/partidos"
)

// fakeTable is an in-memory table. Row values are keyed by column name.
type fakeTable struct {
	cols []partidos.Column
	rows []map[string]any
}

func (t *fakeTable) clone() *fakeTable {
	c := &fakeTable{cols: append([]partidos.Column(nil), t.cols...)}
	for _, r := range t.rows {
		row := make(map[string]any, len(r))
		for k, v := range r {
			row[k] = v
		}
		c.rows = append(c.rows, row)
	}
	return c
}

type fakeTables map[string]*fakeTable

func (ft fakeTables) clone() fakeTables {
	c := make(fakeTables, len(ft))
	for k, v := range ft {
		c[k] = v.clone()
	}
	return c
}

func (ft fakeTables) list() []string {
	names := make([]string, 0, len(ft))
	for name := range ft {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (ft fakeTables) describe(name string) []partidos.Column {
	t, ok := ft[name]
	if !ok {
		return nil
	}
	return append([]partidos.Column(nil), t.cols...)
}

// fakeStore is an in-memory partidos.Store. Every table name handed to a
// write is recorded in calls, and a Tx works on a snapshot that replaces the
// store's tables on Commit.
type fakeStore struct {
	tables   fakeTables
	calls    []string
	failCopy string
	begins   int

	// dropOnBegin removes a table when a transaction starts.
	dropOnBegin string
}

func newFakeStore() *fakeStore {
	return &fakeStore{tables: fakeTables{}}
}

func (s *fakeStore) addTable(name string, cols []partidos.Column, rows ...[]any) {
	t := &fakeTable{cols: cols}
	for _, values := range rows {
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col.Name] = values[i]
		}
		t.rows = append(t.rows, row)
	}
	s.tables[name] = t
}

// values returns a table's rows as slices ordered by the table's columns.
func (s *fakeStore) values(name string) [][]any {
	t := s.tables[name]
	out := make([][]any, len(t.rows))
	for i, r := range t.rows {
		row := make([]any, len(t.cols))
		for j, col := range t.cols {
			row[j] = r[col.Name]
		}
		out[i] = row
	}
	return out
}

func (s *fakeStore) ListTables(context.Context) ([]string, error) {
	return s.tables.list(), nil
}

func (s *fakeStore) DescribeColumns(_ context.Context, table string) ([]partidos.Column, error) {
	return s.tables.describe(table), nil
}

func (s *fakeStore) Begin(context.Context) (partidos.Tx, error) {
	s.begins++
	if s.dropOnBegin != "" {
		delete(s.tables, s.dropOnBegin)
	}
	return &fakeTx{store: s, tables: s.tables.clone()}, nil
}

func (s *fakeStore) Driver() string   { return "fake" }
func (s *fakeStore) TextType() string { return "TEXT" }
func (s *fakeStore) Close() error     { return nil }

type fakeTx struct {
	store  *fakeStore
	tables fakeTables
	done   bool
}

func (t *fakeTx) record(op string, names ...string) {
	t.store.calls = append(t.store.calls, op+" "+strings.Join(names, " "))
}

func (t *fakeTx) ListTables(context.Context) ([]string, error) {
	return t.tables.list(), nil
}

func (t *fakeTx) DescribeColumns(_ context.Context, table string) ([]partidos.Column, error) {
	return t.tables.describe(table), nil
}

func (t *fakeTx) DropTable(_ context.Context, table string) error {
	t.record("drop", table)
	delete(t.tables, table)
	return nil
}

func (t *fakeTx) CreateTable(_ context.Context, table string, columns []partidos.Column) error {
	t.record("create", table)
	if _, ok := t.tables[table]; ok {
		return fmt.Errorf("table %s already exists", table)
	}
	t.tables[table] = &fakeTable{cols: append([]partidos.Column(nil), columns...)}
	return nil
}

func (t *fakeTx) CopyRows(_ context.Context, dest, src string, projection []partidos.Projection) (int64, error) {
	t.record("copy", dest, src)
	if src == t.store.failCopy {
		return 0, errors.New("disk I/O error")
	}
	d, ok := t.tables[dest]
	if !ok {
		return 0, fmt.Errorf("no such table: %s", dest)
	}
	s, ok := t.tables[src]
	if !ok {
		return 0, fmt.Errorf("no such table: %s", src)
	}

	for _, r := range s.rows {
		row := make(map[string]any, len(projection))
		for _, p := range projection {
			switch {
			case p.Source == "":
				row[p.Column] = nil
			case p.CastToText && r[p.Source] != nil:
				row[p.Column] = fmt.Sprint(r[p.Source])
			default:
				row[p.Column] = r[p.Source]
			}
		}
		d.rows = append(d.rows, row)
	}
	return int64(len(s.rows)), nil
}

func (t *fakeTx) InsertRows(context.Context, string, []string, [][]any) (int64, error) {
	return 0, errors.New("not implemented")
}

func (t *fakeTx) AddColumn(context.Context, string, partidos.Column) error {
	return errors.New("not implemented")
}

func (t *fakeTx) SetColumn(context.Context, string, string, any) (int64, error) {
	return 0, errors.New("not implemented")
}

func (t *fakeTx) EnsureRoster(context.Context, string) error {
	return errors.New("not implemented")
}

func (t *fakeTx) AddPlayers(context.Context, string, []string) (int64, error) {
	return 0, errors.New("not implemented")
}

func (t *fakeTx) PlayerIDs(context.Context, string) (map[string]int64, error) {
	return nil, errors.New("not implemented")
}

func (t *fakeTx) Commit(context.Context) error {
	if t.done {
		return errors.New("transaction already closed")
	}
	t.done = true
	t.store.tables = t.tables
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.done = true
	return nil
}

var (
	_ partidos.Store = (*fakeStore)(nil)
	_ partidos.Tx    = (*fakeTx)(nil)
)
