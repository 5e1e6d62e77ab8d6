package unifier_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jupaf/partidos/internal/db/sqlite"
	"github.com/jupaf/partidos/internal/logging"
	"github.com/jupaf/partidos/internal/unifier"
	"github.com/jupaf/partidos/pkg/partidos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openSQLite returns a Store and a second handle on the same file for
// seeding and inspecting tables outside the Store.
func openSQLite(t *testing.T, seed ...string) (*sqlite.Store, *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "partidos.db")

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	for _, stmt := range seed {
		_, err := raw.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	store, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, raw
}

func queryRows(t *testing.T, db *sql.DB, query string) [][]any {
	t.Helper()
	rows, err := db.Query(query)
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		require.NoError(t, rows.Scan(ptrs...))
		out = append(out, vals)
	}
	require.NoError(t, rows.Err())
	return out
}

var exampleSeed = []string{
	`CREATE TABLE a_partidos ("Date" TEXT, "Gls" INTEGER)`,
	`INSERT INTO a_partidos VALUES ('2024-01-01', 1)`,
	`CREATE TABLE b_partidos ("Date" TEXT, "Ast" INTEGER)`,
	`INSERT INTO b_partidos VALUES ('2024-01-02', 2)`,
	`CREATE TABLE jugadores (jugador_id INTEGER PRIMARY KEY, nombre_completo TEXT UNIQUE)`,
}

func options() unifier.Options {
	return unifier.Options{
		Suffix:      "_partidos",
		Destination: "partidos",
		Exclude:     []string{"jugadores"},
	}
}

func TestSQLite_Example(t *testing.T) {
	store, raw := openSQLite(t, exampleSeed...)

	res, err := unifier.New(store, logging.NewNullLogger(), options()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Rows)

	cols, err := store.DescribeColumns(context.Background(), "partidos")
	require.NoError(t, err)
	assert.Equal(t, []partidos.Column{
		{Name: "Date", Type: "TEXT"},
		{Name: "Gls", Type: "INTEGER"},
		{Name: "Ast", Type: "INTEGER"},
	}, cols)

	assert.Equal(t, [][]any{
		{"2024-01-01", int64(1), nil},
		{"2024-01-02", nil, int64(2)},
	}, queryRows(t, raw, `SELECT "Date", "Gls", "Ast" FROM partidos ORDER BY rowid`))
}

func TestSQLite_TwoRunsIdentical(t *testing.T) {
	store, raw := openSQLite(t, exampleSeed...)
	u := unifier.New(store, logging.NewNullLogger(), options())

	_, err := u.Run(context.Background())
	require.NoError(t, err)
	first := queryRows(t, raw, `SELECT * FROM partidos ORDER BY rowid`)

	_, err = u.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, queryRows(t, raw, `SELECT * FROM partidos ORDER BY rowid`))
}

func TestSQLite_ConflictCastsToText(t *testing.T) {
	store, raw := openSQLite(t,
		`CREATE TABLE a_partidos ("Min" INTEGER, "Fecha" DATE)`,
		`INSERT INTO a_partidos VALUES (90, '2024-05-01')`,
		`CREATE TABLE b_partidos ("Min" TEXT, "Fecha" date)`,
		`INSERT INTO b_partidos VALUES ('45+2', '2024-05-08')`,
	)

	res, err := unifier.New(store, logging.NewNullLogger(), options()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []partidos.Column{{Name: "Min", Type: "TEXT"}, {Name: "Fecha", Type: "DATE"}}, res.Columns)

	got := queryRows(t, raw, `SELECT "Min", typeof("Min") FROM partidos ORDER BY rowid`)
	assert.Equal(t, [][]any{{"90", "text"}, {"45+2", "text"}}, got)
}

func TestSQLite_ColumnNamesDifferingInCaseMerge(t *testing.T) {
	store, raw := openSQLite(t,
		`CREATE TABLE a_partidos ("Date" TEXT, "Gls" INTEGER)`,
		`INSERT INTO a_partidos VALUES ('2024-01-01', 1)`,
		`CREATE TABLE b_partidos ("date" TEXT, "GLS" INTEGER)`,
		`INSERT INTO b_partidos VALUES ('2024-01-02', 2)`,
	)

	res, err := unifier.New(store, logging.NewNullLogger(), options()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []partidos.Column{{Name: "Date", Type: "TEXT"}, {Name: "Gls", Type: "INTEGER"}}, res.Columns)

	assert.Equal(t, [][]any{
		{"2024-01-01", int64(1)},
		{"2024-01-02", int64(2)},
	}, queryRows(t, raw, `SELECT "Date", "Gls" FROM partidos ORDER BY rowid`))
}

func TestSQLite_UntypedColumns(t *testing.T) {
	store, _ := openSQLite(t,
		`CREATE TABLE a_partidos (Date, Opponent)`,
		`INSERT INTO a_partidos VALUES ('2024-01-01', 'Boca')`,
	)

	res, err := unifier.New(store, logging.NewNullLogger(), options()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []partidos.Column{{Name: "Date", Type: ""}, {Name: "Opponent", Type: ""}}, res.Columns)
}

func TestSQLite_QuotedColumnNames(t *testing.T) {
	store, raw := openSQLite(t,
		`CREATE TABLE a_partidos ("Pos." TEXT, "Min ""jugados""" INTEGER)`,
		`INSERT INTO a_partidos VALUES ('DC', 90)`,
	)

	_, err := unifier.New(store, logging.NewNullLogger(), options()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, [][]any{{"DC", int64(90)}},
		queryRows(t, raw, `SELECT "Pos.", "Min ""jugados""" FROM partidos`))
}

func TestSQLite_NoSources(t *testing.T) {
	store, _ := openSQLite(t, `CREATE TABLE jugadores (jugador_id INTEGER PRIMARY KEY)`)

	res, err := unifier.New(store, logging.NewNullLogger(), options()).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.NoOp)

	tables, err := store.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"jugadores"}, tables)
}

// failingStore fails CopyRows for one source to exercise rollback on a real backend.
type failingStore struct {
	partidos.Store
	failOn string
}

func (s *failingStore) Begin(ctx context.Context) (partidos.Tx, error) {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &failingTx{Tx: tx, failOn: s.failOn}, nil
}

type failingTx struct {
	partidos.Tx
	failOn string
}

func (t *failingTx) CopyRows(ctx context.Context, dest, src string, projection []partidos.Projection) (int64, error) {
	if src == t.failOn {
		return 0, errors.New("simulated copy failure")
	}
	return t.Tx.CopyRows(ctx, dest, src, projection)
}

func TestSQLite_FailureRestoresPreviousDestination(t *testing.T) {
	seed := append([]string{
		`CREATE TABLE partidos ("Old" TEXT)`,
		`INSERT INTO partidos VALUES ('keep me')`,
	}, exampleSeed...)
	store, raw := openSQLite(t, seed...)

	_, err := unifier.New(&failingStore{Store: store, failOn: "b_partidos"}, logging.NewNullLogger(), options()).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, partidos.ErrExecutionFailed)

	cols, err := store.DescribeColumns(context.Background(), "partidos")
	require.NoError(t, err)
	assert.Equal(t, []partidos.Column{{Name: "Old", Type: "TEXT"}}, cols)
	assert.Equal(t, [][]any{{"keep me"}}, queryRows(t, raw, `SELECT * FROM partidos`))
}

func TestSQLite_FailureLeavesNoDestination(t *testing.T) {
	store, _ := openSQLite(t, exampleSeed...)

	_, err := unifier.New(&failingStore{Store: store, failOn: "a_partidos"}, logging.NewNullLogger(), options()).Run(context.Background())
	require.Error(t, err)

	tables, err := store.ListTables(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, tables, "partidos")
}
