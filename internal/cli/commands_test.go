package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jupaf/partidos/internal/db/sqlite"
	"github.com/jupaf/partidos/pkg/partidos"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// seedCSV writes the scraper's output layout into dir/partidos_data.
func seedCSV(t *testing.T, dir string) {
	t.Helper()
	data := filepath.Join(dir, "partidos_data")
	require.NoError(t, os.Mkdir(data, 0o755))
	writeFile(t, filepath.Join(data, "Lionel_Messi_partidos.csv"), "Date,Gls\n2024-01-01,1\n2024-01-08,2\n")
	writeFile(t, filepath.Join(data, "Julián_Álvarez_partidos.csv"), "Date,Ast\n2024-01-02,1\n")
}

func TestPipeline_ImportPlayersUnify(t *testing.T) {
	dir := isolate(t)
	seedCSV(t, dir)
	dsn := filepath.Join(dir, "futbol.db")

	_, stderr, err := run(t, "import", "--dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, stderr, "✓ Imported 2 file(s), 3 row(s)")

	_, stderr, err = run(t, "players", "--tag", "--dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, stderr, "✓ Tagged 2 table(s)")

	_, stderr, err = run(t, "unify", "--dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, stderr, "✓ Rebuilt partidos: 4 column(s), 3 row(s) from 2 table(s)")

	store, err := sqlite.Open(context.Background(), dsn)
	require.NoError(t, err)
	defer store.Close()

	tables, err := store.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"jugadores", "julian_alvarez_partidos", "lionel_messi_partidos", "partidos"}, tables)

	cols, err := store.DescribeColumns(context.Background(), "partidos")
	require.NoError(t, err)
	assert.Equal(t, []partidos.Column{
		{Name: "Date", Type: "TEXT"},
		{Name: "Ast", Type: "TEXT"},
		{Name: "jugador_id", Type: "INTEGER"},
		{Name: "Gls", Type: "TEXT"},
	}, cols)
}

func TestUnify_DryRunWritesNothing(t *testing.T) {
	dir := isolate(t)
	seedCSV(t, dir)
	dsn := filepath.Join(dir, "futbol.db")

	_, _, err := run(t, "import", "--dsn", dsn)
	require.NoError(t, err)

	stdout, _, err := run(t, "unify", "--dry-run", "--dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Plan for partidos")
	assert.Contains(t, stdout, "julian_alvarez_partidos (2 columns)")
	assert.Contains(t, stdout, "would be rebuilt")
	assert.Contains(t, stdout, "Dry run: nothing was written.")

	store, err := sqlite.Open(context.Background(), dsn)
	require.NoError(t, err)
	defer store.Close()

	tables, err := store.ListTables(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, tables, "partidos")
}

func TestUnify_NoSourceTablesSucceeds(t *testing.T) {
	dir := isolate(t)

	_, stderr, err := run(t, "unify", "--dsn", filepath.Join(dir, "empty.db"))
	require.NoError(t, err)
	assert.Contains(t, stderr, `No tables ending in "_partidos" found`)
}

func TestImport_DefaultDirFromConfig(t *testing.T) {
	dir := isolate(t)
	seedCSV(t, dir)
	require.NoError(t, os.Rename(filepath.Join(dir, "partidos_data"), filepath.Join(dir, "scraped")))
	writeFile(t, filepath.Join(dir, "partidos.yaml"), "database:\n  dsn: futbol.db\nimport:\n  dir: scraped\n")

	_, stderr, err := run(t, "import")
	require.NoError(t, err)
	assert.Contains(t, stderr, "✓ Imported 2 file(s)")
	assert.FileExists(t, filepath.Join(dir, "futbol.db"))
}

func TestImport_MissingDir(t *testing.T) {
	dir := isolate(t)

	_, _, err := run(t, "import", filepath.Join(dir, "missing"), "--dsn", filepath.Join(dir, "x.db"))
	require.Error(t, err)
	assert.Equal(t, partidos.ExitConfigError, partidos.ExitCodeForError(err))
}

func TestCommands_UsageErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{"import too many args", []string{"import", "a", "b"}},
		{"unify positional arg", []string{"unify", "extra"}},
		{"unknown flag", []string{"unify", "--nope"}},
		{"unknown command", []string{"merge"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, partidos.ExitUsageError, partidos.ExitCodeForError(err), err.Error())
		})
	}
}

func TestCommands_ConnectionFailure(t *testing.T) {
	dir := isolate(t)

	_, _, err := run(t, "unify", "--dsn", filepath.Join(dir, "missing", "dir", "x.db"))
	require.Error(t, err)
	assert.Equal(t, partidos.ExitConnectionError, partidos.ExitCodeForError(err))
}
