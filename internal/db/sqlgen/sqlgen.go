// Package sqlgen builds the statements shared by the SQLite and PostgreSQL
// stores. Every identifier goes through ident.Quote; values are always bound
// as parameters.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/jupaf/partidos/internal/ident"
	"github.com/jupaf/partidos/pkg/partidos"
)

// Placeholder renders the n-th (1-based) bind parameter.
type Placeholder func(n int) string

// Question renders SQLite-style ? placeholders.
func Question(int) string { return "?" }

// Dollar renders PostgreSQL-style $n placeholders.
func Dollar(n int) string { return fmt.Sprintf("$%d", n) }

// DropTable renders DROP TABLE IF EXISTS.
func DropTable(table string) string {
	return "DROP TABLE IF EXISTS " + ident.Quote(table)
}

// CreateTable renders CREATE TABLE with the columns in order. Columns with an
// empty type are declared without one.
func CreateTable(table string, columns []partidos.Column) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("table %s: no columns", table)
	}

	defs := make([]string, len(columns))
	for i, col := range columns {
		if !ident.IsSafeType(col.Type) {
			return "", fmt.Errorf("column %q: unsafe type %q", col.Name, col.Type)
		}
		def := ident.Quote(col.Name)
		if typ := strings.TrimSpace(col.Type); typ != "" {
			def += " " + typ
		}
		defs[i] = def
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", ident.Quote(table), strings.Join(defs, ", ")), nil
}

// InsertSelect renders INSERT INTO dest (...) SELECT ... FROM src for a projection.
func InsertSelect(dest, src string, projection []partidos.Projection, textType string) (string, error) {
	if len(projection) == 0 {
		return "", fmt.Errorf("copy %s into %s: empty projection", src, dest)
	}

	cols := make([]string, len(projection))
	exprs := make([]string, len(projection))
	for i, p := range projection {
		cols[i] = p.Column
		switch {
		case p.Source == "":
			exprs[i] = "NULL"
		case p.CastToText:
			exprs[i] = fmt.Sprintf("CAST(%s AS %s)", ident.Quote(p.Source), textType)
		default:
			exprs[i] = ident.Quote(p.Source)
		}
	}

	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
		ident.Quote(dest), ident.QuoteAll(cols), strings.Join(exprs, ", "), ident.Quote(src)), nil
}

// Insert renders a single-row INSERT with bind parameters.
func Insert(table string, columns []string, ph Placeholder) string {
	params := make([]string, len(columns))
	for i := range columns {
		params[i] = ph(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		ident.Quote(table), ident.QuoteAll(columns), strings.Join(params, ", "))
}

// AddColumn renders ALTER TABLE ... ADD COLUMN.
func AddColumn(table string, col partidos.Column) (string, error) {
	if !ident.IsSafeType(col.Type) {
		return "", fmt.Errorf("column %q: unsafe type %q", col.Name, col.Type)
	}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", ident.Quote(table), ident.Quote(col.Name))
	if typ := strings.TrimSpace(col.Type); typ != "" {
		stmt += " " + typ
	}
	return stmt, nil
}

// UpdateAll renders UPDATE table SET column = <param>.
func UpdateAll(table, column string, ph Placeholder) string {
	return fmt.Sprintf("UPDATE %s SET %s = %s", ident.Quote(table), ident.Quote(column), ph(1))
}

// InsertIgnore renders an INSERT of one value that skips rows conflicting on
// the column's unique constraint.
func InsertIgnore(table, column string, ph Placeholder) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		ident.Quote(table), ident.Quote(column), ph(1), ident.Quote(column))
}

// SelectRoster renders the roster lookup.
func SelectRoster(table string) string {
	return fmt.Sprintf("SELECT %s, %s FROM %s ORDER BY %s",
		ident.Quote(partidos.RosterIDColumn), ident.Quote(partidos.RosterNameColumn),
		ident.Quote(table), ident.Quote(partidos.RosterIDColumn))
}
