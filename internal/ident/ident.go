// Package ident validates and quotes SQL identifiers and declared column types.
//
// Table names discovered in the catalog are interpolated into statement text,
// so they must pass IsSafeTable before use. Every identifier is also quoted
// with Quote. Column names are quoted but not restricted: scraped headers
// routinely contain spaces, accents and punctuation.
package ident

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jupaf/partidos/pkg/partidos"
)

var (
	safeTable = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

	// Covers "integer", "TEXT", "character varying(20)", "numeric(10, 2)",
	// "timestamp without time zone", "text[]".
	safeType = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_ ]*(\([0-9, ]+\))?(\[\])*$`)
)

// IsSafeTable reports whether name consists only of ASCII letters, digits and underscores.
func IsSafeTable(name string) bool {
	return safeTable.MatchString(name)
}

// CheckTable returns an error wrapping partidos.ErrUnsafeIdentifier when name is not safe.
func CheckTable(name string) error {
	if !IsSafeTable(name) {
		return fmt.Errorf("table name %q: %w", name, partidos.ErrUnsafeIdentifier)
	}
	return nil
}

// IsSafeType reports whether a declared column type may be emitted into DDL.
// The empty type is safe (SQLite columns declared without a type).
func IsSafeType(typ string) bool {
	typ = strings.TrimSpace(typ)
	return typ == "" || safeType.MatchString(typ)
}

// Quote returns name as a double-quoted SQL identifier. Embedded quotes are
// doubled. PostgreSQL and SQLite share this syntax.
func Quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// QuoteAll quotes each name and joins them with ", ".
func QuoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = Quote(n)
	}
	return strings.Join(quoted, ", ")
}

// FoldASCII lower-cases the ASCII letters of name and leaves every other
// rune alone, matching how SQLite compares identifiers.
func FoldASCII(name string) string {
	b := []byte(name)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// NormalizeType folds a declared type for comparison: surrounding whitespace
// is dropped, inner runs of whitespace collapse to one space, case is folded.
func NormalizeType(typ string) string {
	return strings.ToLower(strings.Join(strings.Fields(typ), " "))
}
