package ingest

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/jupaf/partidos/internal/ident"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TableNameFor derives a table name from a CSV file name: the lower-cased
// stem with accents folded, spaces and hyphens turned into underscores, and
// every other rune outside [a-z0-9_] dropped. The result may be empty.
func TableNameFor(fileName string) string {
	stem := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))

	folded, _, err := transform.String(
		transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		strings.ToLower(stem),
	)
	if err != nil {
		folded = strings.ToLower(stem)
	}

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// columnNames fixes up a CSV header for use as column names. Blank names
// become column_<n> (1-based position) and repeats get a _<n> suffix
// starting at 2. Repeats ignore ASCII case because SQLite rejects "Gls" next
// to "gls"; PostgreSQL would accept both.
func columnNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))

	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}

		if seen[ident.FoldASCII(name)] {
			for n := 2; ; n++ {
				candidate := name + "_" + strconv.Itoa(n)
				if !seen[ident.FoldASCII(candidate)] {
					name = candidate
					break
				}
			}
		}
		seen[ident.FoldASCII(name)] = true
		names[i] = name
	}
	return names
}
