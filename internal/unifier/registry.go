package unifier

import (
	"github.com/jupaf/partidos/internal/ident"
	"github.com/jupaf/partidos/pkg/partidos"
)

// Registry maps each observed column name to the set of declared types seen
// for it. Names iterate in first-seen order.
//
// Types are compared after ident.NormalizeType; the first spelling seen is
// the one emitted. The same holds for names in a folding registry.
type Registry struct {
	order []string
	types map[string][]string
	key   func(name string) string
}

// NewRegistry creates an empty Registry that tells names apart exactly.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string][]string), key: func(name string) string { return name }}
}

// NewFoldingRegistry creates an empty Registry that treats names differing
// only in ASCII case as one column, as SQLite does.
func NewFoldingRegistry() *Registry {
	return &Registry{types: make(map[string][]string), key: ident.FoldASCII}
}

// Add records that column name was declared with typ.
func (r *Registry) Add(name, typ string) {
	k := r.key(name)
	seen, ok := r.types[k]
	if !ok {
		r.order = append(r.order, name)
	}

	norm := ident.NormalizeType(typ)
	for _, t := range seen {
		if ident.NormalizeType(t) == norm {
			return
		}
	}
	r.types[k] = append(seen, typ)
}

// Len returns the number of distinct column names.
func (r *Registry) Len() int {
	return len(r.order)
}

// Types returns the distinct declared types observed for name.
func (r *Registry) Types(name string) []string {
	return r.types[r.key(name)]
}

// Columns returns the reconciled columns in first-seen order. A column with
// conflicting types gets textType.
func (r *Registry) Columns(textType string) []partidos.Column {
	cols := make([]partidos.Column, len(r.order))
	for i, name := range r.order {
		typ := textType
		if types := r.types[r.key(name)]; len(types) == 1 {
			typ = types[0]
		}
		cols[i] = partidos.Column{Name: name, Type: typ}
	}
	return cols
}
