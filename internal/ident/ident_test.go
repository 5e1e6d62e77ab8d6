package ident

import (
	"errors"
	"testing"

	"github.com/jupaf/partidos/pkg/partidos"
	"github.com/stretchr/testify/assert"
)

func TestIsSafeTable(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"luis_diaz_partidos", true},
		{"A1_partidos", true},
		{"_partidos", true},
		{"", false},
		{"evil;DROP", false},
		{"evil;DROP_partidos", false},
		{"josé_partidos", false},
		{"two words_partidos", false},
		{`quote"_partidos`, false},
		{"dash-name_partidos", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSafeTable(tt.name))
		})
	}
}

func TestCheckTable_WrapsSentinel(t *testing.T) {
	err := CheckTable("evil;DROP")
	assert.True(t, errors.Is(err, partidos.ErrUnsafeIdentifier))
	assert.NoError(t, CheckTable("ok_partidos"))
}

func TestIsSafeType(t *testing.T) {
	tests := []struct {
		typ  string
		want bool
	}{
		{"", true},
		{"TEXT", true},
		{"integer", true},
		{"character varying(20)", true},
		{"numeric(10, 2)", true},
		{"timestamp without time zone", true},
		{"text[]", true},
		{"  REAL  ", true},
		{"text; DROP TABLE x", false},
		{"int)--", false},
		{`"custom type"`, false},
		{"1nt", false},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSafeType(tt.typ))
		})
	}
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"Gls"`, Quote("Gls"))
	assert.Equal(t, `"Día"`, Quote("Día"))
	assert.Equal(t, `"a""b"`, Quote(`a"b`))
	assert.Equal(t, `"Gls", "Ast"`, QuoteAll([]string{"Gls", "Ast"}))
}

func TestNormalizeType(t *testing.T) {
	assert.Equal(t, "text", NormalizeType(" TEXT "))
	assert.Equal(t, "character varying(20)", NormalizeType("CHARACTER  VARYING(20)"))
	assert.Equal(t, "", NormalizeType(""))
}

func TestFoldASCII(t *testing.T) {
	assert.Equal(t, "date", FoldASCII("Date"))
	assert.Equal(t, "xg_90", FoldASCII("xG_90"))
	assert.Equal(t, "dÍa", FoldASCII("DÍa"), "non-ASCII letters keep their case")
}
