// Package tui renders command reports for the terminal. Styled output uses
// lipgloss; plain output carries the same text without escape codes.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jupaf/partidos/internal/unifier"
)

type renderer struct {
	styled bool
	b      strings.Builder
}

func (r *renderer) render(style lipgloss.Style, s string) string {
	if !r.styled {
		return s
	}
	return style.Render(s)
}

func (r *renderer) line(format string, args ...any) {
	fmt.Fprintf(&r.b, format+"\n", args...)
}

// RenderPlan writes the dry-run view of a plan: sources, skipped tables and
// the reconciled columns in destination order.
func RenderPlan(w io.Writer, plan *unifier.Plan, mode Mode) error {
	r := &renderer{styled: mode == ModeStyled}

	r.line("%s", r.render(TitleStyle, "Plan for "+plan.Destination))

	if plan.NoOp {
		r.line("%s", r.render(WarningStyle, fmt.Sprintf("%s No source tables found; %s would be left untouched",
			SymbolWarning, plan.Destination)))
	} else {
		r.line("%s", r.render(SectionStyle, fmt.Sprintf("Sources (%d):", len(plan.Sources))))
		for _, src := range plan.Sources {
			r.line("  %s %s (%d columns)", SymbolBullet, src.Name, len(src.Columns))
		}
	}

	if len(plan.Skipped) > 0 {
		r.line("%s", r.render(SectionStyle, fmt.Sprintf("Skipped (%d):", len(plan.Skipped))))
		for _, name := range plan.Skipped {
			r.line("  %s", r.render(WarningStyle, SymbolWarning+" "+name))
		}
	}

	if len(plan.Columns) > 0 {
		conflicts := make(map[string]bool, len(plan.Conflicts))
		for _, c := range plan.Conflicts {
			conflicts[c] = true
		}

		width := 0
		for _, col := range plan.Columns {
			width = max(width, len(col.Name))
		}

		r.line("%s", r.render(SectionStyle, fmt.Sprintf("Columns (%d):", len(plan.Columns))))
		for _, col := range plan.Columns {
			typ := col.Type
			if typ == "" {
				typ = "(none)"
			}
			entry := "  " + r.render(ColumnStyle, fmt.Sprintf("%-*s", width, col.Name)) + "  " + r.render(TypeStyle, typ)
			if conflicts[col.Name] {
				entry += "  " + r.render(WarningStyle, SymbolArrowRight+" conflicting types")
			}
			r.line("%s", strings.TrimRight(entry, " "))
		}
	}

	if !plan.NoOp {
		r.line("%s", r.render(SuccessStyle, fmt.Sprintf("%s %s would be rebuilt: %d column(s) from %d table(s)",
			SymbolCheck, plan.Destination, len(plan.Columns), len(plan.Sources))))
	}

	r.line("%s", r.render(HelpStyle, "Dry run: nothing was written."))

	_, err := io.WriteString(w, r.b.String())
	return err
}
