package partidos_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jupaf/partidos/pkg/partidos"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, partidos.ExitSuccess},
		{"general error", errors.New("something went wrong"), partidos.ExitGeneralError},
		{"unknown flag", errors.New("unknown flag --foo"), partidos.ExitUsageError},
		{"unknown shorthand flag", errors.New("unknown shorthand flag: 'x'"), partidos.ExitUsageError},
		{"accepts args", errors.New("accepts 1 arg(s), received 0"), partidos.ExitUsageError},
		{"invalid argument", errors.New("invalid argument \"abc\" for \"--timeout\""), partidos.ExitUsageError},
		{"invalid config", fmt.Errorf("load: %w", partidos.ErrInvalidConfig), partidos.ExitConfigError},
		{"unsupported driver", fmt.Errorf("open: %w", partidos.ErrUnsupportedDriver), partidos.ExitConfigError},
		{"connection failed", partidos.ErrConnectionFailed, partidos.ExitConnectionError},
		{"connection refused text", errors.New("dial tcp: connection refused"), partidos.ExitConnectionError},
		{"execution failed", fmt.Errorf("copy: %w", partidos.ErrExecutionFailed), partidos.ExitExecutionFailed},
		{"source vanished", fmt.Errorf("reconcile: %w", partidos.ErrSourceVanished), partidos.ExitExecutionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := partidos.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
