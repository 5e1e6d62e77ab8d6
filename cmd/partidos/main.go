package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/jupaf/partidos/internal/cli"
	"github.com/jupaf/partidos/pkg/partidos"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(partidos.ExitPanic)
		}
	}()

	if os.Getenv("PARTIDOS_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(partidos.ExitCodeForError(err))
	}
}
