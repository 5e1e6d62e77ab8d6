// Package cli implements the partidos command line.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jupaf/partidos/pkg/partidos"
)

const rootLong = `partidos consolidates per-player match-log tables into one table.

Every table whose name ends with the source suffix (default _partidos) is a
source. Each run drops and rebuilds the destination table (default partidos)
with the union of the sources' columns, in one transaction: a failed run
leaves the previous destination exactly as it was.

Configuration precedence (highest first):
  flags > $PARTIDOS_DSN, $DATABASE_URL, $PARTIDOS_DRIVER > partidos.yaml > defaults

Exit Codes:
  0  - Success (including "no source tables")
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  13 - SQL execution failed`

// NewRootCmd builds the command tree. Each call returns independent flag state.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "partidos",
		Short:         "Consolidate per-player match-log tables",
		Long:          rootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to the config file (default ./"+configFileHint+")")
	flags.String("driver", "", "Storage driver: sqlite|postgres (default sqlite, or $PARTIDOS_DRIVER)\n"+
		"A postgres:// or postgresql:// DSN always selects postgres")
	flags.String("dsn", "", "SQLite file path or PostgreSQL connection string\n"+
		"Precedence: --dsn > $PARTIDOS_DSN > $DATABASE_URL > partidos.yaml > "+partidos.DefaultDSN)
	flags.Duration("timeout", partidos.DefaultTimeout,
		"Catastrophic failure protection timeout for the whole run\n"+
			"Examples: 30s, 5m, 1h30m")
	flags.BoolP("verbose", "v", false, "Enable verbose output for all commands")

	root.AddCommand(
		newUnifyCmd(),
		newImportCmd(),
		newPlayersCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}

	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

func getTimeoutFlag(cmd *cobra.Command) time.Duration {
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return partidos.DefaultTimeout
	}
	return timeout
}
