package partidos

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Command completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to open the database
	ExitExecutionFailed = 13 // A statement failed while rebuilding or loading tables
)

const (
	// DefaultDriver is the storage backend used when none is configured.
	// The scraping pipeline writes into a local SQLite file.
	DefaultDriver = DriverSQLite

	// DefaultDSN is the SQLite database file used when none is configured.
	DefaultDSN = "mi_base_de_datos.db"

	// DefaultSourceSuffix marks per-player match-log tables.
	DefaultSourceSuffix = "_partidos"

	// DefaultRosterTable is the player roster. It is never treated as a source
	// table, whatever its name.
	DefaultRosterTable = "jugadores"

	// DefaultDestination is the unified match-log table.
	DefaultDestination = "partidos"

	// DefaultTimeout bounds a whole command run.
	DefaultTimeout = 3 * time.Minute

	// RosterIDColumn and RosterNameColumn are the roster table's columns.
	// RosterIDColumn is also the column added to source tables by players --tag.
	RosterIDColumn   = "jugador_id"
	RosterNameColumn = "nombre_completo"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)
