package partidos

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config contains every setting a command run needs once flags, environment
// and partidos.yaml have been merged.
type Config struct {
	// Driver selects the storage backend: DriverSQLite or DriverPostgres.
	Driver string

	// DSN is the SQLite file path or the PostgreSQL connection string.
	DSN string

	// SourceSuffix selects source tables by name suffix.
	SourceSuffix string

	// RosterTable is always excluded from discovery.
	RosterTable string

	// Exclude lists further table names never treated as sources.
	Exclude []string

	// Destination is the unified table rebuilt by each run.
	Destination string

	// ImportDir is the default CSV directory for the import command.
	ImportDir string

	// Timeout bounds the whole run.
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool
}

// DefaultConfig returns a Config populated with the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Driver:       DefaultDriver,
		DSN:          DefaultDSN,
		SourceSuffix: DefaultSourceSuffix,
		RosterTable:  DefaultRosterTable,
		Destination:  DefaultDestination,
		ImportDir:    "partidos_data",
		Timeout:      DefaultTimeout,
	}
}

// Validate checks if the Config has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *Config) Validate() error {
	var errs []error

	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("driver %q: %w", c.Driver, ErrUnsupportedDriver))
	}

	if strings.TrimSpace(c.DSN) == "" {
		errs = append(errs, fmt.Errorf("DSN is required: %w", ErrInvalidConfig))
	}

	if c.SourceSuffix == "" {
		errs = append(errs, fmt.Errorf("source suffix is required: %w", ErrInvalidConfig))
	}

	if c.Destination == "" {
		errs = append(errs, fmt.Errorf("destination table is required: %w", ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

