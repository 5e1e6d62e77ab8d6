package partidos

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	res, err := u.Run(ctx)
//	if errors.Is(err, partidos.ErrSourceVanished) {
//	    // a source table was dropped while the run was in progress
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the database could not be opened.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrNoSourceTables indicates discovery matched no tables. It is an
	// outcome, not a failure: callers report it and leave the store untouched.
	ErrNoSourceTables = errors.New("no source tables")

	// ErrUnsafeIdentifier indicates a table name outside the allowed character set.
	ErrUnsafeIdentifier = errors.New("unsafe identifier")

	// ErrSourceVanished indicates a source table present at discovery could not
	// be read afterwards.
	ErrSourceVanished = errors.New("source table vanished")

	// ErrExecutionFailed indicates a statement failed against the backend.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrUnsupportedDriver indicates an unknown storage driver name.
	ErrUnsupportedDriver = errors.New("unsupported driver")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedDriver):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrExecutionFailed), errors.Is(err, ErrSourceVanished):
		return ExitExecutionFailed
	}

	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	// cobra argument validation errors
	if (strings.Contains(errStr, "accepts ") && strings.Contains(errStr, " arg(s)")) ||
		strings.HasPrefix(errStr, "unknown flag") ||
		strings.HasPrefix(errStr, "unknown shorthand flag") ||
		strings.HasPrefix(errStr, "unknown command") ||
		strings.HasPrefix(errStr, "required flag") ||
		strings.HasPrefix(errStr, "invalid argument") {
		return ExitUsageError
	}

	return ExitGeneralError
}
