// Package logging holds the partidos.Logger implementations: ConsoleLogger for
// the CLI (stderr by default, verbose output gated by -v) and NullLogger for
// tests and library callers that want silence.
package logging
