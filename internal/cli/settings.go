package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jupaf/partidos/internal/config"
	"github.com/jupaf/partidos/internal/db"
	"github.com/jupaf/partidos/internal/logging"
	"github.com/jupaf/partidos/pkg/partidos"
)

const configFileHint = config.ConfigFileName

// Environment variables consulted after flags.
const (
	envDSN         = "PARTIDOS_DSN"
	envDatabaseURL = "DATABASE_URL"
	envDriver      = "PARTIDOS_DRIVER"
)

// loadProjectConfig loads godotenv and the project configuration.
// An explicit path must exist; the default ./partidos.yaml is optional.
func loadProjectConfig(path string) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	if path == "" {
		projectCfg, err := config.LoadDir(".")
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil // Config file not found is not an error
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, errors.Join(partidos.ErrInvalidConfig, err))
		}
		return projectCfg, nil
	}

	projectCfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, errors.Join(partidos.ErrInvalidConfig, err))
	}
	return projectCfg, nil
}

// resolveConfig merges defaults, partidos.yaml, environment and flags, in
// increasing precedence, and validates the result.
func resolveConfig(cmd *cobra.Command) (*partidos.Config, error) {
	cfg := partidos.DefaultConfig()
	flags := cmd.Flags()

	configPath, _ := flags.GetString("config")
	projectCfg, err := loadProjectConfig(configPath)
	if err != nil {
		return nil, err
	}
	if projectCfg != nil {
		if err := projectCfg.Apply(&cfg); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv(envDriver); v != "" {
		cfg.Driver = v
	}
	if v := os.Getenv(envDSN); v != "" {
		cfg.DSN = v
	} else if v := os.Getenv(envDatabaseURL); v != "" {
		cfg.DSN = v
	}

	if flags.Changed("driver") {
		cfg.Driver, _ = flags.GetString("driver")
	}
	if flags.Changed("dsn") {
		cfg.DSN, _ = flags.GetString("dsn")
	}
	if flags.Changed("timeout") {
		cfg.Timeout = getTimeoutFlag(cmd)
	}
	cfg.Verbose = getVerboseFlag(cmd)

	cfg.Driver, err = db.ResolveDriver(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newRunContext bounds a run by timeout and cancels it on SIGINT or SIGTERM.
// A zero timeout means no deadline.
func newRunContext(parent context.Context, timeout time.Duration, stderr io.Writer) (context.Context, context.CancelFunc) {
	var ctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	// Handle interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(stderr, "\n[INTERRUPT] Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// runFunc is the body of a command that needs an open Store.
type runFunc func(ctx context.Context, cfg *partidos.Config, store partidos.Store, logger partidos.Logger) error

// withStore resolves configuration, opens the Store and runs fn under the
// run context. The Store is closed on every exit path.
func withStore(cmd *cobra.Command, fn runFunc) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLoggerTo(cmd.ErrOrStderr(), cfg.Verbose)
	logger.Verbose("Driver: %s", cfg.Driver)
	logger.Verbose("Source suffix: %s, destination: %s, roster: %s", cfg.SourceSuffix, cfg.Destination, cfg.RosterTable)

	ctx, cancel := newRunContext(cmd.Context(), cfg.Timeout, cmd.ErrOrStderr())
	defer cancel()

	store, err := db.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("Failed to close database: %v", cerr)
		}
	}()

	return fn(ctx, cfg, store, logger)
}

// exclusions lists the names never treated as sources besides the destination.
func exclusions(cfg *partidos.Config) []string {
	return append([]string{cfg.RosterTable}, cfg.Exclude...)
}
