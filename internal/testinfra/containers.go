// Package testinfra starts throwaway PostgreSQL servers for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DefaultImage is used unless PARTIDOS_TEST_IMAGE names another one.
const DefaultImage = "postgres:17-alpine"

const (
	user     = "partidos"
	password = "partidos"
	database = "partidos"
)

// Postgres is a running server and the DSN that reaches its maintenance database.
type Postgres struct {
	*postgres.PostgresContainer
	DSN string
}

// StartPostgres runs a plain (no TLS) server and waits until it accepts connections.
func StartPostgres(ctx context.Context) (*Postgres, error) {
	image := os.Getenv("PARTIDOS_TEST_IMAGE")
	if image == "" {
		image = DefaultImage
	}

	ctr, err := postgres.Run(ctx, image,
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		postgres.WithDatabase(database),
		testcontainers.WithWaitStrategy(
			// The entrypoint restarts the server once after init.
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres (%s): %w", image, err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("postgres connection string: %w", err)
	}
	return &Postgres{PostgresContainer: ctr, DSN: dsn}, nil
}
