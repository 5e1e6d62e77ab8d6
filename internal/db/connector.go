package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jupaf/partidos/pkg/partidos"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns holds the run to a single session. Every step is
	// sequential and the transaction must own the only connection.
	DefaultMaxConns = 1

	// DefaultMinConns maintains at least one connection in the pool.
	DefaultMinConns = 1

	// DefaultMaxConnIdleTime keeps the connection alive for long imports.
	DefaultMaxConnIdleTime = 30 * time.Minute

	// DefaultAppName is reported as application_name when the DSN sets none.
	DefaultAppName = "partidos"
)

// NoticeFunc receives server notices (RAISE NOTICE, DROP ... IF EXISTS skips).
type NoticeFunc func(message string)

func configurePool(poolConfig *pgxpool.Config, onNotice NoticeFunc) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	if _, ok := poolConfig.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = DefaultAppName
	}
	if onNotice != nil {
		poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
			onNotice(notice.Message)
		}
	}
}

// Connector establishes a PostgreSQL connection pool.
type Connector struct {
	dsn      string
	onNotice NoticeFunc
}

// NewConnector creates a Connector for a DSN in URI, keyword/value or ADO.NET form.
func NewConnector(dsn string, onNotice NoticeFunc) *Connector {
	return &Connector{dsn: dsn, onNotice: onNotice}
}

// Connect opens the pool and pings the server. Errors wrap partidos.ErrConnectionFailed.
func (c *Connector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	connStr, err := NormalizeDSN(c.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", errors.Join(partidos.ErrInvalidConfig, err))
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", errors.Join(partidos.ErrInvalidConfig, err))
	}

	configurePool(poolConfig, c.onNotice)

	host := poolConfig.ConnConfig.Host
	port := int(poolConfig.ConnConfig.Port)
	database := poolConfig.ConnConfig.Database

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, host, port, database)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, host, port, database)
	}

	return pool, nil
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
// The result always wraps partidos.ErrConnectionFailed.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)
	cause := errors.Join(partidos.ErrConnectionFailed, err)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port

Original error: %w`, addr, host, port, cause)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable

Original error: %w`, host, cause)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD or the DSN)
  - Wrong username

Original error: %w`, database, cause)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

To create it:
  createdb %s

Original error: %w`, database, database, cause)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Original error: %w`, addr, cause)

	default:
		return fmt.Errorf("failed to connect to database: %w", cause)
	}
}
