package db

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsPostgresDSN reports whether dsn is a PostgreSQL URI.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgresql://") || strings.HasPrefix(dsn, "postgres://")
}

// isADONET reports whether dsn looks like Host=...;Database=...
func isADONET(dsn string) bool {
	return strings.Contains(dsn, "=") && strings.Contains(dsn, ";")
}

// NormalizeDSN returns a connection string pgx can parse. ADO.NET strings
// (Host=h;Port=5432;Database=db;Username=u;Password=p) become a URI; URIs and
// libpq keyword/value strings pass through unchanged.
func NormalizeDSN(dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "", fmt.Errorf("connection string is empty")
	}
	if IsPostgresDSN(dsn) || !isADONET(dsn) {
		return dsn, nil
	}
	u, err := adoNETToURL(dsn)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// WithDatabase returns dsn pointed at database. The result is checked with
// pgconn.ParseConfig.
func WithDatabase(dsn, database string) (string, error) {
	dsn, err := NormalizeDSN(dsn)
	if err != nil {
		return "", err
	}

	var out string
	if IsPostgresDSN(dsn) {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("invalid PostgreSQL URI: %w", err)
		}
		u.Path = "/" + database
		out = u.String()
	} else {
		// Later keywords override earlier ones.
		out = dsn + " dbname='" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(database) + "'"
	}

	cfg, err := pgconn.ParseConfig(out)
	if err != nil {
		return "", err
	}
	if cfg.Database != database {
		return "", fmt.Errorf("connection string still targets %q, want %q", cfg.Database, database)
	}
	return out, nil
}

// adoNETToURL turns Host=...;Port=...;... into a postgresql:// URL.
// Unknown keys are carried over as query parameters.
func adoNETToURL(dsn string) (*url.URL, error) {
	host, port, database := "localhost", 5432, "postgres"
	var user, password string
	query := url.Values{}

	for _, part := range strings.Split(dsn, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		switch strings.ToLower(key) {
		case "host", "server":
			host = value
		case "port":
			p, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid port in ADO.NET string: %w", err)
			}
			port = p
		case "database", "initial catalog":
			database = value
		case "username", "user id", "uid":
			user = value
		case "password", "pwd":
			password = value
		case "sslmode", "ssl mode":
			query.Set("sslmode", strings.ToLower(value))
		case "application name", "applicationname":
			query.Set("application_name", value)
		case "timeout", "connect timeout", "connecttimeout":
			query.Set("connect_timeout", value)
		default:
			query.Set(key, value)
		}
	}

	u := &url.URL{
		Scheme:   "postgresql",
		Host:     host + ":" + strconv.Itoa(port),
		Path:     "/" + database,
		RawQuery: query.Encode(),
	}
	switch {
	case user != "" && password != "":
		u.User = url.UserPassword(user, password)
	case user != "":
		u.User = url.User(user)
	}
	return u, nil
}
