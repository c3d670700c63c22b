package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"mdblog/internal/config"
	"mdblog/internal/logging"
)

// defaultPingTimeout bounds the start-up ping when no connect timeout is configured.
const defaultPingTimeout = 5 * time.Second

var (
	sqlOpen = sql.Open

	// ErrIncompleteConfig is returned when host, port, user or database name is missing.
	ErrIncompleteConfig = errors.New("invalid database config: host, port, user, and name are required")
)

// Pinger is the subset of *sql.DB used by readiness checks.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// BuildPostgresDSN renders c as a postgres:// URL understood by pgx, e.g.
// postgres://blog:secret@db:5432/blog?application_name=mdblog&connect_timeout=5&sslmode=disable
func BuildPostgresDSN(c config.DatabaseConfig) (string, error) {
	if c.Host == "" || c.Port == "" || c.User == "" || c.Name == "" {
		return "", ErrIncompleteConfig
	}

	dsn := url.URL{
		Scheme: "postgres",
		User:   url.User(c.User),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   c.Name,
	}
	if c.Password != "" {
		dsn.User = url.UserPassword(c.User, c.Password)
	}

	params := url.Values{}
	if c.SSLMode != "" {
		params.Set("sslmode", c.SSLMode)
	}
	if c.AppName != "" {
		params.Set("application_name", c.AppName)
	}
	if c.ConnectTimeoutSec > 0 {
		params.Set("connect_timeout", strconv.Itoa(c.ConnectTimeoutSec))
	}
	dsn.RawQuery = params.Encode()

	return dsn.String(), nil
}

// NewPostgres opens the blog's database/sql pool on the pgx driver, wrapped by otelsql
// so every query is traced, and pings it before handing it out.
func NewPostgres(c config.DatabaseConfig, loc *time.Location) (*sql.DB, error) {
	dsn, err := BuildPostgresDSN(c)
	if err != nil {
		return nil, err
	}

	driverName, err := otelsql.Register("pgx",
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL, semconv.DBName(c.Name)),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register otelsql: %w", err)
	}

	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	configurePool(db, c)

	if err := Ping(context.Background(), db, pingTimeout(c)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	logging.JSON(loc, map[string]any{
		"component":      "database",
		"event":          "db_connected",
		"status":         "success",
		"db_host":        c.Host,
		"db_name":        c.Name,
		"app_name":       c.AppName,
		"max_open_conns": c.MaxOpenConns,
		"max_idle_conns": c.MaxIdleConns,
	})

	return db, nil
}

// configurePool applies the pool limits that are set; zero values keep the
// database/sql defaults.
func configurePool(db *sql.DB, c config.DatabaseConfig) {
	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetimeSec > 0 {
		db.SetConnMaxLifetime(time.Duration(c.ConnMaxLifetimeSec) * time.Second)
	}
}

func pingTimeout(c config.DatabaseConfig) time.Duration {
	if c.ConnectTimeoutSec > 0 {
		return time.Duration(c.ConnectTimeoutSec) * time.Second
	}
	return defaultPingTimeout
}

// Ping checks connectivity bounded by timeout.
func Ping(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.PingContext(ctx)
}
