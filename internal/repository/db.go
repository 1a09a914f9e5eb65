package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/business-dashboard/internal/common"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ConfigFrom copies the database section of the application config.
func ConfigFrom(c common.DatabaseConfig) Config {
	return Config{
		DSN:             c.DSN,
		MaxConns:        c.MaxConns,
		MinConns:        c.MinConns,
		MaxConnLifetime: c.MaxConnLifetime,
		MaxConnIdleTime: c.MaxConnIdleTime,
		DialTimeout:     c.DialTimeout,
	}
}

// PgPool is the part of *pgxpool.Pool the Postgres backend uses. pgxmock implements it.
type PgPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Ping(ctx context.Context) error
	Close()
}

// Client is a connection to one of the supported backends.
type Client struct {
	dialect string
	backend backend
	logger  *slog.Logger
}

// Open connects to Postgres when the DSN is a postgres:// URL and to a SQLite file otherwise.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DSN == "" {
		cfg.DSN = "data.db"
	}
	if (common.DatabaseConfig{DSN: cfg.DSN}).IsPostgres() {
		return openPostgres(ctx, cfg, logger)
	}
	return openSQLite(ctx, cfg, logger)
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	logger.Info("connecting to database", "dialect", dialect.Postgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database url", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "business-dashboard"

	dialCtx, cancel := common.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}

	logger.Info("successfully connected to database")
	return NewPostgresClient(pool, logger), nil
}

func openSQLite(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	logger.Info("opening database", "dialect", dialect.SQLite, "path", cfg.DSN)
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	// one connection keeps writes serialized and lets :memory: databases survive between calls
	db.SetMaxOpenConns(1)

	pingCtx, cancel := common.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		logger.Error("failed to open database", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}

	logger.Info("successfully opened database")
	return NewSQLiteClient(entsql.OpenDB(dialect.SQLite, db), logger), nil
}

// NewSQLiteClient wraps an ent SQL driver opened on SQLite.
func NewSQLiteClient(drv *entsql.Driver, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{dialect: dialect.SQLite, backend: &sqliteBackend{drv: drv}, logger: logger}
}

// NewPostgresClient wraps a pgx pool.
func NewPostgresClient(pool PgPool, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{dialect: dialect.Postgres, backend: &pgBackend{pool: pool}, logger: logger}
}

// Dialect returns the ent dialect name of the backend.
func (c *Client) Dialect() string {
	return c.dialect
}

func (c *Client) builder() *entsql.DialectBuilder {
	return entsql.Dialect(c.dialect)
}

// Close closes the database connections gracefully
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.logger.Info("closing database connections")
	if err := c.backend.Close(); err != nil {
		c.logger.Error("failed to close database", "error", err)
		return
	}
	c.logger.Info("database connections closed")
}

// HealthCheck pings the backend to catch DSN issues early.
func (c *Client) HealthCheck(ctx context.Context, timeout time.Duration) error {
	c.logger.Debug("pinging database")
	ctx, cancel := common.WithTimeout(ctx, timeout)
	defer cancel()
	if err := c.backend.Ping(ctx); err != nil {
		c.logger.Error("database ping failed", "error", err)
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	c.logger.Debug("database ping successful")
	return nil
}
