package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/htol/locallibrary/config"
	"github.com/htol/locallibrary/logger"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

type Repo struct {
	db     *sqlx.DB
	sb     squirrel.StatementBuilderType
	driver string
}

var _ Repository = (*Repo)(nil)

// Open connects to the configured database and makes sure the schema exists.
func Open(cfg config.DatabaseConfig) (*Repo, error) {
	var placeholders squirrel.PlaceholderFormat
	switch cfg.Driver {
	case DriverSQLite:
		placeholders = squirrel.Question
	case DriverPostgres:
		placeholders = squirrel.Dollar
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	r := &Repo{
		db:     db,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(placeholders),
		driver: cfg.Driver,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.CreateSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return r, nil
}

// SQLiteDSN is the connection string for a file database at path. Connections
// keep private caches: in shared-cache mode a writer overlapping a reader fails
// with SQLITE_LOCKED instead of waiting out the busy timeout. Transactions take
// the write lock up front so two of them never deadlock upgrading.
func SQLiteDSN(path string) string {
	return "file:" + path + "?mode=rwc&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"
}

// GetStorage opens a SQLite database at path and panics on failure.
// Use ":memory:" for a private in-memory database.
func GetStorage(path string) *Repo {
	cfg := config.DatabaseConfig{Driver: DriverSQLite, DSN: SQLiteDSN(path)}
	if path == ":memory:" {
		// every connection would otherwise see its own empty database
		cfg.DSN = "file::memory:"
		cfg.MaxOpenConns = 1
	}

	r, err := Open(cfg)
	if err != nil {
		logger.Error("Failed to open database", "path", path, "error", err)
		panic(err)
	}
	return r
}

func (r *Repo) Close() error {
	if r.db != nil {
		logger.Info("Closing database connection")
		return r.db.Close()
	}
	return nil
}

func (r *Repo) Ping(ctx context.Context) error {
	if r.db != nil {
		return r.db.PingContext(ctx)
	}
	return sql.ErrConnDone
}

// Driver reports the database/sql driver in use.
func (r *Repo) Driver() string {
	return r.driver
}
