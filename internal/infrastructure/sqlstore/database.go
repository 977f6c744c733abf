package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// DriverName maps a configured store driver onto the registered database/sql driver.
func DriverName(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return "sqlite3", nil
	case "mysql":
		return "mysql", nil
	case "postgres", "postgresql", "pgx":
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", driver)
	}
}

// Open connects to the database described by driver and dsn and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	name, err := DriverName(driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s dsn must be provided", name)
	}

	if name == "mysql" {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		dsn = cfg.FormatDSN()
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", name, err)
	}
	if name == "sqlite3" {
		// In-memory databases live per connection.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate ensures the submissions table is present.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	name, err := DriverName(driver)
	if err != nil {
		return err
	}

	var stmts []string
	switch name {
	case "sqlite3":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS submissions (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				id TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				email TEXT NOT NULL,
				phone TEXT NOT NULL,
				notes TEXT NOT NULL DEFAULT '',
				file_name TEXT NOT NULL,
				file_url TEXT NOT NULL,
				object_key TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'new',
				created_at DATETIME NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions(created_at DESC)`,
		}
	case "mysql":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS submissions (
				seq BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				id CHAR(36) NOT NULL,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(320) NOT NULL,
				phone VARCHAR(64) NOT NULL,
				notes TEXT NOT NULL,
				file_name VARCHAR(512) NOT NULL,
				file_url TEXT NOT NULL,
				object_key VARCHAR(512) NOT NULL DEFAULT '',
				status VARCHAR(32) NOT NULL DEFAULT 'new',
				created_at DATETIME(6) NOT NULL,
				PRIMARY KEY (seq),
				UNIQUE KEY uq_submissions_id (id),
				KEY idx_submissions_created_at (created_at)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		}
	case "pgx":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS submissions (
				seq BIGSERIAL PRIMARY KEY,
				id UUID NOT NULL UNIQUE,
				name TEXT NOT NULL,
				email TEXT NOT NULL,
				phone TEXT NOT NULL,
				notes TEXT NOT NULL DEFAULT '',
				file_name TEXT NOT NULL,
				file_url TEXT NOT NULL,
				object_key TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'new',
				created_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions(created_at DESC)`,
		}
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate submissions: %w", err)
		}
	}
	return nil
}
