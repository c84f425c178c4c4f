package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Config selects the database backend. When URL is empty a local SQLite
// file at Path is used; otherwise the hosted libsql database at URL.
type Config struct {
	Path      string
	URL       string
	AuthToken string
}

// Open opens the notes database and runs migrations.
func Open(cfg Config) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	if cfg.URL != "" {
		dsn := cfg.URL
		if cfg.AuthToken != "" {
			dsn += "?authToken=" + cfg.AuthToken
		}
		db, err = sql.Open("libsql", dsn)
	} else {
		db, err = sql.Open("sqlite", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	}
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}
