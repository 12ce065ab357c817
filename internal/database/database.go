package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Config holds database configuration.
type Config struct {
	Path string // SQLite file path
}

// ConfigFromEnv creates a Config from environment variables.
func ConfigFromEnv() Config {
	path := os.Getenv("DATABASE_PATH")
	if path == "" {
		path = ".config/screentimed.db"
	}
	return Config{Path: path}
}

// DB is the narrow database surface the settings store depends on.
type DB interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Ping() error
	Close() error
}

// SQLiteDB wraps *sql.DB opened against a local SQLite file.
type SQLiteDB struct {
	*sql.DB
	path string
}

// Open opens (creating if needed) the SQLite database at cfg.Path.
func Open(cfg Config) (*SQLiteDB, error) {
	if cfg.Path == "" {
		cfg.Path = ".config/screentimed.db"
	}

	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// _busy_timeout=5000 - wait up to 5 seconds when database is locked
	// _txlock=immediate - acquire write lock immediately in transactions
	connStr := cfg.Path + "?_busy_timeout=5000&_txlock=immediate"
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite doesn't benefit from multiple write connections.
	db.SetMaxOpenConns(1)

	// WAL mode for better concurrent read/write performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		log.Printf("⚠️ Failed to enable WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		log.Printf("⚠️ Failed to set busy timeout: %v", err)
	}

	log.Printf("📦 SQLite database initialized: %s", cfg.Path)
	return &SQLiteDB{DB: db, path: cfg.Path}, nil
}

// Path returns the database file path.
func (db *SQLiteDB) Path() string {
	return db.path
}

// TableExists checks if a table exists.
func (db *SQLiteDB) TableExists(table string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?"
	if err := db.QueryRow(query, table).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
