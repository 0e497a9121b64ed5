// Package sqlite is a single-file store for local runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vvangelov/brregservice/internal/logging"
	"github.com/vvangelov/brregservice/internal/storage"
)

//go:embed schema.sql
var schemaFS embed.FS

var _ storage.Storage = (*Storage)(nil)

const (
	retrieveQuery = `SELECT id, number, name, address, postnummer FROM brreg_number WHERE number = ?`

	upsertQuery = `INSERT INTO brreg_number (number, name, address, postnummer) VALUES (?, ?, ?, ?)
ON CONFLICT(number) DO UPDATE SET
	name = excluded.name,
	address = excluded.address,
	postnummer = excluded.postnummer`
)

// Config holds database configuration
type Config struct {
	DBPath       string
	MaxOpenConns int
	BusyTimeout  int // milliseconds
}

// DefaultConfig returns default database configuration
func DefaultConfig() *Config {
	return &Config{
		DBPath:       "./data/brreg.db",
		MaxOpenConns: 1, // SQLite doesn't handle concurrent writes well
		BusyTimeout:  5000,
	}
}

type Storage struct {
	db *sql.DB
}

// New opens (creating when needed) the database at cfg.DBPath and applies the schema.
func New(cfg *Config) (*Storage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d", cfg.DBPath, cfg.BusyTimeout)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxLifetime(0)

	s := &Storage{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Info(context.Background(), logging.Data{"path": cfg.DBPath}, "sqlite storage initialized")
	return s, nil
}

// Migrate applies the embedded schema.
func (s *Storage) Migrate() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() {
	if err := s.db.Close(); err != nil {
		logging.Error(context.Background(), err, nil, "failed to close sqlite storage")
	}
}

func (s *Storage) Organization(ctx context.Context, number string) (*storage.Data, error) {
	data := &storage.Data{}
	err := s.db.QueryRowContext(ctx, retrieveQuery, number).
		Scan(&data.ID, &data.Number, &data.Name, &data.Address, &data.Postnummer)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, storage.ErrNotFound
	case err != nil:
		logging.Error(ctx, err, logging.Data{"number": number}, "query error")
		return nil, fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	return data, nil
}

func (s *Storage) Upsert(ctx context.Context, org storage.Organization) error {
	if _, err := s.db.ExecContext(ctx, upsertQuery, org.Number, org.Name, org.Address, org.PostalCode); err != nil {
		return fmt.Errorf("%w: upsert: %w", storage.ErrStorage, err)
	}
	return nil
}

// Count returns the number of rows stored for number.
func (s *Storage) Count(ctx context.Context, number string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM brreg_number WHERE number = ?`, number).Scan(&n)
	return n, err
}
