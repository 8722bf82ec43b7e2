package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS saves (
	id         TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_saves_updated ON saves(updated_at DESC);
`

// SQLiteStore implements Storage using a local SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Storage = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) PutSave(ctx context.Context, rec *SaveRecord) error {
	if rec == nil {
		return fmt.Errorf("save record cannot be nil")
	}
	rec.UpdatedAt = nowUTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal save record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saves (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		rec.ID.String(), string(data), rec.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to store save record: %w", err)
	}
	s.logger.Debug("Save record stored", "save_id", rec.ID.String())
	return nil
}

func (s *SQLiteStore) GetSave(ctx context.Context, id uuid.UUID) (*SaveRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM saves WHERE id = ?`, id.String()).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get save record: %w", err)
	}
	var rec SaveRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal save record: %w", err)
	}
	return &rec, nil
}

func (s *SQLiteStore) LatestSave(ctx context.Context) (*SaveRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM saves ORDER BY updated_at DESC LIMIT 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest save: %w", err)
	}
	var rec SaveRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal save record: %w", err)
	}
	return &rec, nil
}

func (s *SQLiteStore) DeleteSave(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete save record: %w", err)
	}
	return nil
}
