package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"sweep_radar/internal/model"
	"sweep_radar/migrations"
)

const (
	// deadlineLayout matches the ISO form written by earlier versions of the tool.
	deadlineLayout = time.RFC3339
	// createdLayout is the format of SQLite's CURRENT_TIMESTAMP.
	createdLayout = "2006-01-02 15:04:05"
)

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection for the whole run; also keeps ":memory:" databases intact.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// MarkSeen records that an entry has been processed.
func (s *SQLite) MarkSeen(ctx context.Context, rec model.SeenRecord) error {
	var deadline *string
	if rec.DeadlineUTC != nil {
		v := rec.DeadlineUTC.UTC().Format(deadlineLayout)
		deadline = &v
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO posts (id, url, title, deadline_utc) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.URL, rec.Title, deadline,
	)
	if err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

// IsSeen checks whether an entry has already been processed.
func (s *SQLite) IsSeen(ctx context.Context, id string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE id = ?`, id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check seen: %w", err)
	}
	return count > 0, nil
}

// GetSeen returns the record stored for id.
func (s *SQLite) GetSeen(ctx context.Context, id string) (*model.SeenRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, title, deadline_utc, created_at_utc FROM posts WHERE id = ?`, id,
	)

	var rec model.SeenRecord
	var url, title, deadline, created sql.NullString
	if err := row.Scan(&rec.ID, &url, &title, &deadline, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan seen record: %w", err)
	}
	rec.URL = url.String
	rec.Title = title.String
	if deadline.Valid && deadline.String != "" {
		if t, err := time.Parse(deadlineLayout, deadline.String); err == nil {
			t = t.UTC()
			rec.DeadlineUTC = &t
		}
	}
	if created.Valid {
		rec.RecordedAt, _ = time.Parse(createdLayout, created.String)
	}
	return &rec, nil
}
