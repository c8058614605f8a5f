// Package store persists users, their logged workouts and archived weekly
// summaries in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrWeekArchived is returned when a user's week already has a history row.
	ErrWeekArchived = errors.New("week already archived")
)

const dateLayout = "2006-01-02"

type Store struct {
	db *sqlx.DB
}

// NewStore opens the database at dbPath and creates the tables if they do
// not exist.
func NewStore(dbPath string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			goal TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			age INTEGER NOT NULL DEFAULT 0,
			gender TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			message_count INTEGER NOT NULL DEFAULT 0,
			last_message_at TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS workouts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			logged_at TIMESTAMP NOT NULL,
			category TEXT NOT NULL,
			payload JSON NOT NULL,
			archived_at TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_workouts_user_logged ON workouts(user_id, logged_at);

		CREATE TABLE IF NOT EXISTS weekly_history (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			week_start TEXT NOT NULL,
			week_end TEXT NOT NULL,
			total_volume INTEGER NOT NULL,
			insights TEXT NOT NULL,
			stats JSON NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_weekly_history_user_week ON weekly_history(user_id, week_start);

		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			direction TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id, created_at);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func day(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
