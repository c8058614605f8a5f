package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Subscription states. Anything other than inactive or cancelled is
// treated as active.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusCancelled = "cancelled"
)

type User struct {
	ID            string       `db:"id"`
	Name          string       `db:"name"`
	Goal          string       `db:"goal"`
	Status        string       `db:"status"`
	Age           int          `db:"age"` // 0 when unknown
	Gender        string       `db:"gender"`
	CreatedAt     time.Time    `db:"created_at"`
	MessageCount  int          `db:"message_count"`
	LastMessageAt sql.NullTime `db:"last_message_at"`
}

// Active reports whether the user's subscription allows coaching.
func (u User) Active() bool {
	return u.Status != StatusInactive && u.Status != StatusCancelled
}

// UpsertUser creates a user or updates the profile fields of an existing
// one. Message counters are left untouched on update.
func (s *Store) UpsertUser(ctx context.Context, u User) error {
	if u.ID == "" {
		return fmt.Errorf("user id is required")
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, goal, status, age, gender, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			goal = excluded.goal,
			status = excluded.status,
			age = excluded.age,
			gender = excluded.gender
	`, u.ID, u.Name, u.Goal, u.Status, u.Age, u.Gender, u.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", u.ID, err)
	}
	return nil
}

// GetUser returns ErrNotFound for an unknown id.
func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = ?`, id)
	if err != nil {
		return User{}, notFound(err, "user "+id)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.db.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// TouchUser records an inbound message.
func (s *Store) TouchUser(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET message_count = message_count + 1, last_message_at = ? WHERE id = ?
	`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound(sql.ErrNoRows, "user "+id)
	}
	return nil
}
