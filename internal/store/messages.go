package store

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
)

// Message directions, from the user's point of view.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// Message is one text exchanged with a user.
type Message struct {
	ID        int64     `db:"id"`
	UserID    string    `db:"user_id"`
	Direction string    `db:"direction"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

func (s *Store) AppendMessage(ctx context.Context, userID, direction, content string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (user_id, direction, content, created_at)
		VALUES (?, ?, ?, ?)
	`, userID, direction, content, at.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// RecentMessages returns up to limit of the user's latest messages, oldest
// first. Messages with the same timestamp keep insertion order.
func (s *Store) RecentMessages(ctx context.Context, userID string, limit int) ([]Message, error) {
	var msgs []Message
	err := s.db.SelectContext(ctx, &msgs, `
		SELECT * FROM messages WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return lo.Reverse(msgs), nil
}
