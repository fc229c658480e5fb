package message

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists and reads back direct messages using a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Append inserts a new message and returns the persisted row with its
// server-assigned id and timestamp. The insert is durable before return.
func (s *Store) Append(ctx context.Context, fromID, toID int64, text string) (Message, error) {
	const insertQuery = `
		INSERT INTO messages (from_user_id, to_user_id, message_text, timestamp)
		VALUES ($1, $2, $3, now())
		RETURNING message_id, from_user_id, to_user_id, message_text, timestamp`

	var m Message
	err := s.pool.QueryRow(ctx, insertQuery, fromID, toID, text).Scan(
		&m.ID,
		&m.FromUserID,
		&m.ToUserID,
		&m.Text,
		&m.Timestamp,
	)
	if err != nil {
		return Message{}, fmt.Errorf("failed to insert message: %w", err)
	}

	return m, nil
}

// Range returns every message exchanged between the two users, in either
// direction, oldest first. Same-timestamp rows are ordered by insertion id.
func (s *Store) Range(ctx context.Context, userA, userB int64) ([]Message, error) {
	const rangeQuery = `
		SELECT message_id, from_user_id, to_user_id, message_text, timestamp
		FROM messages
		WHERE (from_user_id = $1 AND to_user_id = $2)
		   OR (from_user_id = $2 AND to_user_id = $1)
		ORDER BY timestamp ASC, message_id ASC`

	rows, err := s.pool.Query(ctx, rangeQuery, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.FromUserID, &m.ToUserID, &m.Text, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read message rows: %w", err)
	}

	return messages, nil
}
