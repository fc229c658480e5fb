package friend

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when the referenced request or friendship does not
// exist or is not in the expected state.
var ErrNotFound = errors.New("friend request not found")

// ErrAlreadyExists is returned when a request between the pair already exists
// in either direction.
var ErrAlreadyExists = errors.New("friend request already exists")

// Store provides access to the friend_requests table.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateRequest inserts a new pending request unless one already exists
// between the pair in either direction.
func (s *Store) CreateRequest(ctx context.Context, fromID, toID int64) (Request, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Request{}, fmt.Errorf("failed to begin request transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	const existsQuery = `
		SELECT EXISTS (
			SELECT 1 FROM friend_requests
			WHERE (from_user_id = $1 AND to_user_id = $2)
			   OR (from_user_id = $2 AND to_user_id = $1)
		)`
	if err := tx.QueryRow(ctx, existsQuery, fromID, toID).Scan(&exists); err != nil {
		return Request{}, fmt.Errorf("failed to check existing request: %w", err)
	}
	if exists {
		return Request{}, ErrAlreadyExists
	}

	const insertQuery = `
		INSERT INTO friend_requests (from_user_id, to_user_id)
		VALUES ($1, $2)
		RETURNING request_id, from_user_id, to_user_id, status, created_at`

	var req Request
	err = tx.QueryRow(ctx, insertQuery, fromID, toID).Scan(
		&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt,
	)
	if err != nil {
		return Request{}, fmt.Errorf("failed to insert friend request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, fmt.Errorf("failed to commit friend request: %w", err)
	}

	return req, nil
}

// AcceptRequest marks a pending request directed at userID as accepted.
func (s *Store) AcceptRequest(ctx context.Context, requestID, userID int64) (Request, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Request{}, fmt.Errorf("failed to begin accept transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const lockQuery = `
		SELECT request_id, from_user_id, to_user_id, status, created_at
		FROM friend_requests
		WHERE request_id = $1 AND to_user_id = $2 AND status = $3
		FOR UPDATE`

	var req Request
	err = tx.QueryRow(ctx, lockQuery, requestID, userID, StatusPending).Scan(
		&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, fmt.Errorf("failed to lock friend request: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE friend_requests SET status = $1 WHERE request_id = $2`, StatusAccepted, requestID); err != nil {
		return Request{}, fmt.Errorf("failed to accept friend request: %w", err)
	}
	req.Status = StatusAccepted

	if err := tx.Commit(ctx); err != nil {
		return Request{}, fmt.Errorf("failed to commit accept: %w", err)
	}

	return req, nil
}

// RejectRequest deletes a pending request directed at userID.
func (s *Store) RejectRequest(ctx context.Context, requestID, userID int64) error {
	const deleteQuery = `
		DELETE FROM friend_requests
		WHERE request_id = $1 AND to_user_id = $2 AND status = $3`

	tag, err := s.pool.Exec(ctx, deleteQuery, requestID, userID, StatusPending)
	if err != nil {
		return fmt.Errorf("failed to reject friend request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// RemoveFriendship deletes an accepted friendship between the two users.
func (s *Store) RemoveFriendship(ctx context.Context, userID, friendID int64) error {
	const deleteQuery = `
		DELETE FROM friend_requests
		WHERE ((from_user_id = $1 AND to_user_id = $2)
		    OR (from_user_id = $2 AND to_user_id = $1))
		  AND status = $3`

	tag, err := s.pool.Exec(ctx, deleteQuery, userID, friendID, StatusAccepted)
	if err != nil {
		return fmt.Errorf("failed to remove friendship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListFriends returns every user with an accepted friendship with userID.
func (s *Store) ListFriends(ctx context.Context, userID int64) ([]Friend, error) {
	const query = `
		SELECT u.user_id, u.username
		FROM users u
		INNER JOIN friend_requests fr
		  ON (u.user_id = fr.from_user_id OR u.user_id = fr.to_user_id)
		 AND (fr.from_user_id = $1 OR fr.to_user_id = $1)
		 AND fr.status = $2
		 AND u.user_id != $1
		ORDER BY u.username`

	rows, err := s.pool.Query(ctx, query, userID, StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	friends := make([]Friend, 0)
	for rows.Next() {
		var f Friend
		if err := rows.Scan(&f.UserID, &f.Username); err != nil {
			return nil, fmt.Errorf("failed to scan friend row: %w", err)
		}
		friends = append(friends, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read friend rows: %w", err)
	}

	return friends, nil
}

// ListPending returns every pending request sent by or directed at userID.
func (s *Store) ListPending(ctx context.Context, userID int64) ([]PendingRequest, error) {
	const query = `
		SELECT fr.request_id, fr.from_user_id, fr.to_user_id, fr.status,
		       u_from.username AS from_username, u_to.username AS to_username
		FROM friend_requests fr
		JOIN users u_from ON fr.from_user_id = u_from.user_id
		JOIN users u_to ON fr.to_user_id = u_to.user_id
		WHERE (fr.from_user_id = $1 OR fr.to_user_id = $1)
		  AND fr.status = $2`

	rows, err := s.pool.Query(ctx, query, userID, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	defer rows.Close()

	requests := make([]PendingRequest, 0)
	for rows.Next() {
		var r PendingRequest
		if err := rows.Scan(&r.ID, &r.FromUserID, &r.ToUserID, &r.Status, &r.FromUsername, &r.ToUsername); err != nil {
			return nil, fmt.Errorf("failed to scan friend request row: %w", err)
		}
		requests = append(requests, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read friend request rows: %w", err)
	}

	return requests, nil
}
