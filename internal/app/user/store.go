package user

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides CRUD access to the users table.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Create inserts a new account and returns the stored row.
// A unique violation on username surfaces as a raw pg error; callers map it
// through db.IsUniqueViolation.
func (s *Store) Create(ctx context.Context, username, passwordHash, profileImageURL string) (User, error) {
	const insertQuery = `
		INSERT INTO users (username, password, profile_image_url)
		VALUES ($1, $2, $3)
		RETURNING user_id, username, profile_image_url, online, created_at`

	var u User
	err := s.pool.QueryRow(ctx, insertQuery, username, passwordHash, profileImageURL).Scan(
		&u.ID, &u.Username, &u.ProfileImageURL, &u.Online, &u.CreatedAt,
	)
	if err != nil {
		return User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	return u, nil
}

// GetByUsername fetches an account with its password hash for credential checks.
func (s *Store) GetByUsername(ctx context.Context, username string) (Credentials, error) {
	const query = `
		SELECT user_id, username, password, profile_image_url, online, created_at
		FROM users
		WHERE username = $1`

	var c Credentials
	err := s.pool.QueryRow(ctx, query, username).Scan(
		&c.ID, &c.Username, &c.PasswordHash, &c.ProfileImageURL, &c.Online, &c.CreatedAt,
	)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to fetch user by username: %w", err)
	}

	return c, nil
}

// GetByID fetches an account with its password hash by primary key.
func (s *Store) GetByID(ctx context.Context, userID int64) (Credentials, error) {
	const query = `
		SELECT user_id, username, password, profile_image_url, online, created_at
		FROM users
		WHERE user_id = $1`

	var c Credentials
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&c.ID, &c.Username, &c.PasswordHash, &c.ProfileImageURL, &c.Online, &c.CreatedAt,
	)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to fetch user by id: %w", err)
	}

	return c, nil
}

// UpdateProfile overwrites the provided fields, keeping current values where
// the argument is empty.
func (s *Store) UpdateProfile(ctx context.Context, userID int64, username, passwordHash, profileImageURL string) (User, error) {
	const updateQuery = `
		UPDATE users
		SET username          = COALESCE(NULLIF($2, ''), username),
		    password          = COALESCE(NULLIF($3, ''), password),
		    profile_image_url = COALESCE(NULLIF($4, ''), profile_image_url)
		WHERE user_id = $1
		RETURNING user_id, username, profile_image_url, online, created_at`

	var u User
	err := s.pool.QueryRow(ctx, updateQuery, userID, username, passwordHash, profileImageURL).Scan(
		&u.ID, &u.Username, &u.ProfileImageURL, &u.Online, &u.CreatedAt,
	)
	if err != nil {
		return User{}, fmt.Errorf("failed to update user profile: %w", err)
	}

	return u, nil
}

// UsernameTakenByOther reports whether another account already owns the username.
func (s *Store) UsernameTakenByOther(ctx context.Context, username string, userID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND user_id != $2)`

	var taken bool
	if err := s.pool.QueryRow(ctx, query, username, userID).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check username availability: %w", err)
	}

	return taken, nil
}

// Delete removes the account together with its messages and friend requests,
// in one transaction. Account deletion is the only path that deletes messages.
func (s *Store) Delete(ctx context.Context, userID int64) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE from_user_id = $1 OR to_user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete user messages: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM friend_requests WHERE from_user_id = $1 OR to_user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete user friend requests: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

// ListOthers returns every account except the given one, for the user directory.
func (s *Store) ListOthers(ctx context.Context, userID int64) ([]DirectoryEntry, error) {
	const query = `
		SELECT user_id, username
		FROM users
		WHERE user_id != $1
		ORDER BY username`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	entries := make([]DirectoryEntry, 0)
	for rows.Next() {
		var e DirectoryEntry
		if err := rows.Scan(&e.UserID, &e.Username); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user rows: %w", err)
	}

	return entries, nil
}

// SetOnline persists the online flag. Called best-effort from the relay's
// connect/disconnect lifecycle.
func (s *Store) SetOnline(ctx context.Context, userID int64, online bool) error {
	if _, err := s.pool.Exec(ctx, `UPDATE users SET online = $1 WHERE user_id = $2`, online, userID); err != nil {
		return fmt.Errorf("failed to update online status: %w", err)
	}

	return nil
}
