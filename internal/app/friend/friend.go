/*
Package friend implements the friend-request workflow: pending requests,
acceptance, rejection, and friendship removal.
*/
package friend

import "time"

// Request statuses stored in friend_requests.status.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
)

// Request is one row of the friend_requests table.
type Request struct {
	ID         int64     `json:"request_id"`
	FromUserID int64     `json:"from_user_id"`
	ToUserID   int64     `json:"to_user_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// PendingRequest is a pending request joined with both usernames for display.
type PendingRequest struct {
	ID           int64  `json:"request_id"`
	FromUserID   int64  `json:"from_user_id"`
	ToUserID     int64  `json:"to_user_id"`
	Status       string `json:"status"`
	FromUsername string `json:"from_username"`
	ToUsername   string `json:"to_username"`
}

// Friend is one entry of a user's friend list, annotated with live presence
// by the handler layer.
type Friend struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Online   bool   `json:"online"`
}
