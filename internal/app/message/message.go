/*
Package message implements the durable store for direct messages between user pairs.

A message is immutable once persisted. Its id and timestamp are assigned by
PostgreSQL at insert time, so the order returned by Range is consistent with
the order appends were committed for any single user pair.
*/
package message

import "time"

// Message is one persisted direct message. JSON field names match the wire
// format delivered to clients in receiveMessage and pastMessages events.
type Message struct {
	// ID is the monotonic identity assigned at persistence time.
	ID int64 `json:"message_id"`

	// FromUserID is the sender's user id.
	FromUserID int64 `json:"from_user_id"`

	// ToUserID is the recipient's user id.
	ToUserID int64 `json:"to_user_id"`

	// Text is the message body, non-empty after trimming.
	Text string `json:"message_text"`

	// Timestamp is the server-assigned commit time.
	Timestamp time.Time `json:"timestamp"`
}
