/*
Package chat contains the core logic of the real-time direct-message relay.

This file defines the bidirectional event surface spoken over a WebSocket
connection: the JSON envelope and the payload structures of every event.
*/
package chat

import (
	"encoding/json"
	"fmt"
)

// Client-to-server events.
const (
	EventJoinRoom        = "joinRoom"
	EventLeaveRoom       = "leaveRoom"
	EventSendMessage     = "sendMessage"
	EventGetPastMessages = "getPastMessages"
)

// Server-to-client events.
const (
	EventReceiveMessage    = "receiveMessage"
	EventPastMessages      = "pastMessages"
	EventMessageSaveError  = "messageSaveError"
	EventMessageFetchError = "messageFetchError"
)

// Envelope is the wire frame for every event in both directions.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RoomPayload carries the room id of joinRoom, leaveRoom, and getPastMessages.
type RoomPayload struct {
	RoomID string `json:"roomId"`
}

// SendMessagePayload carries a sendMessage request.
type SendMessagePayload struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

// ErrorPayload carries messageSaveError and messageFetchError, sender-only.
type ErrorPayload struct {
	Message string `json:"message"`
}

// marshalEvent encodes an outbound event envelope with its payload.
func marshalEvent(event string, payload any) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}

	return json.Marshal(Envelope{
		Event:   event,
		Payload: payloadBytes,
	})
}
