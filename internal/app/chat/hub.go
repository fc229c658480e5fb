/*
Package chat contains the core logic of the real-time direct-message relay.

This file defines the Hub, the single serialization point for the shared
mutable state of the process: room membership and the presence registry.
Rooms are implicit; one exists exactly as long as at least one connection is
joined to it.
*/
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"echohub/internal/app/message"
	"echohub/internal/pkg/logx"
)

// statusWriteTimeout bounds the best-effort online-flag writes to the database.
const statusWriteTimeout = 5 * time.Second

// MessageStore is the durable log the broker persists through before any
// broadcast. Implemented by message.Store; faked in tests.
type MessageStore interface {
	Append(ctx context.Context, fromID, toID int64, text string) (message.Message, error)
	Range(ctx context.Context, userA, userB int64) ([]message.Message, error)
}

// StatusStore mirrors presence changes into durable user state so
// collaborators outside this process can read online status. Optional.
type StatusStore interface {
	SetOnline(ctx context.Context, userID int64, online bool) error
}

// Hub owns room membership and presence for all connections of the process.
// Access to both is serialized under a single mutex: one writer per key, no
// bare maps escape.
type Hub struct {
	mu sync.RWMutex

	// rooms maps a room id to the set of connections currently joined.
	// Empty rooms are deleted immediately; absence is non-existence.
	rooms map[string]map[*Client]struct{}

	// presence is the user id to connection registry.
	presence *Presence

	// store persists messages; consulted by the client event handlers.
	store MessageStore

	// status receives best-effort online-flag writes. May be nil.
	status StatusStore

	logger zerolog.Logger
}

// NewHub constructs a Hub. status may be nil when durable presence
// mirroring is not wanted (tests, tools).
func NewHub(store MessageStore, status StatusStore) *Hub {
	return &Hub{
		rooms:    make(map[string]map[*Client]struct{}),
		presence: NewPresence(),
		store:    store,
		status:   status,
		logger:   logx.Logger().With().Str("component", "hub").Logger(),
	}
}

// Register records the client as its user's live connection. A previous
// connection from the same user is evicted from its room in the same
// critical section, so no broadcast can reach it after this returns; its
// later teardown will not disturb this registration.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	replaced := h.presence.set(c.userID, c)
	if replaced != nil && replaced.room != "" {
		h.removeFromRoom(replaced, replaced.room)
	}
	h.mu.Unlock()

	if replaced != nil {
		h.logger.Warn().
			Int64("user_id", c.userID).
			Msg("User already connected. Kicking old connection for replacement.")

		replaced.Kick("Session replaced by new connection.")
	}

	h.writeOnlineStatus(c.userID, true)

	h.logger.Info().Int64("user_id", c.userID).Msg("Client registered.")
}

// Unregister tears down the client's room membership and presence entry.
// Called exactly once from the read pump's cleanup path, which covers both
// orderly closes and abrupt network drops.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()

	if c.room != "" {
		h.removeFromRoom(c, c.room)
	}

	owned := h.presence.remove(c.userID, c)

	h.mu.Unlock()

	c.closeSend()

	if owned {
		h.writeOnlineStatus(c.userID, false)
	}

	h.logger.Info().
		Int64("user_id", c.userID).
		Bool("presence_cleared", owned).
		Msg("Client unregistered.")
}

// Join places the client into the room, leaving any previously joined room
// first. A connection is a member of at most one room at a time.
func (h *Hub) Join(c *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.room == roomID {
		return
	}

	if c.room != "" {
		h.removeFromRoom(c, c.room)
	}

	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[roomID] = members
	}
	members[c] = struct{}{}
	c.room = roomID

	h.logger.Info().
		Int64("user_id", c.userID).
		Str("room_id", roomID).
		Int("members", len(members)).
		Msg("Client joined room.")
}

// Leave removes the client from the room. Idempotent: leaving a room the
// client is not in is a no-op.
func (h *Hub) Leave(c *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.room != roomID {
		return
	}

	h.removeFromRoom(c, roomID)

	h.logger.Info().
		Int64("user_id", c.userID).
		Str("room_id", roomID).
		Msg("Client left room.")
}

// removeFromRoom deletes the membership and garbage-collects the empty room.
// Caller holds h.mu.
func (h *Hub) removeFromRoom(c *Client, roomID string) {
	if members, ok := h.rooms[roomID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	c.room = ""
}

// Broadcast queues the frame to every connection currently joined to the
// room, including the sender. A member with a full send queue is skipped;
// its own pump teardown handles the dead connection.
func (h *Hub) Broadcast(roomID string, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for member := range h.rooms[roomID] {
		select {
		case member.send <- frame:
		default:
			h.logger.Warn().
				Int64("user_id", member.userID).
				Str("room_id", roomID).
				Msg("Member send channel full, dropping frame.")
		}
	}
}

// IsOnline reports whether the user currently holds a live connection.
// Queried by the CRUD surface to annotate directory and friend listings.
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.presence.isOnline(userID)
}

// Shutdown kicks every live connection. Used during graceful server stop.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	clients := h.presence.clients()
	h.mu.RUnlock()

	for _, c := range clients {
		c.Kick("Server shutting down.")
	}

	h.logger.Info().Int("clients", len(clients)).Msg("Hub shutdown complete.")
}

// writeOnlineStatus mirrors a presence change into the user store.
// Best-effort: failures are logged, never propagated into the relay.
func (h *Hub) writeOnlineStatus(userID int64, online bool) {
	if h.status == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), statusWriteTimeout)
		defer cancel()

		if err := h.status.SetOnline(ctx, userID, online); err != nil {
			h.logger.Error().
				Err(err).
				Int64("user_id", userID).
				Bool("online", online).
				Msg("Failed to persist online status.")
		}
	}()
}
