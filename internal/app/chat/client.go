/*
Package chat contains the core logic of the real-time direct-message relay.

This file defines the Client struct, representing one authenticated WebSocket
session. It manages the connection lifecycle, the read/write pumps, and the
broker contract for the inbound events: joinRoom, leaveRoom, sendMessage,
and getPastMessages.
*/
package chat

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"echohub/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192

	// MaxTextBytes is the maximum allowed size (in bytes) of a message body.
	MaxTextBytes = 5000

	// WsCloseCodeSessionKicked is a custom WebSocket Close Code (4000-4999 range)
	// used to signal the client that the session was replaced by a new connection.
	WsCloseCodeSessionKicked = 4001
)

// Client represents one authenticated real-time session. The associated user
// id is set at handshake time by the gatekeeper and is immutable for the
// session's lifetime.
type Client struct {
	// hub serializes room membership and presence for all connections.
	hub *Hub

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// userID is the identity resolved from the handshake token.
	userID int64

	// room is the current room membership, at most one. Guarded by hub.mu.
	room string

	// send queues frames waiting to be written to the connection.
	send chan []byte

	// ctx is cancelled on disconnect; in-flight store calls observe it.
	ctx    context.Context
	cancel context.CancelFunc

	// sendClose guards the single close of the send channel.
	sendClose sync.Once

	// structured logger with client context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an already-authenticated connection.
func NewClient(hub *Hub, wsConn *websocket.Conn, userID int64) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	clientLogger := logx.Logger().With().
		Int64("user_id", userID).
		Logger()

	return &Client{
		hub:    hub,
		conn:   wsConn,
		userID: userID,
		send:   make(chan []byte, 256),
		ctx:    ctx,
		cancel: cancel,
		logger: clientLogger,
	}
}

// UserID returns the identity attached at handshake time.
func (c *Client) UserID() int64 {
	return c.userID
}

// ReadPump reads frames from the WebSocket connection and dispatches them to
// the event handlers. Events of one connection are processed in arrival
// order; the pump performs the full cleanup when the connection ends,
// whether orderly or abrupt.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		c.handleInbound(frame)
	}
}

// cleanupOnDisconnect runs the teardown when the read pump terminates.
// This is the single place presence and room membership are guaranteed to be
// cleared, including on abrupt network drops.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.cancel()
	c.hub.Unregister(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// handleInbound decodes one frame and dispatches it to its event handler.
// A frame that fails validation is dropped and logged; it never disturbs
// other connections.
func (c *Client) handleInbound(frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON frame")
		return
	}

	switch env.Event {
	case EventJoinRoom:
		c.handleJoinRoom(env.Payload)

	case EventLeaveRoom:
		c.handleLeaveRoom(env.Payload)

	case EventSendMessage:
		c.handleSendMessage(env.Payload)

	case EventGetPastMessages:
		c.handleGetPastMessages(env.Payload)

	default:
		c.logger.Warn().Str("event", env.Event).Msg("Client sent unsupported event")
	}
}

// handleJoinRoom validates the pair encoded in the room id and joins the
// room, leaving any prior one.
func (c *Client) handleJoinRoom(payload json.RawMessage) {
	roomID, ok := c.decodeRoomPayload(EventJoinRoom, payload)
	if !ok {
		return
	}

	if _, err := Counterpart(roomID, c.userID); err != nil {
		c.logger.Warn().Err(err).Str("room_id", roomID).Msg("joinRoom rejected")
		return
	}

	c.hub.Join(c, roomID)
}

// handleLeaveRoom removes the room membership. Leaving a room the client is
// not in is a no-op.
func (c *Client) handleLeaveRoom(payload json.RawMessage) {
	roomID, ok := c.decodeRoomPayload(EventLeaveRoom, payload)
	if !ok {
		return
	}

	c.hub.Leave(c, roomID)
}

// handleSendMessage validates, persists, and broadcasts one message.
// Validation failures drop the event silently (logged server-side). The
// message is durably persisted before any broadcast, so delivery order per
// room always matches commit order. On persistence failure only the sender
// is told, via messageSaveError; nothing is broadcast.
func (c *Client) handleSendMessage(payload json.RawMessage) {
	var input SendMessagePayload
	if err := json.Unmarshal(payload, &input); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid sendMessage payload")
		return
	}

	text := strings.TrimSpace(input.Text)
	if input.RoomID == "" || text == "" {
		c.logger.Warn().Str("room_id", input.RoomID).Msg("sendMessage dropped: missing roomId or empty text")
		return
	}

	if len(text) > MaxTextBytes {
		c.logger.Warn().Int("text_bytes", len(text)).Msg("sendMessage dropped: text too long")
		return
	}

	toUserID, err := Counterpart(input.RoomID, c.userID)
	if err != nil {
		c.logger.Warn().Err(err).Str("room_id", input.RoomID).Msg("sendMessage dropped: bad room id")
		return
	}

	persisted, err := c.hub.store.Append(c.ctx, c.userID, toUserID, text)
	if err != nil {
		c.logger.Error().Err(err).Str("room_id", input.RoomID).Msg("Failed to persist message")
		c.sendEvent(EventMessageSaveError, ErrorPayload{Message: "Failed to save message."})
		return
	}

	frame, err := marshalEvent(EventReceiveMessage, persisted)
	if err != nil {
		c.logger.Error().Err(err).Int64("message_id", persisted.ID).Msg("Failed to marshal receiveMessage frame")
		return
	}

	c.hub.Broadcast(input.RoomID, frame)
}

// handleGetPastMessages returns the ordered conversation snapshot to the
// requesting connection only.
func (c *Client) handleGetPastMessages(payload json.RawMessage) {
	roomID, ok := c.decodeRoomPayload(EventGetPastMessages, payload)
	if !ok {
		return
	}

	toUserID, err := Counterpart(roomID, c.userID)
	if err != nil {
		c.logger.Warn().Err(err).Str("room_id", roomID).Msg("getPastMessages dropped: bad room id")
		return
	}

	messages, err := c.hub.store.Range(c.ctx, c.userID, toUserID)
	if err != nil {
		c.logger.Error().Err(err).Str("room_id", roomID).Msg("Failed to fetch past messages")
		c.sendEvent(EventMessageFetchError, ErrorPayload{Message: "Failed to fetch past messages."})
		return
	}

	c.sendEvent(EventPastMessages, messages)
}

// decodeRoomPayload extracts a non-empty roomId from an event payload.
func (c *Client) decodeRoomPayload(event string, payload json.RawMessage) (string, bool) {
	var input RoomPayload
	if err := json.Unmarshal(payload, &input); err != nil {
		c.logger.Warn().Err(err).Str("event", event).Msg("Client sent invalid room payload")
		return "", false
	}

	if input.RoomID == "" {
		c.logger.Warn().Str("event", event).Msg("Event dropped: missing roomId")
		return "", false
	}

	return input.RoomID, true
}

// sendEvent marshals the event and queues it on the client's send channel.
func (c *Client) sendEvent(event string, payload any) {
	frame, err := marshalEvent(event, payload)
	if err != nil {
		c.logger.Error().Err(err).Str("event", event).Msg("Failed to marshal outbound event")
		return
	}

	select {
	case c.send <- frame:
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Str("event", event).Msg("Client send channel full, dropping event")
	}
}

// WritePump writes queued frames to the WebSocket connection and keeps the
// heartbeat alive.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send channel.
// Returns false when the write pump should terminate.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePingMessage sends a periodic Ping to maintain the heartbeat.
// Returns false when the write pump should terminate.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// Kick requests teardown of the session: it cancels the client's context
// and closes the socket with a custom Close Frame (code 4001) indicating
// that the session was superseded. The close frame goes out via
// WriteControl, which is safe alongside a concurrent write pump. The read
// pump observes the closed socket and runs the full unregister; the send
// channel stays open until then, so in-flight sends never hit a closed
// channel.
func (c *Client) Kick(reason string) {
	c.logger.Warn().
		Int("close_code", WsCloseCodeSessionKicked).
		Str("reason", reason).
		Msg("Sending WS kick message and closing connection.")

	c.cancel()

	if c.conn != nil {
		closeMessage := websocket.FormatCloseMessage(WsCloseCodeSessionKicked, reason)

		if err := c.conn.WriteControl(websocket.CloseMessage, closeMessage, time.Now().Add(writeWait)); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to send WS 4001 close message.")
		}

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error on kick")
		}
	}
}

// closeSend closes the send channel exactly once, ending the write pump.
func (c *Client) closeSend() {
	c.sendClose.Do(func() {
		close(c.send)
	})
}
