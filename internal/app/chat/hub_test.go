package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"echohub/internal/app/message"
)

// fakeMessageStore is an in-memory MessageStore with injectable failures.
type fakeMessageStore struct {
	messages  []message.Message
	nextID    int64
	appendErr error
	rangeErr  error
}

func (f *fakeMessageStore) Append(_ context.Context, fromID, toID int64, text string) (message.Message, error) {
	if f.appendErr != nil {
		return message.Message{}, f.appendErr
	}

	f.nextID++
	msg := message.Message{
		ID:         f.nextID,
		FromUserID: fromID,
		ToUserID:   toID,
		Text:       text,
		Timestamp:  time.Now(),
	}
	f.messages = append(f.messages, msg)

	return msg, nil
}

func (f *fakeMessageStore) Range(_ context.Context, userA, userB int64) ([]message.Message, error) {
	if f.rangeErr != nil {
		return nil, f.rangeErr
	}

	var out []message.Message
	for _, msg := range f.messages {
		if (msg.FromUserID == userA && msg.ToUserID == userB) ||
			(msg.FromUserID == userB && msg.ToUserID == userA) {
			out = append(out, msg)
		}
	}

	return out, nil
}

func newTestClient(hub *Hub, userID int64) *Client {
	c := NewClient(hub, nil, userID)
	hub.Register(c)
	return c
}

// inbound feeds one event frame through the client's dispatch path, the way
// the read pump would.
func inbound(t *testing.T, c *Client, event string, payload any) {
	t.Helper()

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	frame, err := json.Marshal(Envelope{Event: event, Payload: payloadBytes})
	if err != nil {
		t.Fatalf("failed to marshal envelope: %v", err)
	}

	c.handleInbound(frame)
}

// mustFrame pops the next queued outbound frame and checks its event name.
func mustFrame(t *testing.T, c *Client, wantEvent string) json.RawMessage {
	t.Helper()

	select {
	case frame := <-c.send:
		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("outbound frame is not a valid envelope: %v", err)
		}
		if env.Event != wantEvent {
			t.Fatalf("outbound event = %q, want %q", env.Event, wantEvent)
		}
		return env.Payload
	default:
		t.Fatalf("no outbound frame queued, want %q", wantEvent)
		return nil
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()

	select {
	case frame := <-c.send:
		t.Fatalf("unexpected outbound frame: %s", frame)
	default:
	}
}

func TestSendMessageBroadcastsToBothMembers(t *testing.T) {
	store := &fakeMessageStore{}
	hub := NewHub(store, nil)

	alice := newTestClient(hub, 7)
	bob := newTestClient(hub, 12)

	roomID := RoomID(7, 12)
	inbound(t, alice, EventJoinRoom, RoomPayload{RoomID: roomID})
	inbound(t, bob, EventJoinRoom, RoomPayload{RoomID: roomID})

	inbound(t, alice, EventSendMessage, SendMessagePayload{RoomID: roomID, Text: "  hello  "})

	if len(store.messages) != 1 {
		t.Fatalf("persisted %d messages, want 1", len(store.messages))
	}

	for _, member := range []*Client{alice, bob} {
		payload := mustFrame(t, member, EventReceiveMessage)

		var msg message.Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("receiveMessage payload did not decode: %v", err)
		}

		if msg.ID != store.messages[0].ID {
			t.Errorf("broadcast carries id %d, want persisted id %d", msg.ID, store.messages[0].ID)
		}
		if msg.Text != "hello" {
			t.Errorf("broadcast text = %q, want trimmed %q", msg.Text, "hello")
		}
		if msg.FromUserID != 7 || msg.ToUserID != 12 {
			t.Errorf("broadcast pair = (%d, %d), want (7, 12)", msg.FromUserID, msg.ToUserID)
		}
	}
}

func TestSendMessageValidationDropsSilently(t *testing.T) {
	store := &fakeMessageStore{}
	hub := NewHub(store, nil)

	alice := newTestClient(hub, 7)
	roomID := RoomID(7, 12)
	inbound(t, alice, EventJoinRoom, RoomPayload{RoomID: roomID})

	// Whitespace-only text.
	inbound(t, alice, EventSendMessage, SendMessagePayload{RoomID: roomID, Text: "   \n\t "})

	// Missing room id.
	inbound(t, alice, EventSendMessage, SendMessagePayload{Text: "hello"})

	// Oversized text.
	big := make([]byte, MaxTextBytes+1)
	for i := range big {
		big[i] = 'a'
	}
	inbound(t, alice, EventSendMessage, SendMessagePayload{RoomID: roomID, Text: string(big)})

	// Room the sender is not a participant of.
	inbound(t, alice, EventSendMessage, SendMessagePayload{RoomID: RoomID(3, 4), Text: "hello"})

	// Malformed room id.
	inbound(t, alice, EventSendMessage, SendMessagePayload{RoomID: "not_a_room!", Text: "hello"})

	if len(store.messages) != 0 {
		t.Fatalf("persisted %d messages, want 0", len(store.messages))
	}
	assertNoFrame(t, alice)
}

func TestSendMessagePersistFailureTellsSenderOnly(t *testing.T) {
	store := &fakeMessageStore{appendErr: errors.New("db down")}
	hub := NewHub(store, nil)

	alice := newTestClient(hub, 7)
	bob := newTestClient(hub, 12)

	roomID := RoomID(7, 12)
	inbound(t, alice, EventJoinRoom, RoomPayload{RoomID: roomID})
	inbound(t, bob, EventJoinRoom, RoomPayload{RoomID: roomID})

	inbound(t, alice, EventSendMessage, SendMessagePayload{RoomID: roomID, Text: "hello"})

	payload := mustFrame(t, alice, EventMessageSaveError)
	var errPayload ErrorPayload
	if err := json.Unmarshal(payload, &errPayload); err != nil {
		t.Fatalf("messageSaveError payload did not decode: %v", err)
	}
	if errPayload.Message == "" {
		t.Fatal("messageSaveError payload carries no message")
	}

	assertNoFrame(t, bob)
}

func TestJoinSecondRoomLeavesFirst(t *testing.T) {
	store := &fakeMessageStore{}
	hub := NewHub(store, nil)

	alice := newTestClient(hub, 7)
	bob := newTestClient(hub, 12)
	carol := newTestClient(hub, 20)

	firstRoom := RoomID(7, 12)
	secondRoom := RoomID(7, 20)

	inbound(t, alice, EventJoinRoom, RoomPayload{RoomID: firstRoom})
	inbound(t, bob, EventJoinRoom, RoomPayload{RoomID: firstRoom})
	inbound(t, carol, EventJoinRoom, RoomPayload{RoomID: secondRoom})

	// Alice switches conversations.
	inbound(t, alice, EventJoinRoom, RoomPayload{RoomID: secondRoom})

	// Bob talks into the first room; Alice must not hear it.
	inbound(t, bob, EventSendMessage, SendMessagePayload{RoomID: firstRoom, Text: "still there?"})
	mustFrame(t, bob, EventReceiveMessage)
	assertNoFrame(t, alice)

	// The second room reaches both Alice and Carol.
	inbound(t, carol, EventSendMessage, SendMessagePayload{RoomID: secondRoom, Text: "hi"})
	mustFrame(t, alice, EventReceiveMessage)
	mustFrame(t, carol, EventReceiveMessage)
}

func TestJoinRejectsRoomsTheUserIsNotPartOf(t *testing.T) {
	hub := NewHub(&fakeMessageStore{}, nil)

	alice := newTestClient(hub, 7)

	inbound(t, alice, EventJoinRoom, RoomPayload{RoomID: RoomID(3, 4)})

	hub.mu.RLock()
	room := alice.room
	hub.mu.RUnlock()

	if room != "" {
		t.Fatalf("client joined room %q it is not a participant of", room)
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	hub := NewHub(&fakeMessageStore{}, nil)

	alice := newTestClient(hub, 7)
	roomID := RoomID(7, 12)

	// Leaving before ever joining is a no-op.
	inbound(t, alice, EventLeaveRoom, RoomPayload{RoomID: roomID})

	inbound(t, alice, EventJoinRoom, RoomPayload{RoomID: roomID})
	inbound(t, alice, EventLeaveRoom, RoomPayload{RoomID: roomID})
	inbound(t, alice, EventLeaveRoom, RoomPayload{RoomID: roomID})

	hub.mu.RLock()
	_, roomExists := hub.rooms[roomID]
	hub.mu.RUnlock()

	if roomExists {
		t.Fatal("empty room was not garbage-collected")
	}
}

func TestGetPastMessagesReturnsOrderedSnapshot(t *testing.T) {
	store := &fakeMessageStore{}
	hub := NewHub(store, nil)

	alice := newTestClient(hub, 7)
	bob := newTestClient(hub, 12)

	roomID := RoomID(7, 12)
	inbound(t, alice, EventJoinRoom, RoomPayload{RoomID: roomID})
	inbound(t, bob, EventJoinRoom, RoomPayload{RoomID: roomID})

	for i := 0; i < 3; i++ {
		inbound(t, alice, EventSendMessage, SendMessagePayload{RoomID: roomID, Text: fmt.Sprintf("msg %d", i)})
		mustFrame(t, alice, EventReceiveMessage)
		mustFrame(t, bob, EventReceiveMessage)
	}

	inbound(t, bob, EventGetPastMessages, RoomPayload{RoomID: roomID})

	payload := mustFrame(t, bob, EventPastMessages)
	var history []message.Message
	if err := json.Unmarshal(payload, &history); err != nil {
		t.Fatalf("pastMessages payload did not decode: %v", err)
	}

	if len(history) != 3 {
		t.Fatalf("history has %d messages, want 3", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].ID <= history[i-1].ID {
			t.Fatalf("history out of order at index %d: %d <= %d", i, history[i].ID, history[i-1].ID)
		}
	}

	// The snapshot goes to the requester only.
	assertNoFrame(t, alice)
}

func TestGetPastMessagesFetchFailure(t *testing.T) {
	store := &fakeMessageStore{rangeErr: errors.New("db down")}
	hub := NewHub(store, nil)

	alice := newTestClient(hub, 7)
	inbound(t, alice, EventGetPastMessages, RoomPayload{RoomID: RoomID(7, 12)})

	mustFrame(t, alice, EventMessageFetchError)
}

func TestUnregisterClearsPresenceAndRoom(t *testing.T) {
	hub := NewHub(&fakeMessageStore{}, nil)

	alice := newTestClient(hub, 7)
	roomID := RoomID(7, 12)
	inbound(t, alice, EventJoinRoom, RoomPayload{RoomID: roomID})

	if !hub.IsOnline(7) {
		t.Fatal("registered user reported offline")
	}

	hub.Unregister(alice)

	if hub.IsOnline(7) {
		t.Fatal("unregistered user still reported online")
	}

	hub.mu.RLock()
	_, roomExists := hub.rooms[roomID]
	hub.mu.RUnlock()
	if roomExists {
		t.Fatal("room membership survived unregister")
	}
}

func TestSecondConnectionSupersedesFirst(t *testing.T) {
	hub := NewHub(&fakeMessageStore{}, nil)

	first := newTestClient(hub, 7)
	second := newTestClient(hub, 7)

	// The kick cancels the superseded connection's context.
	select {
	case <-first.ctx.Done():
	default:
		t.Fatal("superseded connection's context was not cancelled")
	}

	if !hub.IsOnline(7) {
		t.Fatal("user reported offline while second connection is live")
	}

	// The late teardown of the superseded connection must not clear the
	// presence entry now owned by the new one.
	hub.Unregister(first)
	if !hub.IsOnline(7) {
		t.Fatal("stale teardown cleared the fresh connection's presence")
	}

	hub.Unregister(second)
	if hub.IsOnline(7) {
		t.Fatal("user still online after the live connection unregistered")
	}
}

func TestBroadcastDuringSessionReplacement(t *testing.T) {
	store := &fakeMessageStore{}
	hub := NewHub(store, nil)

	first := newTestClient(hub, 7)
	bob := newTestClient(hub, 12)

	roomID := RoomID(7, 12)
	inbound(t, first, EventJoinRoom, RoomPayload{RoomID: roomID})
	inbound(t, bob, EventJoinRoom, RoomPayload{RoomID: roomID})

	// User 7 reconnects; the superseded connection has not torn down yet.
	second := newTestClient(hub, 7)

	// The counterpart talks into the room inside that window. The send must
	// reach Bob and leave the superseded connection untouched.
	inbound(t, bob, EventSendMessage, SendMessagePayload{RoomID: roomID, Text: "hello"})
	mustFrame(t, bob, EventReceiveMessage)
	assertNoFrame(t, first)

	// The superseded connection's own late send is harmless too.
	first.sendEvent(EventMessageSaveError, ErrorPayload{Message: "late"})

	// Its late teardown must not disturb the fresh connection.
	hub.Unregister(first)
	if !hub.IsOnline(7) {
		t.Fatal("stale teardown cleared the fresh connection's presence")
	}

	// The fresh connection joins and receives room traffic normally.
	inbound(t, second, EventJoinRoom, RoomPayload{RoomID: roomID})
	inbound(t, bob, EventSendMessage, SendMessagePayload{RoomID: roomID, Text: "there?"})
	mustFrame(t, second, EventReceiveMessage)
	mustFrame(t, bob, EventReceiveMessage)
}

func TestShutdownKicksAllClients(t *testing.T) {
	hub := NewHub(&fakeMessageStore{}, nil)

	alice := newTestClient(hub, 7)
	bob := newTestClient(hub, 12)

	hub.Shutdown()

	for _, c := range []*Client{alice, bob} {
		select {
		case <-c.ctx.Done():
		default:
			t.Fatal("client's context was not cancelled by shutdown")
		}
	}
}

func TestInvalidFramesAreDropped(t *testing.T) {
	store := &fakeMessageStore{}
	hub := NewHub(store, nil)

	alice := newTestClient(hub, 7)

	alice.handleInbound([]byte("not json"))
	alice.handleInbound([]byte(`{"event":"unknownEvent","payload":{}}`))
	alice.handleInbound([]byte(`{"event":"sendMessage","payload":"not an object"}`))
	alice.handleInbound([]byte(`{"event":"joinRoom","payload":{}}`))

	if len(store.messages) != 0 {
		t.Fatalf("persisted %d messages from invalid frames", len(store.messages))
	}
	assertNoFrame(t, alice)
}
