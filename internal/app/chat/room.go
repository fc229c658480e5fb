/*
Package chat contains the core logic of the real-time direct-message relay:
room identity, connection lifecycle, presence tracking, and message fan-out.

This file defines the canonical room identity for a user pair. A room is
ephemeral: it exists only as the set of connections currently joined to it,
and the encoding here is the single place room ids are produced or decoded.
*/
package chat

import (
	"fmt"
	"strconv"
	"strings"
)

// roomIDSeparator joins the two user ids of a pair into a room id.
const roomIDSeparator = "_"

// RoomID derives the canonical room identifier for a user pair.
// It is order-independent: RoomID(a, b) == RoomID(b, a) for all ids,
// with the smaller id always first.
func RoomID(userA, userB int64) string {
	if userA > userB {
		userA, userB = userB, userA
	}

	return strconv.FormatInt(userA, 10) + roomIDSeparator + strconv.FormatInt(userB, 10)
}

// ParseRoomID decodes a room id back into its user pair.
// It rejects malformed ids, non-positive ids, and self-pairs. The returned
// pair preserves the encoded order; callers treat it as unordered.
func ParseRoomID(roomID string) (int64, int64, error) {
	first, second, found := strings.Cut(roomID, roomIDSeparator)
	if !found {
		return 0, 0, fmt.Errorf("malformed room id %q", roomID)
	}

	userA, err := strconv.ParseInt(first, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed room id %q: %w", roomID, err)
	}

	userB, err := strconv.ParseInt(second, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed room id %q: %w", roomID, err)
	}

	if userA <= 0 || userB <= 0 {
		return 0, 0, fmt.Errorf("room id %q contains non-positive user id", roomID)
	}

	if userA == userB {
		return 0, 0, fmt.Errorf("room id %q is a self-pair", roomID)
	}

	return userA, userB, nil
}

// Counterpart returns the other participant of the room for the given user,
// or an error if the user is not one of the encoded pair.
func Counterpart(roomID string, userID int64) (int64, error) {
	userA, userB, err := ParseRoomID(roomID)
	if err != nil {
		return 0, err
	}

	switch userID {
	case userA:
		return userB, nil
	case userB:
		return userA, nil
	default:
		return 0, fmt.Errorf("user %d is not a participant of room %q", userID, roomID)
	}
}
