package chat

import "testing"

func TestRoomIDOrderIndependent(t *testing.T) {
	if got := RoomID(7, 12); got != "7_12" {
		t.Fatalf("RoomID(7, 12) = %q, want %q", got, "7_12")
	}

	if RoomID(7, 12) != RoomID(12, 7) {
		t.Fatalf("RoomID is not order-independent: %q != %q", RoomID(7, 12), RoomID(12, 7))
	}
}

func TestParseRoomIDRoundTrip(t *testing.T) {
	userA, userB, err := ParseRoomID(RoomID(42, 3))
	if err != nil {
		t.Fatalf("ParseRoomID returned error: %v", err)
	}

	if userA != 3 || userB != 42 {
		t.Fatalf("ParseRoomID = (%d, %d), want (3, 42)", userA, userB)
	}
}

func TestParseRoomIDRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"7",
		"7_",
		"_12",
		"a_b",
		"7_12_9",
		"0_12",
		"-1_12",
		"7_7",
	}

	for _, roomID := range cases {
		if _, _, err := ParseRoomID(roomID); err == nil {
			t.Errorf("ParseRoomID(%q) accepted a malformed id", roomID)
		}
	}
}

func TestCounterpart(t *testing.T) {
	roomID := RoomID(7, 12)

	other, err := Counterpart(roomID, 7)
	if err != nil {
		t.Fatalf("Counterpart returned error: %v", err)
	}
	if other != 12 {
		t.Fatalf("Counterpart(%q, 7) = %d, want 12", roomID, other)
	}

	other, err = Counterpart(roomID, 12)
	if err != nil {
		t.Fatalf("Counterpart returned error: %v", err)
	}
	if other != 7 {
		t.Fatalf("Counterpart(%q, 12) = %d, want 7", roomID, other)
	}

	if _, err := Counterpart(roomID, 99); err == nil {
		t.Fatal("Counterpart accepted a non-participant")
	}
}
