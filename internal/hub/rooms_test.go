package hub_test

import (
	"context"
	"errors"
	"testing"

	"chathub/internal/hub"
	"chathub/internal/models"
)

func TestJoinChatEvictsPreviousConversation(t *testing.T) {
	h, _, _ := newTestHub()

	conn := connect(t, h, "conn-1", "u1")
	connect(t, h, "conn-2", "u2")

	if err := h.JoinChat("conn-1", "chat-x"); err != nil {
		t.Fatalf("join chat-x: %v", err)
	}
	if err := h.JoinChat("conn-1", "chat-y"); err != nil {
		t.Fatalf("join chat-y: %v", err)
	}

	// A relay into chat-x must no longer reach the connection, a relay into
	// chat-y must.
	h.Relay("conn-2", models.EventTyping, "chat-x")
	if conn.count(models.EventTyping) != 0 {
		t.Error("connection still receives traffic from the evicted room")
	}
	h.Relay("conn-2", models.EventTyping, "chat-y")
	if conn.count(models.EventTyping) != 1 {
		t.Error("connection does not receive traffic from the joined room")
	}

	// The personal room survives the eviction.
	h.CallUser(models.CallPayload{To: "u1", From: "u2", CallType: "video"})
	if conn.count(models.EventIncomingCall) != 1 {
		t.Error("personal room membership was lost on conversation switch")
	}
}

func TestJoinChatRequiresBoundIdentity(t *testing.T) {
	h, _, _ := newTestHub()

	conn := &fakeConn{}
	h.Register("conn-1", conn)

	if err := h.JoinChat("conn-1", "chat-x"); !errors.Is(err, hub.ErrUnbound) {
		t.Errorf("expected ErrUnbound, got %v", err)
	}
}

func TestJoinChatWithoutIDFails(t *testing.T) {
	h, _, _ := newTestHub()
	connect(t, h, "conn-1", "u1")

	if err := h.JoinChat("conn-1", ""); !errors.Is(err, hub.ErrMissingChatID) {
		t.Errorf("expected ErrMissingChatID, got %v", err)
	}
}

func TestSetupRejectsConflictingRebind(t *testing.T) {
	h, _, _ := newTestHub()
	connect(t, h, "conn-1", "u1")

	err := h.Setup(context.Background(), "conn-1", models.SetupPayload{ID: "u2", Name: "u2"})
	if !errors.Is(err, hub.ErrAlreadyBound) {
		t.Errorf("expected ErrAlreadyBound, got %v", err)
	}
	if h.IsOnline("u2") {
		t.Error("failed rebind must not mark the new identity online")
	}
}

func TestLeaveChatStopsRoomTraffic(t *testing.T) {
	h, _, _ := newTestHub()

	conn := connect(t, h, "conn-1", "u1")
	connect(t, h, "conn-2", "u2")

	if err := h.JoinChat("conn-1", "chat-x"); err != nil {
		t.Fatalf("join: %v", err)
	}
	h.LeaveChat("conn-1", "chat-x")

	h.Relay("conn-2", models.EventTyping, "chat-x")
	if conn.count(models.EventTyping) != 0 {
		t.Error("connection receives traffic from a room it left")
	}
}

func TestLeaveChatNotAMemberIsNoop(t *testing.T) {
	h, _, _ := newTestHub()
	connect(t, h, "conn-1", "u1")

	// Must not panic or disturb other membership.
	h.LeaveChat("conn-1", "chat-never-joined")
	h.LeaveChat("conn-gone", "chat-x")
}

func TestOperationsAfterTeardownAreNoops(t *testing.T) {
	h, _, _ := newTestHub()

	connect(t, h, "conn-1", "u1")
	h.Teardown("conn-1")

	// In-flight handlers may still reference the dead connection id.
	if err := h.JoinChat("conn-1", "chat-x"); err != nil {
		t.Errorf("join on torn-down connection should be a no-op, got %v", err)
	}
	h.LeaveChat("conn-1", "chat-x")
	h.Relay("conn-1", models.EventTyping, "chat-x")
}
