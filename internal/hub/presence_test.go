package hub_test

import (
	"context"
	"testing"

	"chathub/internal/models"
)

func TestSetupMarksUserOnline(t *testing.T) {
	h, _, _ := newTestHub()

	conn := connect(t, h, "conn-1", "u1")

	if !h.IsOnline("u1") {
		t.Error("expected u1 to be online after setup")
	}
	if !contains(h.OnlineUsers(), "u1") {
		t.Error("expected u1 in online users snapshot")
	}
	if conn.count(models.EventConnected) != 1 {
		t.Errorf("expected one connected event, got %d", conn.count(models.EventConnected))
	}
	if conn.count(models.EventOnlineUsers) == 0 {
		t.Error("expected online users broadcast after setup")
	}
}

func TestRepeatedSetupIsIdempotent(t *testing.T) {
	h, _, _ := newTestHub()

	conn := connect(t, h, "conn-1", "u1")
	before := conn.count(models.EventOnlineUsers)

	// Rebinding the same identity must not change the online set again.
	if err := h.Setup(context.Background(), "conn-1", models.SetupPayload{ID: "u1", Name: "u1"}); err != nil {
		t.Fatalf("repeat setup: %v", err)
	}

	if got := conn.count(models.EventOnlineUsers); got != before {
		t.Errorf("repeat setup broadcast presence again: %d -> %d", before, got)
	}
	if len(h.OnlineUsers()) != 1 {
		t.Errorf("expected one online user, got %v", h.OnlineUsers())
	}
}

func TestTeardownWithRemainingConnections(t *testing.T) {
	h, _, _ := newTestHub()

	connect(t, h, "conn-1", "u1")
	connect(t, h, "conn-2", "u1")

	h.Teardown("conn-1")
	if !h.IsOnline("u1") {
		t.Error("u1 should stay online while a second connection remains")
	}

	h.Teardown("conn-2")
	if h.IsOnline("u1") {
		t.Error("u1 should be offline after the last connection is torn down")
	}
	if len(h.OnlineUsers()) != 0 {
		t.Errorf("expected empty online set, got %v", h.OnlineUsers())
	}
}

func TestTeardownUnknownConnectionIsNoop(t *testing.T) {
	h, _, _ := newTestHub()

	connect(t, h, "conn-1", "u1")
	h.Teardown("never-registered")

	if !h.IsOnline("u1") {
		t.Error("tearing down an unknown connection must not affect presence")
	}
}

func TestRepeatedTeardownIsIdempotent(t *testing.T) {
	h, _, _ := newTestHub()

	other := connect(t, h, "conn-2", "u2")
	connect(t, h, "conn-1", "u1")

	h.Teardown("conn-1")
	before := other.count(models.EventOnlineUsers)
	h.Teardown("conn-1")

	if got := other.count(models.EventOnlineUsers); got != before {
		t.Errorf("second teardown broadcast presence again: %d -> %d", before, got)
	}
}

func TestPresenceBroadcastReachesAllConnections(t *testing.T) {
	h, _, _ := newTestHub()

	first := connect(t, h, "conn-1", "u1")
	connect(t, h, "conn-2", "u2")

	// conn-1 sees the snapshot broadcast triggered by u2 coming online.
	events := first.named(models.EventOnlineUsers)
	if len(events) < 2 {
		t.Fatalf("expected at least two online users broadcasts, got %d", len(events))
	}
	last := events[len(events)-1].Data.([]string)
	if !contains(last, "u1") || !contains(last, "u2") {
		t.Errorf("final snapshot should list both users, got %v", last)
	}
}
