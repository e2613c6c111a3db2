package hub_test

import (
	"testing"

	"chathub/internal/models"
)

func TestCallUserRelaysInvite(t *testing.T) {
	h, _, _ := newTestHub()

	callee := connect(t, h, "conn-1", "u5")
	connect(t, h, "conn-2", "u1")

	h.CallUser(models.CallPayload{To: "u5", From: "u1", CallType: "video", RoomID: "c9"})

	invites := callee.named(models.EventIncomingCall)
	if len(invites) != 1 {
		t.Fatalf("expected one incoming call, got %d", len(invites))
	}
	data := invites[0].Data.(models.CallPayload)
	if data.From != "u1" || data.CallType != "video" || data.RoomID != "c9" {
		t.Errorf("invite payload mangled: %+v", data)
	}
}

func TestCallOfflineUserIsFireAndForget(t *testing.T) {
	h, _, messages := newTestHub()

	caller := connect(t, h, "conn-1", "u1")

	// u5 has no connection: no error, no delivery record, nothing queued.
	h.CallUser(models.CallPayload{To: "u5", From: "u1", CallType: "video", RoomID: "c9"})

	if caller.count(models.EventError) != 0 {
		t.Error("calling an offline user must not surface an error")
	}
	if len(messages.delivered) != 0 || len(messages.missed) != 0 {
		t.Error("call signaling must not touch delivery state")
	}
}

func TestCallLifecycleRelays(t *testing.T) {
	h, _, _ := newTestHub()

	peer := connect(t, h, "conn-1", "u2")
	connect(t, h, "conn-2", "u1")

	tests := []struct {
		name  string
		relay func(models.CallPayload)
		event string
	}{
		{"answer", h.AnswerCall, models.EventCallAccepted},
		{"decline", h.DeclineCall, models.EventCallDeclined},
		{"end", h.EndCall, models.EventCallEnded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := models.CallPayload{To: "u2", From: "u1"}
			tt.relay(payload)

			events := peer.named(tt.event)
			if len(events) != 1 {
				t.Fatalf("expected one %s event, got %d", tt.event, len(events))
			}
			if data := events[0].Data.(models.CallPayload); data.To != "u2" || data.From != "u1" {
				t.Errorf("payload not passed through unchanged: %+v", data)
			}
		})
	}
}

func TestCallReachesAllConnectionsOfTarget(t *testing.T) {
	h, _, _ := newTestHub()

	tab1 := connect(t, h, "conn-1", "u2")
	tab2 := connect(t, h, "conn-2", "u2")
	connect(t, h, "conn-3", "u1")

	h.CallUser(models.CallPayload{To: "u2", From: "u1", CallType: "audio"})

	if tab1.count(models.EventIncomingCall) != 1 || tab2.count(models.EventIncomingCall) != 1 {
		t.Error("personal-room signaling must reach every connection of the target user")
	}
}
