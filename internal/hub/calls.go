package hub

import "chathub/internal/models"

// Call signaling is a stateless pass-through keyed by the target's personal
// room. No session tracking, no retry: an offline target simply never
// receives the event.

// CallUser relays a call invite to the target user.
func (h *Hub) CallUser(payload models.CallPayload) {
	h.rooms.broadcast(payload.To, models.EventIncomingCall, models.CallPayload{
		From:     payload.From,
		CallType: payload.CallType,
		RoomID:   payload.RoomID,
	}, "")
}

// AnswerCall relays call acceptance to payload.To.
func (h *Hub) AnswerCall(payload models.CallPayload) {
	h.rooms.broadcast(payload.To, models.EventCallAccepted, payload, "")
}

// DeclineCall relays call rejection to payload.To.
func (h *Hub) DeclineCall(payload models.CallPayload) {
	h.rooms.broadcast(payload.To, models.EventCallDeclined, payload, "")
}

// EndCall relays call termination to payload.To.
func (h *Hub) EndCall(payload models.CallPayload) {
	h.rooms.broadcast(payload.To, models.EventCallEnded, payload, "")
}
