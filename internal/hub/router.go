package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"chathub/internal/models"
	"chathub/internal/utils"
)

// Router dispatches inbound socket events to hub operations. Every handler
// runs under the same contract: a failure is caught, logged, and reported as
// an error event to the originating connection only; it never reaches other
// connections or the process.
type Router struct {
	hub *Hub
}

func NewRouter(h *Hub) *Router {
	return &Router{hub: h}
}

// HandleEvent processes one raw inbound frame from a connection.
func (r *Router) HandleEvent(ctx context.Context, connID string, raw []byte) {
	var env models.Envelope
	if err := utils.SafeJSONParse(raw, &env); err != nil {
		utils.LogError(err, "parse event frame")
		r.reportError(connID, "", err)
		return
	}

	if err := r.dispatch(ctx, connID, env); err != nil {
		utils.LogError(err, env.Event)
		r.reportError(connID, env.Event, err)
	}
}

func (r *Router) dispatch(ctx context.Context, connID string, env models.Envelope) (err error) {
	// A panicking handler must not take down the shared read loop.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler %q panicked: %v", env.Event, rec)
		}
	}()

	switch env.Event {
	case models.EventSetup:
		var payload models.SetupPayload
		if err := utils.SafeJSONParse(env.Data, &payload); err != nil {
			return err
		}
		return r.hub.Setup(ctx, connID, payload)

	case models.EventJoinChat:
		chatID, err := decodeRoomID(env.Data)
		if err != nil {
			return err
		}
		return r.hub.JoinChat(connID, chatID)

	case models.EventLeaveChat:
		chatID, err := decodeRoomID(env.Data)
		if err != nil {
			return err
		}
		r.hub.LeaveChat(connID, chatID)
		return nil

	case models.EventNewMessage:
		var payload models.MessagePayload
		if err := utils.SafeJSONParse(env.Data, &payload); err != nil {
			return ErrMissingChatID
		}
		return r.hub.Dispatch(ctx, connID, &payload)

	case models.EventTyping, models.EventStopTyping:
		roomID, err := decodeRoomID(env.Data)
		if err != nil {
			return err
		}
		r.hub.Relay(connID, env.Event, roomID)
		return nil

	case models.EventCallUser, models.EventAnswerCall, models.EventDeclineCall, models.EventEndCall:
		var payload models.CallPayload
		if err := utils.SafeJSONParse(env.Data, &payload); err != nil {
			return err
		}
		switch env.Event {
		case models.EventCallUser:
			r.hub.CallUser(payload)
		case models.EventAnswerCall:
			r.hub.AnswerCall(payload)
		case models.EventDeclineCall:
			r.hub.DeclineCall(payload)
		case models.EventEndCall:
			r.hub.EndCall(payload)
		}
		return nil

	default:
		log.Printf("unknown event: %s", env.Event)
		return nil
	}
}

// reportError emits the error event to the originating connection only.
func (r *Router) reportError(connID, event string, err error) {
	r.hub.rooms.emitTo(connID, models.EventError, models.ErrorPayload{
		Event:   event,
		Message: err.Error(),
	})
}

// decodeRoomID accepts a room id sent either as a bare JSON string or as an
// object with an _id field.
func decodeRoomID(data json.RawMessage) (string, error) {
	var roomID string
	if err := utils.SafeJSONParse(data, &roomID); err == nil {
		return roomID, nil
	}
	var obj struct {
		ID string `json:"_id"`
	}
	if err := utils.SafeJSONParse(data, &obj); err != nil || obj.ID == "" {
		return "", ErrMissingChatID
	}
	return obj.ID, nil
}
