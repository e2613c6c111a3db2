package hub

import (
	"context"
	"fmt"
	"log"

	"chathub/internal/models"
	"chathub/internal/utils"
)

// Dispatch distributes one new message: it broadcasts to the conversation
// room, notifies each recipient's personal room, and records per-recipient
// delivery state against the message.
//
// The room broadcast always happens, even when the addressee set cannot be
// resolved, because it targets a room rather than named users. The presence
// check and the persistence write for each addressee are not atomic as a
// pair; presence changing mid-loop is an accepted race, reconciled when the
// affected user next reconnects.
func (h *Hub) Dispatch(ctx context.Context, connID string, payload *models.MessagePayload) error {
	chatID := payload.ResolveChatID()
	if chatID == "" {
		return ErrMissingChatID
	}

	h.rooms.broadcast(chatID, models.EventMessageReceived, payload, connID)

	members := payload.Members()
	if len(members) == 0 {
		chat, err := h.chats.FindByID(ctx, chatID)
		if err != nil {
			return fmt.Errorf("%w: chat %s: %v", ErrLookup, chatID, err)
		}
		if chat != nil {
			members = chat.Users
		}
	}
	if len(members) == 0 {
		log.Printf("warning: chat %s has no members, skipping delivery tracking", chatID)
		return nil
	}

	sender := payload.SenderID.String()
	notification := models.NotificationPayload{ChatID: chatID, Message: payload}
	for _, userID := range members {
		if userID == sender {
			continue
		}
		h.rooms.broadcast(userID, models.EventNotification, notification, "")

		if payload.ID == "" {
			continue
		}
		if h.presence.isOnline(userID) {
			if err := h.messages.MarkDelivered(ctx, payload.ID, userID); err != nil {
				utils.LogError(err, "MarkDelivered")
			}
		} else {
			if err := h.messages.MarkUndelivered(ctx, payload.ID, userID); err != nil {
				utils.LogError(err, "MarkUndelivered")
			}
		}
	}
	return nil
}
