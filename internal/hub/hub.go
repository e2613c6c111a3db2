// Package hub is the real-time distribution core: it routes chat messages,
// presence changes, typing signals, and call-signaling events between
// connected clients and tracks per-recipient delivery state.
package hub

import (
	"context"
	"fmt"
	"log"

	"chathub/internal/models"
)

// ChatStore resolves chat membership when a message payload arrives without
// a populated member list.
type ChatStore interface {
	FindByID(ctx context.Context, chatID string) (*models.Chat, error)
}

// MessageStore persists per-recipient delivery state and answers the
// missed-message query on reconnect.
type MessageStore interface {
	FindUndeliveredFor(ctx context.Context, userID string) ([]models.Message, error)
	MarkDelivered(ctx context.Context, messageID, userID string) error
	MarkUndelivered(ctx context.Context, messageID, userID string) error
}

// Hub owns the presence registry and the room-membership index for one
// process. All mutable socket state lives here, constructed at Start and
// torn down at Stop; there are no package-level maps.
type Hub struct {
	presence *presence
	rooms    *roomIndex
	chats    ChatStore
	messages MessageStore
}

func New(chats ChatStore, messages MessageStore) *Hub {
	return &Hub{
		presence: newPresence(),
		rooms:    newRoomIndex(),
		chats:    chats,
		messages: messages,
	}
}

var active *Hub

// Start installs the hub as the process-wide instance.
func Start(h *Hub) {
	active = h
	log.Println("hub started")
}

// Stop clears the process-wide instance.
func Stop() {
	active = nil
}

// Active returns the running hub. Using it before Start is a programming
// error and panics rather than limping along with nil state.
func Active() *Hub {
	if active == nil {
		panic(ErrNotInitialized)
	}
	return active
}

// Register adds a new connection to the hub. The connection has no identity
// until its setup event arrives.
func (h *Hub) Register(connID string, conn Conn) {
	h.rooms.register(newSession(connID, conn))
	log.Printf("connection %s registered", connID)
}

// Setup binds a connection to a user identity, joins the personal room,
// marks the user online, and replays any messages that went undelivered
// while they were away.
func (h *Hub) Setup(ctx context.Context, connID string, payload models.SetupPayload) error {
	if payload.ID == "" {
		return ErrUnbound
	}
	bound, err := h.rooms.bind(connID, payload.ID)
	if err != nil {
		return err
	}
	if !bound {
		// The connection was torn down before the setup event ran.
		return nil
	}
	if h.presence.markOnline(payload.ID, connID) {
		h.broadcastPresence()
	}
	h.rooms.emitTo(connID, models.EventConnected, nil)
	log.Printf("user %s (%s) set up on connection %s", payload.Name, payload.ID, connID)

	missed, err := h.messages.FindUndeliveredFor(ctx, payload.ID)
	if err != nil {
		return fmt.Errorf("%w: undelivered messages for %s: %v", ErrLookup, payload.ID, err)
	}
	for _, msg := range missed {
		h.rooms.emitTo(connID, models.EventMessageReceived, msg)
	}
	return nil
}

// JoinChat moves the connection into a conversation room, evicting any
// other conversation room it was viewing.
func (h *Hub) JoinChat(connID, chatID string) error {
	if chatID == "" {
		return ErrMissingChatID
	}
	return h.rooms.joinConversation(connID, chatID)
}

// LeaveChat removes the connection from a conversation room.
func (h *Hub) LeaveChat(connID, chatID string) {
	h.rooms.leaveConversation(connID, chatID)
}

// Relay broadcasts an event to a room, excluding the sending connection.
// Used for typing indicators.
func (h *Hub) Relay(connID, event, roomID string) {
	h.rooms.broadcast(roomID, event, roomID, connID)
}

// Teardown removes a disconnected connection from all rooms and from the
// presence registry. Safe to call for connection ids that were already torn
// down.
func (h *Hub) Teardown(connID string) {
	h.rooms.unregister(connID)
	if userID, changed := h.presence.markOffline(connID); changed {
		log.Printf("connection %s for user %s disconnected", connID, userID)
		h.broadcastPresence()
	}
}

// IsOnline reports whether a user has at least one live connection.
func (h *Hub) IsOnline(userID string) bool {
	return h.presence.isOnline(userID)
}

// OnlineUsers returns a snapshot of the currently reachable user ids.
func (h *Hub) OnlineUsers() []string {
	return h.presence.onlineUsers()
}

// broadcastPresence pushes the full online-user snapshot to every
// connection. Full snapshots trade bandwidth for simplicity, which holds up
// at single-instance scale.
func (h *Hub) broadcastPresence() {
	h.rooms.broadcastAll(models.EventOnlineUsers, h.presence.onlineUsers())
}
