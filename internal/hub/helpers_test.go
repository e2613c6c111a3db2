package hub_test

import (
	"context"
	"sync"
	"testing"

	"chathub/internal/hub"
	"chathub/internal/models"
)

// fakeConn records every frame written to it so tests can assert on the
// outbound event stream.
type fakeConn struct {
	mu     sync.Mutex
	events []models.OutEvent
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, v.(models.OutEvent))
	return nil
}

func (c *fakeConn) named(event string) []models.OutEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.OutEvent
	for _, e := range c.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (c *fakeConn) count(event string) int {
	return len(c.named(event))
}

type fakeChatStore struct {
	chats map[string]*models.Chat
	err   error
}

func (s *fakeChatStore) FindByID(_ context.Context, chatID string) (*models.Chat, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.chats[chatID], nil
}

type fakeMessageStore struct {
	mu          sync.Mutex
	undelivered map[string][]models.Message // userID -> pending messages
	delivered   map[string][]string         // messageID -> userIDs
	missed      map[string][]string         // messageID -> userIDs
	err         error
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{
		undelivered: make(map[string][]models.Message),
		delivered:   make(map[string][]string),
		missed:      make(map[string][]string),
	}
}

func (s *fakeMessageStore) FindUndeliveredFor(_ context.Context, userID string) ([]models.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undelivered[userID], nil
}

func (s *fakeMessageStore) MarkDelivered(_ context.Context, messageID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered[messageID] = appendUnique(s.delivered[messageID], userID)
	return nil
}

func (s *fakeMessageStore) MarkUndelivered(_ context.Context, messageID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missed[messageID] = appendUnique(s.missed[messageID], userID)
	return nil
}

func appendUnique(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}

// newTestHub builds a hub backed by fakes.
func newTestHub() (*hub.Hub, *fakeChatStore, *fakeMessageStore) {
	chats := &fakeChatStore{chats: make(map[string]*models.Chat)}
	messages := newFakeMessageStore()
	return hub.New(chats, messages), chats, messages
}

// connect registers a connection and binds it to a user in one step.
func connect(t *testing.T, h *hub.Hub, connID, userID string) *fakeConn {
	t.Helper()
	conn := &fakeConn{}
	h.Register(connID, conn)
	if userID != "" {
		if err := h.Setup(context.Background(), connID, models.SetupPayload{ID: userID, Name: userID}); err != nil {
			t.Fatalf("setup %s on %s: %v", userID, connID, err)
		}
	}
	return conn
}

func contains(list []string, item string) bool {
	for _, existing := range list {
		if existing == item {
			return true
		}
	}
	return false
}
