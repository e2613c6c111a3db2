package hub

import (
	"sync"

	"chathub/internal/models"
	"chathub/internal/utils"
)

// Conn is the transport side of a socket session. *websocket.Conn satisfies
// it in production; tests substitute a recorder.
type Conn interface {
	WriteJSON(v interface{}) error
}

// session is one connected device/tab. userID is empty until setup binds an
// identity. The write mutex serializes emits because the underlying
// websocket connection is not safe for concurrent writes.
type session struct {
	id      string
	conn    Conn
	writeMu sync.Mutex

	// guarded by the owning roomIndex lock
	userID string
	rooms  map[string]struct{}
}

func newSession(id string, conn Conn) *session {
	return &session{
		id:    id,
		conn:  conn,
		rooms: map[string]struct{}{id: {}},
	}
}

// emit writes one event frame to the session's connection. Write failures
// are logged, not propagated: the read loop notices the dead connection and
// tears the session down.
func (s *session) emit(event string, data interface{}) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.WriteJSON(models.OutEvent{Event: event, Data: data}); err != nil {
		utils.LogError(err, "emit "+event)
	}
}
