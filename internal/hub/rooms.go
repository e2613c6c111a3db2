package hub

import "sync"

// roomIndex tracks which sessions exist and which rooms each one belongs
// to. Rooms are named broadcast groups: a session's own connection-scoped
// room (named by its connection id), the personal room of its bound user
// (named by the user id), and at most one conversation room (named by a
// chat id).
type roomIndex struct {
	mu sync.RWMutex
	// connID -> session
	sessions map[string]*session
	// roomID -> connID -> session
	rooms map[string]map[string]*session
}

func newRoomIndex() *roomIndex {
	return &roomIndex{
		sessions: make(map[string]*session),
		rooms:    make(map[string]map[string]*session),
	}
}

// register adds a fresh session and places it in its connection-scoped room.
func (r *roomIndex) register(s *session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[s.id] = s
	for roomID := range s.rooms {
		r.addToRoom(roomID, s)
	}
}

// unregister removes the session from every room and from the index.
// Returns the removed session, or nil if the connID is unknown (teardown is
// idempotent: late events referencing a dead connection are no-ops).
func (r *roomIndex) unregister(connID string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return nil
	}
	for roomID := range s.rooms {
		r.removeFromRoom(roomID, connID)
	}
	delete(r.sessions, connID)
	return s
}

// bind attaches a user identity to a session and joins its personal room.
// Rebinding to the same user is a no-op; a different user is a contract
// violation. The bool reports whether the session exists, so a setup racing
// a teardown does not leave a phantom presence entry behind.
func (r *roomIndex) bind(connID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return false, nil
	}
	if s.userID == userID {
		return true, nil
	}
	if s.userID != "" {
		return true, ErrAlreadyBound
	}
	s.userID = userID
	s.rooms[userID] = struct{}{}
	r.addToRoom(userID, s)
	return true, nil
}

// joinConversation moves the session into a conversation room, leaving any
// other conversation room it was in. The personal room and the
// connection-scoped room are never left.
func (r *roomIndex) joinConversation(connID, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return nil
	}
	if s.userID == "" {
		return ErrUnbound
	}
	for roomID := range s.rooms {
		if roomID == s.id || roomID == s.userID {
			continue
		}
		delete(s.rooms, roomID)
		r.removeFromRoom(roomID, connID)
	}
	s.rooms[chatID] = struct{}{}
	r.addToRoom(chatID, s)
	return nil
}

// leaveConversation drops one room from the session; no-op when the session
// is unknown or not a member.
func (r *roomIndex) leaveConversation(connID, chatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return
	}
	if _, member := s.rooms[chatID]; !member {
		return
	}
	delete(s.rooms, chatID)
	r.removeFromRoom(chatID, connID)
}

// broadcast emits an event to every session in a room, optionally skipping
// one connection id. Unknown rooms are silent no-ops.
func (r *roomIndex) broadcast(roomID, event string, data interface{}, excludeConnID string) {
	for _, s := range r.roomSnapshot(roomID) {
		if s.id == excludeConnID {
			continue
		}
		s.emit(event, data)
	}
}

// broadcastAll emits an event to every registered session.
func (r *roomIndex) broadcastAll(event string, data interface{}) {
	r.mu.RLock()
	targets := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		targets = append(targets, s)
	}
	r.mu.RUnlock()

	for _, s := range targets {
		s.emit(event, data)
	}
}

// emitTo sends an event to a single connection.
func (r *roomIndex) emitTo(connID, event string, data interface{}) {
	r.mu.RLock()
	s, ok := r.sessions[connID]
	r.mu.RUnlock()

	if ok {
		s.emit(event, data)
	}
}

// roomSnapshot copies a room's member list so emits happen outside the lock.
func (r *roomIndex) roomSnapshot(roomID string) []*session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	targets := make([]*session, 0, len(members))
	for _, s := range members {
		targets = append(targets, s)
	}
	return targets
}

// addToRoom and removeFromRoom maintain the room map; callers hold the lock.
func (r *roomIndex) addToRoom(roomID string, s *session) {
	if _, ok := r.rooms[roomID]; !ok {
		r.rooms[roomID] = make(map[string]*session)
	}
	r.rooms[roomID][s.id] = s
}

func (r *roomIndex) removeFromRoom(roomID, connID string) {
	if members, ok := r.rooms[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}
}
