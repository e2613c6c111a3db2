package hub

import "sync"

// presence maps user ids to the set of their live connection ids. A user is
// online iff their entry exists; empty entries are deleted so that
// onlineUsers stays an accurate enumeration.
type presence struct {
	mu     sync.Mutex
	online map[string]map[string]struct{}
}

func newPresence() *presence {
	return &presence{online: make(map[string]map[string]struct{})}
}

// markOnline registers a connection for a user. Returns true when the call
// changed the online set (repeat calls with the same pair are no-ops).
func (p *presence) markOnline(userID, connID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	conns, ok := p.online[userID]
	if !ok {
		conns = make(map[string]struct{})
		p.online[userID] = conns
	}
	if _, exists := conns[connID]; exists {
		return false
	}
	conns[connID] = struct{}{}
	return true
}

// markOffline drops a connection wherever it is registered. Returns the
// owning user id and whether the online set changed. Unknown connection ids
// are no-ops.
func (p *presence) markOffline(connID string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for userID, conns := range p.online {
		if _, ok := conns[connID]; ok {
			delete(conns, connID)
			if len(conns) == 0 {
				delete(p.online, userID)
			}
			return userID, true
		}
	}
	return "", false
}

func (p *presence) isOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.online[userID]) > 0
}

// onlineUsers returns a snapshot of the user ids with at least one live
// connection.
func (p *presence) onlineUsers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	users := make([]string, 0, len(p.online))
	for userID := range p.online {
		users = append(users, userID)
	}
	return users
}
