package chathub

import "sync"

// PresenceRegistry maps a user id to the single live connection that can
// reach them. A later bind for the same user overwrites the earlier one.
// The reverse index makes disconnect removal O(1) while keeping its
// semantics: removal is keyed by connection id, so a stale connection's
// late disconnect never evicts a newer binding for the same user.
type PresenceRegistry struct {
	mu     sync.RWMutex
	byUser map[string]string // userID -> connID
	byConn map[string]string // connID -> userID
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		byUser: make(map[string]string),
		byConn: make(map[string]string),
	}
}

// Bind registers connID as the live connection for userID, replacing any
// previous one.
func (p *PresenceRegistry) Bind(userID, connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// A connection carries at most one user; rebinding it releases the
	// previous claim so no stale forward entry survives.
	if oldUser, ok := p.byConn[connID]; ok && oldUser != userID && p.byUser[oldUser] == connID {
		delete(p.byUser, oldUser)
	}
	if old, ok := p.byUser[userID]; ok && p.byConn[old] == userID {
		delete(p.byConn, old)
	}
	p.byUser[userID] = connID
	p.byConn[connID] = userID
}

// Unbind removes the entry for userID if present.
func (p *PresenceRegistry) Unbind(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if connID, ok := p.byUser[userID]; ok {
		delete(p.byUser, userID)
		if p.byConn[connID] == userID {
			delete(p.byConn, connID)
		}
	}
}

// UnbindConn removes whichever entry currently points at connID. A no-op
// when the connection never bound a user or the user has since rebound
// elsewhere.
func (p *PresenceRegistry) UnbindConn(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	userID, ok := p.byConn[connID]
	if !ok {
		return
	}
	delete(p.byConn, connID)
	if p.byUser[userID] == connID {
		delete(p.byUser, userID)
	}
}

// Lookup returns the live connection for userID, if any.
func (p *PresenceRegistry) Lookup(userID string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	connID, ok := p.byUser[userID]
	return connID, ok
}
