package chathub

import "sync"

// RoomCoordinator tracks which connections are subscribed to which group
// broadcast channel. There is no explicit leave; a connection's rooms are
// released together when it drops, via the per-connection room set.
type RoomCoordinator struct {
	mu        sync.RWMutex
	roomConns map[string]map[string]struct{} // chatID -> set of connIDs
	connRooms map[string]map[string]struct{} // connID -> set of chatIDs
}

func NewRoomCoordinator() *RoomCoordinator {
	return &RoomCoordinator{
		roomConns: make(map[string]map[string]struct{}),
		connRooms: make(map[string]map[string]struct{}),
	}
}

// Join subscribes the connection to the room. Joining twice is harmless.
func (r *RoomCoordinator) Join(connID, chatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.roomConns[chatID] == nil {
		r.roomConns[chatID] = make(map[string]struct{})
	}
	r.roomConns[chatID][connID] = struct{}{}

	if r.connRooms[connID] == nil {
		r.connRooms[connID] = make(map[string]struct{})
	}
	r.connRooms[connID][chatID] = struct{}{}
}

// DropConn removes the connection from every room it joined.
func (r *RoomCoordinator) DropConn(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for chatID := range r.connRooms[connID] {
		delete(r.roomConns[chatID], connID)
		if len(r.roomConns[chatID]) == 0 {
			delete(r.roomConns, chatID)
		}
	}
	delete(r.connRooms, connID)
}

// Connections returns a snapshot of the connection ids joined to the room.
func (r *RoomCoordinator) Connections(chatID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]string, 0, len(r.roomConns[chatID]))
	for connID := range r.roomConns[chatID] {
		conns = append(conns, connID)
	}
	return conns
}
