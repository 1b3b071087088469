package hub

import (
	"sync"
)

// Rooms tracks, per video-call room, which users are currently joined via a
// live connection. Membership is ephemeral and disjoint from the persisted
// meeting's participant list. Rooms is the second of the two mutable shared
// structures; Join/Leave/LeaveAll are its whole mutation surface.
type Rooms struct {
	mu sync.RWMutex
	// room_id -> user_id -> conn ids that joined on behalf of that user.
	// A user is a member while at least one of their connections is joined.
	rooms map[string]map[string]map[string]struct{}
	// conn_id -> room_id -> user id, so disconnect cleanup is O(rooms the
	// connection joined), not O(total rooms)
	byConn map[string]map[string]string
}

// Departure records a user fully leaving a room, used to drive user-left
// broadcasts on disconnect.
type Departure struct {
	RoomID string
	UserID string
}

func NewRooms() *Rooms {
	return &Rooms{
		rooms:  make(map[string]map[string]map[string]struct{}),
		byConn: make(map[string]map[string]string),
	}
}

// Join adds the user to the room, creating the room on first join, and
// returns the current peer set excluding the joiner for peer discovery.
// newMember is false when the user was already a member through another
// connection, so callers emit no duplicate user-joined event.
func (r *Rooms) Join(roomID, userID, connID string) (peers []string, newMember bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms[roomID]
	if room == nil {
		room = make(map[string]map[string]struct{})
		r.rooms[roomID] = room
	}

	for peer := range room {
		if peer != userID {
			peers = append(peers, peer)
		}
	}

	conns := room[userID]
	newMember = conns == nil
	if conns == nil {
		conns = make(map[string]struct{})
		room[userID] = conns
	}
	conns[connID] = struct{}{}

	joined := r.byConn[connID]
	if joined == nil {
		joined = make(map[string]string)
		r.byConn[connID] = joined
	}
	joined[roomID] = userID
	return peers, newMember
}

// Leave removes the user from the room entirely, regardless of how many of
// their connections had joined, and returns those connection ids so the
// caller can drop their room topic subscriptions. Leaving a room the user
// isn't in is a no-op. The room entry is deleted once its member set empties.
func (r *Rooms) Leave(roomID, userID string) (connIDs []string, left bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms[roomID]
	conns, member := room[userID]
	if !member {
		return nil, false
	}
	for connID := range conns {
		connIDs = append(connIDs, connID)
		if joined := r.byConn[connID]; joined != nil {
			delete(joined, roomID)
			if len(joined) == 0 {
				delete(r.byConn, connID)
			}
		}
	}
	delete(room, userID)
	if len(room) == 0 {
		delete(r.rooms, roomID)
	}
	return connIDs, true
}

// LeaveAll removes one connection from every room it joined, returning the
// rooms where its user thereby fully departed. Called on disconnect.
func (r *Rooms) LeaveAll(connID string) []Departure {
	r.mu.Lock()
	defer r.mu.Unlock()

	joined := r.byConn[connID]
	if len(joined) == 0 {
		delete(r.byConn, connID)
		return nil
	}
	delete(r.byConn, connID)

	var out []Departure
	for roomID, userID := range joined {
		room := r.rooms[roomID]
		conns := room[userID]
		if conns == nil {
			continue
		}
		delete(conns, connID)
		if len(conns) > 0 {
			continue // user still in the room through another connection
		}
		delete(room, userID)
		if len(room) == 0 {
			delete(r.rooms, roomID)
		}
		out = append(out, Departure{RoomID: roomID, UserID: userID})
	}
	return out
}

// Members returns the room's current member user ids; nil for an unknown room.
func (r *Rooms) Members(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room := r.rooms[roomID]
	if len(room) == 0 {
		return nil
	}
	out := make([]string, 0, len(room))
	for userID := range room {
		out = append(out, userID)
	}
	return out
}
