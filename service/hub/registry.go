package hub

import (
	"context"
	"sync"
)

// UserDirectory resolves an email address to a user id. Backed by the
// platform's user store; faked in tests.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (string, error)
}

// Registry owns the presence record: user id -> live connections. It is one
// of the two mutable shared structures in the hub; every mutation goes
// through Add/Remove and nothing else.
type Registry struct {
	mu     sync.RWMutex
	byConn map[string]*Client            // conn_id -> client
	byUser map[string]map[string]*Client // user_id -> conn_id -> client

	dir UserDirectory // may be nil; email resolution then always misses
}

func NewRegistry(dir UserDirectory) *Registry {
	return &Registry{
		byConn: make(map[string]*Client),
		byUser: make(map[string]map[string]*Client),
		dir:    dir,
	}
}

// Add registers an authenticated connection. Reports whether this was the
// user's first live connection, i.e. the offline -> online transition.
func (r *Registry) Add(c *Client) (wentOnline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byConn[c.ConnID] = c
	m := r.byUser[c.UserID()]
	if m == nil {
		m = make(map[string]*Client)
		r.byUser[c.UserID()] = m
	}
	wentOnline = len(m) == 0
	m[c.ConnID] = c
	return wentOnline
}

// Remove unregisters a connection. Idempotent: removing an unknown conn id
// is a no-op. Reports whether the user's presence record became empty, the
// only point at which persisted status flips to offline.
func (r *Registry) Remove(connID string) (userID string, wentOffline bool, found bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byConn[connID]
	if !ok {
		return "", false, false
	}
	delete(r.byConn, connID)

	userID = c.UserID()
	if m := r.byUser[userID]; m != nil {
		delete(m, connID)
		if len(m) == 0 {
			delete(r.byUser, userID)
			wentOffline = true
		}
	}
	return userID, wentOffline, true
}

// ConnectionsFor returns the user's live connections. Empty for unknown or
// offline users, never an error.
func (r *Registry) ConnectionsFor(userID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.byUser[userID]
	if len(m) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}

// ConnectionsForEmail resolves via the user directory, then delegates to
// ConnectionsFor. A miss in the directory yields an empty set.
func (r *Registry) ConnectionsForEmail(ctx context.Context, email string) []*Client {
	if r.dir == nil {
		return nil
	}
	userID, err := r.dir.FindByEmail(ctx, email)
	if err != nil || userID == "" {
		return nil
	}
	return r.ConnectionsFor(userID)
}

// Get returns the client for a connection id, or nil.
func (r *Registry) Get(connID string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byConn[connID]
}

// Online reports whether the user has at least one live connection, and the
// connection count.
func (r *Registry) Online(userID string) (bool, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := len(r.byUser[userID])
	return n > 0, n
}

// All returns every registered client. Used by shutdown and diagnostics.
func (r *Registry) All() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.byConn))
	for _, c := range r.byConn {
		out = append(out, c)
	}
	return out
}
