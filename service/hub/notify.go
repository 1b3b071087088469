package hub

import (
	"context"
)

// Notifier pushes targeted events (invitations, meeting invites, access
// requests) to all of a user's live connections. Offline targets are a
// silent no-op: durable/email fallback belongs to the CRUD layer.
type Notifier struct {
	reg *Registry
}

func NewNotifier(reg *Registry) *Notifier {
	return &Notifier{reg: reg}
}

// NotifyUser delivers the event to every live connection of the user.
// Returns the number of connections reached; 0 means offline.
func (n *Notifier) NotifyUser(userID, event string, data any) int {
	conns := n.reg.ConnectionsFor(userID)
	if len(conns) == 0 {
		return 0
	}
	frame := BuildFrame(event, data)
	sent := 0
	for _, c := range conns {
		if c.Enqueue(frame) {
			sent++
		}
	}
	return sent
}

// NotifyUsers fans out to many users. Each resolution is independent: an
// unknown or offline id never fails or short-circuits the rest.
func (n *Notifier) NotifyUsers(userIDs []string, event string, data any) int {
	sent := 0
	for _, id := range userIDs {
		sent += n.NotifyUser(id, event, data)
	}
	return sent
}

// NotifyEmail resolves the email via the user directory first, for
// invitation pushes addressed by email.
func (n *Notifier) NotifyEmail(ctx context.Context, email, event string, data any) int {
	conns := n.reg.ConnectionsForEmail(ctx, email)
	if len(conns) == 0 {
		return 0
	}
	frame := BuildFrame(event, data)
	sent := 0
	for _, c := range conns {
		if c.Enqueue(frame) {
			sent++
		}
	}
	return sent
}
