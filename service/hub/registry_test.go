package hub

import (
	"context"
	"testing"

	"collabhub/tools/security"
)

type fakeDirectory struct {
	byEmail map[string]string
}

func (f *fakeDirectory) FindByEmail(_ context.Context, email string) (string, error) {
	if id, ok := f.byEmail[email]; ok {
		return id, nil
	}
	return "", nil
}

func testClient(connID, userID string) *Client {
	return NewClient(connID, security.Identity{
		UserID:   userID,
		Username: "u-" + userID,
		Email:    userID + "@example.com",
	}, nil, 16)
}

func TestRegistryPresenceTransitions(t *testing.T) {
	reg := NewRegistry(nil)

	c1 := testClient("conn-1", "alice")
	if wentOnline := reg.Add(c1); !wentOnline {
		t.Fatalf("first connection must flip presence to online")
	}
	if online, n := reg.Online("alice"); !online || n != 1 {
		t.Fatalf("expected online with 1 connection, got online=%v n=%d", online, n)
	}

	// second tab: no transition
	c2 := testClient("conn-2", "alice")
	if wentOnline := reg.Add(c2); wentOnline {
		t.Fatalf("second connection must not report online transition")
	}
	if _, n := reg.Online("alice"); n != 2 {
		t.Fatalf("expected 2 connections, got %d", n)
	}

	// closing one tab keeps the user online
	if _, wentOffline, found := reg.Remove("conn-1"); !found || wentOffline {
		t.Fatalf("removing one of two connections must not flip offline (found=%v offline=%v)", found, wentOffline)
	}
	if online, _ := reg.Online("alice"); !online {
		t.Fatalf("user must stay online while a connection remains")
	}

	// closing the last one flips offline
	userID, wentOffline, found := reg.Remove("conn-2")
	if !found || !wentOffline || userID != "alice" {
		t.Fatalf("last removal must flip offline, got user=%s offline=%v found=%v", userID, wentOffline, found)
	}
	if online, n := reg.Online("alice"); online || n != 0 {
		t.Fatalf("expected offline with 0 connections, got online=%v n=%d", online, n)
	}
}

func TestRegistryRemoveIdempotent(t *testing.T) {
	reg := NewRegistry(nil)
	c := testClient("conn-1", "alice")
	reg.Add(c)
	reg.Remove("conn-1")

	if _, wentOffline, found := reg.Remove("conn-1"); found || wentOffline {
		t.Fatalf("removing an already-removed connection must be a no-op")
	}
	if _, _, found := reg.Remove("never-existed"); found {
		t.Fatalf("removing an unknown connection must be a no-op")
	}
}

func TestRegistryConnectionsFor(t *testing.T) {
	reg := NewRegistry(nil)
	if conns := reg.ConnectionsFor("ghost"); len(conns) != 0 {
		t.Fatalf("unknown user must yield an empty set, got %d", len(conns))
	}

	reg.Add(testClient("conn-1", "alice"))
	reg.Add(testClient("conn-2", "alice"))
	reg.Add(testClient("conn-3", "bob"))

	conns := reg.ConnectionsFor("alice")
	if len(conns) != 2 {
		t.Fatalf("expected alice's 2 connections, got %d", len(conns))
	}
	for _, c := range conns {
		if c.UserID() != "alice" {
			t.Errorf("foreign connection in alice's set: user=%s", c.UserID())
		}
	}
}

func TestRegistryConnectionsForEmail(t *testing.T) {
	dir := &fakeDirectory{byEmail: map[string]string{"alice@example.com": "alice"}}
	reg := NewRegistry(dir)
	reg.Add(testClient("conn-1", "alice"))

	if conns := reg.ConnectionsForEmail(context.Background(), "alice@example.com"); len(conns) != 1 {
		t.Fatalf("expected 1 connection via email, got %d", len(conns))
	}
	if conns := reg.ConnectionsForEmail(context.Background(), "nobody@example.com"); len(conns) != 0 {
		t.Fatalf("unknown email must yield an empty set")
	}
}
