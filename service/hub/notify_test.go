package hub

import (
	"context"
	"testing"
)

func TestNotifyUserReachesAllConnections(t *testing.T) {
	reg := NewRegistry(nil)
	n := NewNotifier(reg)

	tab1 := testClient("conn-1", "alice")
	tab2 := testClient("conn-2", "alice")
	other := testClient("conn-3", "bob")
	reg.Add(tab1)
	reg.Add(tab2)
	reg.Add(other)

	sent := n.NotifyUser("alice", EvMeetingInvite, map[string]any{"meetingId": "m1"})
	if sent != 2 {
		t.Fatalf("expected delivery to both tabs, got %d", sent)
	}
	for _, c := range []*Client{tab1, tab2} {
		data := recvEvent(t, c, EvMeetingInvite)
		if data["meetingId"] != "m1" {
			t.Fatalf("unexpected payload %v", data)
		}
	}
	assertSilent(t, other) // targeted push never leaks to other users
}

func TestNotifyUserOfflineIsNoop(t *testing.T) {
	n := NewNotifier(NewRegistry(nil))
	if sent := n.NotifyUser("ghost", EvNewInvitation, nil); sent != 0 {
		t.Fatalf("offline target must be a silent no-op, got %d", sent)
	}
}

func TestNotifyUsersIndependentResolution(t *testing.T) {
	reg := NewRegistry(nil)
	n := NewNotifier(reg)
	reg.Add(testClient("conn-1", "alice"))
	c := reg.ConnectionsFor("alice")[0]

	// an offline id in the middle must not short-circuit the rest
	sent := n.NotifyUsers([]string{"ghost", "alice", "also-ghost"}, EvNewAccessRequest, map[string]any{"id": "req1"})
	if sent != 1 {
		t.Fatalf("expected 1 delivery, got %d", sent)
	}
	recvEvent(t, c, EvNewAccessRequest)
}

func TestNotifyEmail(t *testing.T) {
	dir := &fakeDirectory{byEmail: map[string]string{"alice@example.com": "alice"}}
	reg := NewRegistry(dir)
	n := NewNotifier(reg)
	c := testClient("conn-1", "alice")
	reg.Add(c)

	sent := n.NotifyEmail(context.Background(), "alice@example.com", EvNewInvitation, map[string]any{"workspace": "w1"})
	if sent != 1 {
		t.Fatalf("expected 1 delivery, got %d", sent)
	}
	recvEvent(t, c, EvNewInvitation)

	if sent := n.NotifyEmail(context.Background(), "nobody@example.com", EvNewInvitation, nil); sent != 0 {
		t.Fatalf("unknown email must be a silent no-op")
	}
}
