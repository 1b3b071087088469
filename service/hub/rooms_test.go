package hub

import (
	"sort"
	"testing"
)

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func TestRoomsJoinPeerDiscovery(t *testing.T) {
	rooms := NewRooms()

	peers, newMember := rooms.Join("r1", "alice", "conn-a")
	if len(peers) != 0 || !newMember {
		t.Fatalf("first joiner: want no peers and newMember, got peers=%v new=%v", peers, newMember)
	}

	peers, newMember = rooms.Join("r1", "bob", "conn-b")
	if !newMember {
		t.Fatalf("bob is a new member")
	}
	if len(peers) != 1 || peers[0] != "alice" {
		t.Fatalf("bob must discover alice, got %v", peers)
	}

	got := sorted(rooms.Members("r1"))
	if len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Fatalf("unexpected member set %v", got)
	}
}

func TestRoomsJoinIdempotent(t *testing.T) {
	rooms := NewRooms()
	rooms.Join("r1", "alice", "conn-a1")

	// same user, second tab: member set unchanged, no duplicate join event
	peers, newMember := rooms.Join("r1", "alice", "conn-a2")
	if newMember {
		t.Fatalf("rejoin through another connection must not be a new member")
	}
	if len(peers) != 0 {
		t.Fatalf("self must not appear in peer set, got %v", peers)
	}
	if members := rooms.Members("r1"); len(members) != 1 {
		t.Fatalf("duplicate membership: %v", members)
	}
}

func TestRoomsLeave(t *testing.T) {
	rooms := NewRooms()
	rooms.Join("r1", "alice", "conn-a1")
	rooms.Join("r1", "alice", "conn-a2")
	rooms.Join("r1", "bob", "conn-b")

	connIDs, left := rooms.Leave("r1", "alice")
	if !left || len(connIDs) != 2 {
		t.Fatalf("leave must remove all of alice's connections, got %v left=%v", connIDs, left)
	}
	if members := rooms.Members("r1"); len(members) != 1 || members[0] != "bob" {
		t.Fatalf("expected only bob, got %v", members)
	}

	// leaving a room you're not in is a no-op
	if _, left := rooms.Leave("r1", "alice"); left {
		t.Fatalf("second leave must be a no-op")
	}
	if _, left := rooms.Leave("no-such-room", "bob"); left {
		t.Fatalf("leaving an unknown room must be a no-op")
	}

	// room entry dies with its last member
	rooms.Leave("r1", "bob")
	if members := rooms.Members("r1"); members != nil {
		t.Fatalf("empty room must be deleted, got %v", members)
	}
}

func TestRoomsLeaveAll(t *testing.T) {
	rooms := NewRooms()
	rooms.Join("r1", "alice", "conn-a")
	rooms.Join("r2", "alice", "conn-a")
	rooms.Join("r1", "bob", "conn-b")

	deps := rooms.LeaveAll("conn-a")
	if len(deps) != 2 {
		t.Fatalf("expected departures from both rooms, got %v", deps)
	}
	for _, d := range deps {
		if d.UserID != "alice" {
			t.Errorf("unexpected departure %+v", d)
		}
	}
	if members := rooms.Members("r1"); len(members) != 1 || members[0] != "bob" {
		t.Fatalf("r1 should keep bob, got %v", members)
	}
	if members := rooms.Members("r2"); members != nil {
		t.Fatalf("r2 should be gone, got %v", members)
	}

	// unknown connection: no departures
	if deps := rooms.LeaveAll("conn-a"); deps != nil {
		t.Fatalf("second LeaveAll must be a no-op, got %v", deps)
	}
}

func TestRoomsLeaveAllKeepsMultiTabMembership(t *testing.T) {
	rooms := NewRooms()
	rooms.Join("r1", "alice", "conn-a1")
	rooms.Join("r1", "alice", "conn-a2")

	// one tab closes; alice is still in the room through the other
	if deps := rooms.LeaveAll("conn-a1"); deps != nil {
		t.Fatalf("no departure while another connection remains, got %v", deps)
	}
	if members := rooms.Members("r1"); len(members) != 1 || members[0] != "alice" {
		t.Fatalf("alice must remain a member, got %v", members)
	}

	deps := rooms.LeaveAll("conn-a2")
	if len(deps) != 1 || deps[0] != (Departure{RoomID: "r1", UserID: "alice"}) {
		t.Fatalf("expected final departure, got %v", deps)
	}
}
