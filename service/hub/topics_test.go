package hub

import (
	"testing"
)

func TestTopicsSubscribeUnsubscribe(t *testing.T) {
	topics := NewTopics()
	a := testClient("conn-a", "alice")
	b := testClient("conn-b", "bob")

	topics.Subscribe(a, ChannelTopic("general"))
	topics.Subscribe(b, ChannelTopic("general"))
	topics.Subscribe(a, ThreadTopic("t1"))

	if subs := topics.Subscribers(ChannelTopic("general")); len(subs) != 2 {
		t.Fatalf("expected 2 subscribers, got %d", len(subs))
	}

	topics.Unsubscribe("conn-a", ChannelTopic("general"))
	subs := topics.Subscribers(ChannelTopic("general"))
	if len(subs) != 1 || subs[0].ConnID != "conn-b" {
		t.Fatalf("expected only conn-b, got %v", subs)
	}

	// unsubscribing a topic never held is a no-op
	topics.Unsubscribe("conn-b", ThreadTopic("never"))
	if subs := topics.Subscribers(ChannelTopic("general")); len(subs) != 1 {
		t.Fatalf("unrelated unsubscribe changed state")
	}
}

func TestTopicsRemoveConn(t *testing.T) {
	topics := NewTopics()
	a := testClient("conn-a", "alice")
	topics.Subscribe(a, ChannelTopic("general"))
	topics.Subscribe(a, ThreadTopic("t1"))
	topics.Subscribe(a, RoomTopic("r1"))

	topics.RemoveConn("conn-a")
	for _, topic := range []string{ChannelTopic("general"), ThreadTopic("t1"), RoomTopic("r1")} {
		if subs := topics.Subscribers(topic); len(subs) != 0 {
			t.Errorf("topic %s still has subscribers after RemoveConn", topic)
		}
	}

	// idempotent
	topics.RemoveConn("conn-a")
}
