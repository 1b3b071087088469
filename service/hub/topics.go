package hub

import (
	"sync"
)

// Topic name builders. A topic is a named broadcast scope a connection
// subscribes to: channel, thread, call room, or in-call chat.
func ChannelTopic(id string) string  { return "channel:" + id }
func ThreadTopic(id string) string   { return "thread:" + id }
func RoomTopic(id string) string     { return "room:" + id }
func RoomChatTopic(id string) string { return "roomchat:" + id }

// Topics tracks (connection, topic) subscriptions for the fan-out path.
// Subscriptions are per connection, not per user: a user with two tabs on
// the same channel holds two subscriptions and receives two deliveries.
type Topics struct {
	mu      sync.RWMutex
	byTopic map[string]map[string]*Client  // topic -> conn_id -> client
	byConn  map[string]map[string]struct{} // conn_id -> topics
}

func NewTopics() *Topics {
	return &Topics{
		byTopic: make(map[string]map[string]*Client),
		byConn:  make(map[string]map[string]struct{}),
	}
}

func (t *Topics) Subscribe(c *Client, topic string) {
	if topic == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	m := t.byTopic[topic]
	if m == nil {
		m = make(map[string]*Client)
		t.byTopic[topic] = m
	}
	m[c.ConnID] = c

	subs := t.byConn[c.ConnID]
	if subs == nil {
		subs = make(map[string]struct{})
		t.byConn[c.ConnID] = subs
	}
	subs[topic] = struct{}{}
}

func (t *Topics) Unsubscribe(connID, topic string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unsubscribeLocked(connID, topic)
}

func (t *Topics) unsubscribeLocked(connID, topic string) {
	if m := t.byTopic[topic]; m != nil {
		delete(m, connID)
		if len(m) == 0 {
			delete(t.byTopic, topic)
		}
	}
	if subs := t.byConn[connID]; subs != nil {
		delete(subs, topic)
		if len(subs) == 0 {
			delete(t.byConn, connID)
		}
	}
}

// RemoveConn drops every subscription the connection holds, atomically with
// respect to concurrent Subscribers reads. Called on disconnect.
func (t *Topics) RemoveConn(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for topic := range t.byConn[connID] {
		t.unsubscribeLocked(connID, topic)
	}
}

// Subscribers snapshots the connections currently subscribed to a topic.
func (t *Topics) Subscribers(topic string) []*Client {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m := t.byTopic[topic]
	if len(m) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}
