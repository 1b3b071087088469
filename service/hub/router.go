package hub

import (
	"github.com/golang/glog"
)

// HandlerFunc handles one inbound event for one connection. The payload is
// the frame's loosely typed data object; handlers decode it themselves.
type HandlerFunc func(s *Server, c *Client, data map[string]any) error

// Router maps inbound event names to handlers. Registration happens once at
// construction; dispatch is read-only and needs no locking.
type Router struct {
	handlers map[string]HandlerFunc
}

func NewRouter() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

func (r *Router) Register(event string, h HandlerFunc) {
	r.handlers[event] = h
}

// Dispatch routes the event; unknown events are dropped and logged, never
// an error to the connection.
func (r *Router) Dispatch(s *Server, c *Client, event string, data map[string]any) error {
	h, ok := r.handlers[event]
	if !ok {
		glog.Infof("no handler for event=%s conn=%s", event, c.ConnID)
		return nil
	}
	return h(s, c, data)
}
