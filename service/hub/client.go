package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"collabhub/logger"
	"collabhub/tools/security"
)

const writeDeadline = 5 * time.Second

// Client is one live transport session tied to one authenticated identity.
// A user may hold several clients (tabs, devices), each maintained
// separately. The identity is captured at handshake time and never mutated.
type Client struct {
	ConnID   string
	Identity security.Identity

	ws   *websocket.Conn // nil in tests; Send still observable
	Send chan []byte     // outbound queue, drained by a single writer goroutine

	closeOnce    sync.Once
	teardownOnce sync.Once // guards lifecycle cleanup against double close events
	done         chan struct{}
}

func NewClient(connID string, id security.Identity, ws *websocket.Conn, queueSize int) *Client {
	return &Client{
		ConnID:   connID,
		Identity: id,
		ws:       ws,
		Send:     make(chan []byte, queueSize),
		done:     make(chan struct{}),
	}
}

func (c *Client) UserID() string { return c.Identity.UserID }

// Enqueue queues an outbound frame without blocking. A slow client whose
// queue is full loses the frame; delivery here is at-most-once.
func (c *Client) Enqueue(payload []byte) bool {
	if len(payload) == 0 {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- payload:
		return true
	default:
		logger.Warnf("[client] send queue full, drop frame conn=%s user=%s", c.ConnID, c.UserID())
		return false
	}
}

// writePump is the only goroutine allowed to write to the socket.
func (c *Client) writePump() {
	for {
		select {
		case payload := <-c.Send:
			if err := c.write(payload); err != nil {
				logger.Infof("[client] write err conn=%s err=%v", c.ConnID, err)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) write(payload []byte) error {
	if c.ws == nil {
		return nil
	}
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

// shutdown stops the writer and closes the socket. Safe to call more than
// once; only the first call has effect.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}
