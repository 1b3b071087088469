// Package natsx is the hub's NATS intake: the CRUD layer publishes
// notification requests on notify.* subjects and the hub hands them to the
// Notification Dispatcher. Delivery to clients stays at-most-once; there is
// no durable queue on this path.
package natsx

import (
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

type Config struct {
	URL           string
	Name          string
	ReconnectWait time.Duration
	Timeout       time.Duration
}

type Client struct {
	nc *nats.Conn

	mu   sync.Mutex
	subs []*nats.Subscription
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("nats url missing")
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 500 * time.Millisecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errors.Wrap(err, "nats connect")
	}
	return &Client{nc: nc}, nil
}

// QueueSubscribe joins the hub queue group so one hub instance handles each
// request when several run behind the same NATS.
func (c *Client) QueueSubscribe(subject, queue string, cb nats.MsgHandler) error {
	sub, err := c.nc.QueueSubscribe(subject, queue, cb)
	if err != nil {
		return errors.Wrapf(err, "subscribe %s", subject)
	}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return nil
}

func (c *Client) Close() {
	c.mu.Lock()
	for _, s := range c.subs {
		_ = s.Unsubscribe()
	}
	c.subs = nil
	c.mu.Unlock()
	c.nc.Close()
}
