package hub

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"collabhub/logger"
	chatmodel "collabhub/module/chat/model"
	usermodel "collabhub/module/user/model"
	"collabhub/tools/ids"
	"collabhub/tools/safe"
	"collabhub/tools/security"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Boundary collaborators, faked in tests.

// TokenValidator validates a handshake credential and yields the identity.
type TokenValidator interface {
	Validate(token string) (security.Identity, error)
}

// MessageStore durably saves a chat message before it is fanned out.
type MessageStore interface {
	Save(ctx context.Context, channelID, senderID, content string, attachments []chatmodel.Attachment, threadID string) (*chatmodel.Message, error)
}

// PresenceStore persists the derived online/offline status.
type PresenceStore interface {
	SetStatus(ctx context.Context, userID, status string) error
}

// PresenceLookup is optionally implemented by a PresenceStore that can
// report presence persisted by other hub nodes.
type PresenceLookup interface {
	Lookup(ctx context.Context, userID string) (nodeID string, online bool, err error)
}

// MessageEventSink receives an event record per persisted message. Optional.
type MessageEventSink interface {
	PublishMessageEvent(msg *chatmodel.Message) error
}

// Deps wires the hub to its collaborators.
type Deps struct {
	Auth     TokenValidator
	Dir      UserDirectory // nil disables email-addressed delivery
	Msgs     MessageStore
	Presence PresenceStore
	Events   MessageEventSink // nil disables message event publishing

	SendQueueSize int
	FanoutWorkers int
	FanoutQueue   int
}

// Server is the connection lifecycle controller: it authenticates
// handshakes, runs the per-connection read loop, and tears state down
// exactly once on disconnect.
type Server struct {
	nodeID string
	deps   Deps

	reg      *Registry
	rooms    *Rooms
	topics   *Topics
	fanout   *Fanout
	relay    *Relay
	notifier *Notifier
	router   *Router

	// presence writes flow through one queue and one worker so persisted
	// status always lands in transition order; a connect racing a
	// disconnect can otherwise leave a gone user "online" forever
	statusq  chan statusJob
	statusWG sync.WaitGroup
}

type statusJob struct {
	userID string
	status string
}

func NewServer(nodeID string, deps Deps) *Server {
	if deps.SendQueueSize <= 0 {
		deps.SendQueueSize = 256
	}
	if deps.FanoutWorkers <= 0 {
		deps.FanoutWorkers = 1
	}
	if deps.FanoutQueue <= 0 {
		deps.FanoutQueue = 1024
	}
	reg := NewRegistry(deps.Dir)
	s := &Server{
		nodeID:   nodeID,
		deps:     deps,
		reg:      reg,
		rooms:    NewRooms(),
		topics:   NewTopics(),
		fanout:   NewFanout(deps.FanoutWorkers, deps.FanoutQueue),
		relay:    NewRelay(reg),
		notifier: NewNotifier(reg),
		router:   NewRouter(),
		statusq:  make(chan statusJob, 1024),
	}
	registerCoreHandlers(s.router)
	safe.Go(s.statusWorker)
	return s
}

func (s *Server) Registry() *Registry { return s.reg }
func (s *Server) Rooms() *Rooms       { return s.rooms }
func (s *Server) Notifier() *Notifier { return s.notifier }

// HandleWS upgrades the transport after validating the handshake token.
// A failed validation rejects the request and creates no state.
func (s *Server) HandleWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = bearerToken(c.GetHeader("Authorization"))
	}
	id, err := s.deps.Auth.Validate(token)
	if err != nil {
		logger.Infof("[HandleWS] handshake auth rejected: %v", err)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[HandleWS] upgrade websocket error: %v", err)
		return
	}

	client := NewClient(ids.GenerateString(), id, ws, s.deps.SendQueueSize)
	go client.writePump()

	if wentOnline := s.reg.Add(client); wentOnline {
		s.persistStatus(id.UserID, usermodel.StatusOnline)
	}
	logger.Infof("[HandleWS] connected conn=%s user=%s node=%s", client.ConnID, id.UserID, s.nodeID)

	s.readLoop(client, ws)
	s.Disconnect(client)
}

// readLoop processes the connection's events strictly in arrival order.
func (s *Server) readLoop(client *Client, ws *websocket.Conn) {
	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[WS] peer closed conn=%s err=%v", client.ConnID, rerr)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[WS] read timeout conn=%s err=%v", client.ConnID, rerr)
			} else {
				logger.Infof("[WS] read err conn=%s err=%v", client.ConnID, rerr)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		event, payload, perr := s.parseInbound(client, data)
		if perr != nil {
			continue
		}
		if err := s.router.Dispatch(s, client, event, payload); err != nil {
			// a bad event never crashes the connection
			logger.Infof("[WS] handler err conn=%s event=%s err=%v", client.ConnID, event, err)
		}
	}
}

func (s *Server) parseInbound(client *Client, data []byte) (string, map[string]any, error) {
	event, payload, err := ParseFrame(data)
	if err != nil {
		sample := data
		if len(sample) > 256 {
			sample = sample[:256]
		}
		logger.Infof("[WS] ParseFrame err conn=%s err=%v sample=%q len=%d",
			client.ConnID, err, sample, len(data))
		return "", nil, err
	}
	return event, payload, nil
}

// Disconnect tears down one connection: leave every joined room, drop topic
// subscriptions, unregister, and on the user's last connection persist
// offline. Duplicate close events are a no-op; the in-memory mutations
// complete before the (async) persistence call, so a slow store never
// blocks other users' traffic nor leaves membership observable.
func (s *Server) Disconnect(client *Client) {
	client.teardownOnce.Do(func() {
		client.shutdown()

		departures := s.rooms.LeaveAll(client.ConnID)
		s.topics.RemoveConn(client.ConnID)
		for _, d := range departures {
			s.broadcast(RoomTopic(d.RoomID), EvUserLeft, map[string]any{
				"roomId": d.RoomID,
				"userId": d.UserID,
			}, client.ConnID)
		}

		userID, wentOffline, found := s.reg.Remove(client.ConnID)
		if found && wentOffline {
			s.persistStatus(userID, usermodel.StatusOffline)
		}
		logger.Infof("[WS] disconnected conn=%s user=%s rooms_left=%d offline=%v",
			client.ConnID, client.UserID(), len(departures), found && wentOffline)
	})
}

// Shutdown force-disconnects every live connection, then waits until the
// queued presence writes have flushed so every user lands offline in the
// store before the process exits.
func (s *Server) Shutdown() {
	for _, c := range s.reg.All() {
		s.Disconnect(c)
	}
	s.fanout.Close()
	s.statusWG.Wait()
}

// persistStatus queues the write after the in-memory transition has been
// applied. The queue keeps writes in transition order; a slow store delays
// later writes, never other users' real-time traffic.
func (s *Server) persistStatus(userID, status string) {
	if s.deps.Presence == nil {
		return
	}
	s.statusWG.Add(1)
	select {
	case s.statusq <- statusJob{userID: userID, status: status}:
	default:
		s.statusWG.Done()
		logger.Errorf("[presence] status queue full, drop %s user=%s", status, userID)
	}
}

func (s *Server) statusWorker() {
	for job := range s.statusq {
		pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.deps.Presence.SetStatus(pctx, job.userID, job.status); err != nil {
			logger.Errorf("[presence] set %s failed user=%s err=%v", job.status, job.userID, err)
		}
		cancel()
		s.statusWG.Done()
	}
}

func (s *Server) broadcast(topic, event string, data any, excludeConnID string) {
	s.fanout.Broadcast(s.topics.Subscribers(topic), BuildFrame(event, data), excludeConnID)
}

func (s *Server) sendError(client *Client, code int, msg string) {
	client.Enqueue(BuildFrame(EvError, map[string]any{"code": code, "msg": msg}))
}

func bearerToken(authz string) string {
	const prefix = "Bearer "
	if len(authz) > len(prefix) && authz[:len(prefix)] == prefix {
		return authz[len(prefix):]
	}
	return ""
}
