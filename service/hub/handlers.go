package hub

import (
	"context"
	"time"

	"collabhub/logger"
	"collabhub/tools/errs"
	"collabhub/tools/safe"
)

const saveTimeout = 5 * time.Second

func registerCoreHandlers(r *Router) {
	r.Register(EvJoinRoom, onJoinRoom)
	r.Register(EvLeaveRoom, onLeaveRoom)
	r.Register(EvSendingSignal, onSendingSignal)
	r.Register(EvReturningSignal, onReturningSignal)
	r.Register(EvSendMessage, onSendMessage)
	r.Register(EvTyping, onTyping)
	r.Register(EvJoinChannel, onJoinChannel)
	r.Register(EvLeaveChannel, onLeaveChannel)
	r.Register(EvJoinThread, onJoinThread)
	r.Register(EvLeaveThread, onLeaveThread)
	r.Register(EvStartScreenShare, screenShareHandler(EvStartScreenShare))
	r.Register(EvStopScreenShare, screenShareHandler(EvStopScreenShare))
	r.Register(EvSendChatMessage, onSendChatMessage)
	r.Register(EvPing, onPing)
}

// identityMatches drops events whose payload claims another user than the
// one the connection authenticated as.
func identityMatches(c *Client, claimed string) bool {
	return claimed == "" || claimed == c.UserID()
}

func onJoinRoom(s *Server, c *Client, data map[string]any) error {
	p, err := payload[JoinRoomPayload](data)
	if err != nil {
		return errs.ErrBadEvent.WrapMsg("join-room", "err", err)
	}
	if p.RoomID == "" || !identityMatches(c, p.UserID) {
		return errs.ErrBadEvent.WrapMsg("join-room", "room", p.RoomID, "user", p.UserID)
	}
	userID := c.UserID()

	peers, newMember := s.rooms.Join(p.RoomID, userID, c.ConnID)
	s.topics.Subscribe(c, RoomTopic(p.RoomID))
	s.topics.Subscribe(c, RoomChatTopic(p.RoomID))

	if peers == nil {
		peers = []string{}
	}
	c.Enqueue(BuildFrame(EvExistingPeers, map[string]any{
		"roomId": p.RoomID,
		"peers":  peers,
	}))

	if newMember {
		s.broadcast(RoomTopic(p.RoomID), EvUserJoined, map[string]any{
			"roomId":    p.RoomID,
			"userId":    userID,
			"username":  c.Identity.Username,
			"avatarUrl": c.Identity.AvatarURL,
		}, c.ConnID)
	}
	return nil
}

func onLeaveRoom(s *Server, c *Client, data map[string]any) error {
	p, err := payload[JoinRoomPayload](data)
	if err != nil {
		return errs.ErrBadEvent.WrapMsg("leave-room", "err", err)
	}
	if p.RoomID == "" || !identityMatches(c, p.UserID) {
		return errs.ErrBadEvent.WrapMsg("leave-room", "room", p.RoomID, "user", p.UserID)
	}
	userID := c.UserID()

	connIDs, left := s.rooms.Leave(p.RoomID, userID)
	if !left {
		return nil
	}
	for _, connID := range connIDs {
		s.topics.Unsubscribe(connID, RoomTopic(p.RoomID))
		s.topics.Unsubscribe(connID, RoomChatTopic(p.RoomID))
	}
	s.broadcast(RoomTopic(p.RoomID), EvUserLeft, map[string]any{
		"roomId": p.RoomID,
		"userId": userID,
	}, c.ConnID)
	return nil
}

func onSendingSignal(s *Server, c *Client, data map[string]any) error {
	return relaySignal(s, c, data, SignalOffer)
}

func onReturningSignal(s *Server, c *Client, data map[string]any) error {
	return relaySignal(s, c, data, SignalAnswer)
}

func relaySignal(s *Server, c *Client, data map[string]any, kind SignalKind) error {
	p, err := payload[SignalPayload](data)
	if err != nil {
		return errs.ErrBadEvent.WrapMsg("signal", "err", err)
	}
	if p.ReceiverID == "" || !identityMatches(c, p.SenderID) {
		return errs.ErrBadEvent.WrapMsg("signal", "receiver", p.ReceiverID, "sender", p.SenderID)
	}
	// a missing receiver is an expected race, not an error
	s.relay.Relay(kind, c.UserID(), p.ReceiverID, p.Signal)
	return nil
}

func onSendMessage(s *Server, c *Client, data map[string]any) error {
	p, err := payload[SendMessagePayload](data)
	if err != nil {
		return errs.ErrBadEvent.WrapMsg("send-message", "err", err)
	}
	if p.ChannelID == "" || (p.Content == "" && len(p.Attachments) == 0) {
		return errs.ErrBadEvent.WrapMsg("send-message", "channel", p.ChannelID)
	}

	// saved first: a message that was never durably created must not fan out
	sctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	msg, err := s.deps.Msgs.Save(sctx, p.ChannelID, c.UserID(), p.Content, p.Attachments, p.ThreadID)
	if err != nil {
		logger.Errorf("[send-message] save failed channel=%s user=%s err=%v", p.ChannelID, c.UserID(), err)
		s.sendError(c, errs.ErrMessageSave.Code, errs.ErrMessageSave.Msg)
		return nil
	}

	// one broadcast per topic: the channel always, the thread when set
	body := map[string]any{"message": msg}
	s.broadcast(ChannelTopic(p.ChannelID), EvNewMessage, body, "")
	if p.ThreadID != "" {
		s.broadcast(ThreadTopic(p.ThreadID), EvNewThreadMessage, body, "")
	}

	if s.deps.Events != nil {
		safe.Go(func() {
			if err := s.deps.Events.PublishMessageEvent(msg); err != nil {
				logger.Errorf("[send-message] event publish failed msg=%s err=%v", msg.MessageID, err)
			}
		})
	}
	return nil
}

func onTyping(s *Server, c *Client, data map[string]any) error {
	p, err := payload[TypingPayload](data)
	if err != nil {
		return errs.ErrBadEvent.WrapMsg("typing", "err", err)
	}
	if p.ChannelID == "" {
		return errs.ErrBadEvent.WrapMsg("typing", "channel", p.ChannelID)
	}
	// the typist's own connection is excluded so they never see their echo
	s.broadcast(ChannelTopic(p.ChannelID), EvTyping, map[string]any{
		"channelId": p.ChannelID,
		"userId":    c.UserID(),
		"username":  c.Identity.Username,
		"isTyping":  p.IsTyping,
	}, c.ConnID)
	return nil
}

func onJoinChannel(s *Server, c *Client, data map[string]any) error {
	return subscribeTopic(s, c, data, ChannelTopic, true)
}

func onLeaveChannel(s *Server, c *Client, data map[string]any) error {
	return subscribeTopic(s, c, data, ChannelTopic, false)
}

func onJoinThread(s *Server, c *Client, data map[string]any) error {
	return subscribeTopic(s, c, data, ThreadTopic, true)
}

func onLeaveThread(s *Server, c *Client, data map[string]any) error {
	return subscribeTopic(s, c, data, ThreadTopic, false)
}

func subscribeTopic(s *Server, c *Client, data map[string]any, topic func(string) string, join bool) error {
	p, err := payload[TopicPayload](data)
	if err != nil || p.ID == "" {
		return errs.ErrBadEvent.WrapMsg("topic", "err", err)
	}
	if join {
		s.topics.Subscribe(c, topic(p.ID))
	} else {
		s.topics.Unsubscribe(c.ConnID, topic(p.ID))
	}
	return nil
}

// screenShareHandler handles both start and stop; the inbound event name is
// mirrored to the room, so peers see exactly what the sharer sent.
func screenShareHandler(event string) HandlerFunc {
	return func(s *Server, c *Client, data map[string]any) error {
		p, err := payload[ScreenSharePayload](data)
		if err != nil {
			return errs.ErrBadEvent.WrapMsg("screen-share", "err", err)
		}
		if p.RoomID == "" || !identityMatches(c, p.UserID) {
			return errs.ErrBadEvent.WrapMsg("screen-share", "room", p.RoomID)
		}
		s.broadcast(RoomTopic(p.RoomID), event, map[string]any{
			"roomId": p.RoomID,
			"userId": c.UserID(),
		}, c.ConnID)
		return nil
	}
}

func onSendChatMessage(s *Server, c *Client, data map[string]any) error {
	p, err := payload[RoomChatPayload](data)
	if err != nil {
		return errs.ErrBadEvent.WrapMsg("send-chat-message", "err", err)
	}
	if p.RoomID == "" || p.Message == "" || !identityMatches(c, p.UserID) {
		return errs.ErrBadEvent.WrapMsg("send-chat-message", "room", p.RoomID)
	}
	ts := p.Timestamp
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	// in-call chat is ephemeral: fan out only, never persisted. The sender
	// is included so all of their tabs stay in sync.
	s.broadcast(RoomChatTopic(p.RoomID), EvReceiveChatMessage, map[string]any{
		"roomId":    p.RoomID,
		"userId":    c.UserID(),
		"username":  c.Identity.Username,
		"message":   p.Message,
		"timestamp": ts,
	}, "")
	return nil
}

func onPing(s *Server, c *Client, _ map[string]any) error {
	c.Enqueue(BuildFrame(EvPong, map[string]any{"ts": time.Now().UnixMilli()}))
	return nil
}
