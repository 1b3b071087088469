package hub

import (
	"encoding/json"
	"fmt"

	"collabhub/module/chat/model"
	"collabhub/tools/decode"
)

// Inbound event names, as sent by clients.
const (
	EvJoinRoom         = "join-room"
	EvLeaveRoom        = "leave-room"
	EvSendingSignal    = "sending-signal"
	EvReturningSignal  = "returning-signal"
	EvSendMessage      = "send-message"
	EvTyping           = "typing"
	EvJoinChannel      = "join-channel"
	EvLeaveChannel     = "leave-channel"
	EvJoinThread       = "join-thread"
	EvLeaveThread      = "leave-thread"
	EvStartScreenShare = "start-screen-share"
	EvStopScreenShare  = "stop-screen-share"
	EvSendChatMessage  = "send-chat-message"
	EvPing             = "ping"
)

// Outbound event names, as delivered to clients.
const (
	EvExistingPeers      = "existing-peers"
	EvUserJoined         = "user-joined"
	EvUserLeft           = "user-left"
	EvReceivingSignal    = "receiving-signal"
	EvReceivingReturned  = "receiving-returned-signal"
	EvNewMessage         = "new-message"
	EvNewThreadMessage   = "new-thread-message"
	EvReceiveChatMessage = "receive-chat-message"
	EvNewInvitation      = "new-invitation"
	EvNewAccessRequest   = "new-access-request"
	EvMeetingInvite      = "meeting-invite"
	EvError              = "error"
	EvPong               = "pong"
)

// Envelope is the wire frame in both directions:
// {"event": "...", "data": {...}}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ParseFrame decodes an inbound frame into the event name and its loosely
// typed data object. Handlers decode data into their payload structs.
func ParseFrame(raw []byte) (string, map[string]any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", nil, fmt.Errorf("unmarshal frame: %w", err)
	}
	if env.Event == "" {
		return "", nil, fmt.Errorf("frame missing event name")
	}
	data := map[string]any{}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return "", nil, fmt.Errorf("unmarshal frame data: %w", err)
		}
	}
	return env.Event, data, nil
}

// BuildFrame encodes an outbound frame. Marshal errors only happen for
// non-encodable payloads, which is a programming bug; callers get nil bytes
// and skip the send.
func BuildFrame(event string, data any) []byte {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil
		}
		raw = b
	}
	out, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		return nil
	}
	return out
}

// ---- inbound payloads ----

type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type SignalPayload struct {
	ReceiverID string         `json:"receiverId"`
	SenderID   string         `json:"senderId"`
	Signal     map[string]any `json:"signal"`
}

type SendMessagePayload struct {
	ChannelID   string             `json:"channelId"`
	Content     string             `json:"content"`
	Attachments []model.Attachment `json:"attachments"`
	ThreadID    string             `json:"threadId"`
}

type TypingPayload struct {
	ChannelID string `json:"channelId"`
	IsTyping  bool   `json:"isTyping"`
}

type TopicPayload struct {
	ID string `json:"id"`
}

type ScreenSharePayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type RoomChatPayload struct {
	RoomID    string `json:"roomId"`
	UserID    string `json:"userId"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

func payload[T any](data map[string]any) (*T, error) {
	return decode.Map[T](data)
}
