package model

import (
	"time"
)

// Attachment is a file reference carried by a chat message.
type Attachment struct {
	URL      string `bson:"url" json:"url"`
	Name     string `bson:"name,omitempty" json:"name,omitempty"`
	MimeType string `bson:"mime_type,omitempty" json:"mimeType,omitempty"`
	Size     int64  `bson:"size,omitempty" json:"size,omitempty"`
}

// Message is the persisted chat message. The hub writes it before fanning
// out so the broadcast payload carries a durable id; queries over history
// belong to the CRUD layer.
type Message struct {
	MessageID   string       `bson:"message_id" json:"messageId"`
	ChannelID   string       `bson:"channel_id" json:"channelId"`
	ThreadID    string       `bson:"thread_id,omitempty" json:"threadId,omitempty"`
	SenderID    string       `bson:"sender_id" json:"senderId"`
	Content     string       `bson:"content" json:"content"`
	Attachments []Attachment `bson:"attachments,omitempty" json:"attachments,omitempty"`

	CreateTime time.Time `bson:"create_time" json:"createTime"`
}

func (Message) TableName() string { return "messages" }
