package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"

	"collabhub/module/chat/model"
	"collabhub/tools/ids"
)

// MessageStore persists chat messages before fan-out so every broadcast
// payload carries a durable message id.
type MessageStore struct {
	coll *mongo.Collection
}

func NewMessageStore(db *mongo.Database) *MessageStore {
	return &MessageStore{coll: db.Collection(model.Message{}.TableName())}
}

func (s *MessageStore) Save(sctx context.Context, channelID, senderID, content string, attachments []model.Attachment, threadID string) (*model.Message, error) {
	msg := &model.Message{
		MessageID:   ids.GenerateString(),
		ChannelID:   channelID,
		ThreadID:    threadID,
		SenderID:    senderID,
		Content:     content,
		Attachments: attachments,
		CreateTime:  time.Now(),
	}
	if _, err := s.coll.InsertOne(sctx, msg); err != nil {
		return nil, errors.Wrapf(err, "insert message channel=%s sender=%s", channelID, senderID)
	}
	return msg, nil
}
