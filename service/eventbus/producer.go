// Package eventbus publishes message events to Kafka for downstream
// consumers (unread counters, search indexing). Fire-and-forget from the
// hub's perspective: a publish failure is logged and never blocks fan-out.
package eventbus

import (
	"encoding/json"
	"time"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"

	"collabhub/module/chat/model"
)

type Producer struct {
	topic string
	sp    sarama.SyncProducer
}

func buildConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 1
	// key controls the partition: one partition per channel keeps
	// per-channel event order for consumers
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Net.DialTimeout = 10 * time.Second
	cfg.Net.WriteTimeout = 30 * time.Second
	return cfg
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	client, err := sarama.NewClient(brokers, buildConfig())
	if err != nil {
		return nil, errors.Wrap(err, "kafka client")
	}
	sp, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		return nil, errors.Wrap(err, "kafka sync producer")
	}
	return &Producer{topic: topic, sp: sp}, nil
}

// MessageEvent is the record produced for every persisted chat message.
type MessageEvent struct {
	MessageID string `json:"messageId"`
	ChannelID string `json:"channelId"`
	ThreadID  string `json:"threadId,omitempty"`
	SenderID  string `json:"senderId"`
	Ts        int64  `json:"ts"`
}

func (p *Producer) PublishMessageEvent(msg *model.Message) error {
	ev := MessageEvent{
		MessageID: msg.MessageID,
		ChannelID: msg.ChannelID,
		ThreadID:  msg.ThreadID,
		SenderID:  msg.SenderID,
		Ts:        msg.CreateTime.UnixMilli(),
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, _, err = p.sp.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(msg.ChannelID),
		Value: sarama.ByteEncoder(b),
	})
	return errors.Wrapf(err, "publish message event %s", msg.MessageID)
}

func (p *Producer) Close() error { return p.sp.Close() }
