package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/domain"
)

// Producer exports message-created events for downstream consumers
// (notifications, analytics). Best-effort: callers log failures and move on.
type Producer struct {
	writer *kafkago.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
		Async:        false,
	}
	return &Producer{writer: w}
}

func (p *Producer) MessageCreated(ctx context.Context, m *domain.Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	msg := kafkago.Message{
		Key:   []byte(m.CommunityID),
		Value: b,
		Time:  time.Now(),
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
