package feed

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/domain"
)

const subjectPrefix = "community.messages."

// Bus is the NATS-backed change feed. One subject per community keeps each
// subscription scoped server-side, so a session never receives another
// community's traffic.
type Bus struct {
	nc  *nats.Conn
	log *zap.SugaredLogger
}

func NewBus(nc *nats.Conn, log *zap.SugaredLogger) *Bus {
	return &Bus{nc: nc, log: log}
}

func (b *Bus) Subscribe(communityID string, onInsert func(domain.Message)) (Subscription, error) {
	sub, err := b.nc.Subscribe(subjectPrefix+communityID, func(msg *nats.Msg) {
		var m domain.Message
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			b.log.Warnw("drop malformed feed event", "subject", msg.Subject, "err", err)
			return
		}
		onInsert(m)
	})
	if err != nil {
		return nil, err
	}
	return &natsSubscription{sub: sub}, nil
}

func (b *Bus) MessageCreated(_ context.Context, m *domain.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return b.nc.Publish(subjectPrefix+m.CommunityID, data)
}

type natsSubscription struct {
	sub *nats.Subscription
}

func (s *natsSubscription) Cancel() error {
	return s.sub.Unsubscribe()
}

var (
	_ Feed      = (*Bus)(nil)
	_ Publisher = (*Bus)(nil)
)
