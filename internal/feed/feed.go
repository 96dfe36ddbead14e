package feed

import (
	"context"

	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/domain"
)

// Subscription is a live event delivery that can be stopped deterministically.
type Subscription interface {
	Cancel() error
}

// Feed delivers an event for every message committed to a community's log.
// Delivery order is guaranteed within one community's subscription only.
type Feed interface {
	Subscribe(communityID string, onInsert func(domain.Message)) (Subscription, error)
}

// Publisher announces a committed message to the feed.
type Publisher interface {
	MessageCreated(ctx context.Context, m *domain.Message) error
}
