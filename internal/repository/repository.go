package repository

import (
	"context"
	"errors"

	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/domain"
)

var ErrNotFound = errors.New("not found")

// MessageStore is the durable, append-only message log. The core never caches
// store contents as a source of truth; every view is re-derived from a fresh
// read.
type MessageStore interface {
	// FetchMessages returns every message in the community where userID is
	// sender or receiver, in no guaranteed order.
	FetchMessages(ctx context.Context, communityID, userID string) ([]domain.Message, error)
	// FetchThread returns both directions of traffic between userA and userB
	// in chronological order.
	FetchThread(ctx context.Context, communityID, userA, userB string) ([]domain.Message, error)
	// InsertMessage appends a new unread message and returns it.
	InsertMessage(ctx context.Context, communityID, senderID, receiverID, content string) (*domain.Message, error)
	// MarkRead marks all unread messages from senderID to receiverID in the
	// community as read. Bulk by design; there are no per-message receipts.
	MarkRead(ctx context.Context, communityID, senderID, receiverID string) error
}
