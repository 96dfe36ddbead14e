package domain

import "time"

// Message is an immutable directed message between two participants of a
// community. IsRead flips false->true exactly once, through the store's bulk
// mark-read operation.
type Message struct {
	ID          string    `bson:"_id" json:"id"`
	CommunityID string    `bson:"community_id" json:"community_id"`
	SenderID    string    `bson:"sender_id" json:"sender_id"`
	ReceiverID  string    `bson:"receiver_id" json:"receiver_id"`
	Content     string    `bson:"content" json:"content"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	IsRead      bool      `bson:"is_read" json:"is_read"`
}

// Counterparty returns the participant on the other side of the message
// relative to selfID.
func (m Message) Counterparty(selfID string) string {
	if m.SenderID == selfID {
		return m.ReceiverID
	}
	return m.SenderID
}
