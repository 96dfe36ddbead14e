package domain

import "strings"

// ConversationKey identifies a conversation by community plus the unordered
// pair of participant ids, so both sides derive the same key.
func ConversationKey(communityID, a, b string) string {
	if b < a {
		a, b = b, a
	}
	return strings.Join([]string{communityID, a, b}, ":")
}

// Conversation is a derived view over the message log, never stored. A
// conversation with no messages yet (freshly started) has LastMessage nil and
// UnreadCount zero.
type Conversation struct {
	Key           string      `json:"key"`
	CommunityID   string      `json:"community_id"`
	CommunityName string      `json:"community_name"`
	SelfID        string      `json:"self_id"`
	Counterparty  Participant `json:"counterparty"`
	LastMessage   *Message    `json:"last_message,omitempty"`
	UnreadCount   int         `json:"unread_count"`
}

// Selection points at the currently open conversation, if any. Background
// refreshes never change it; only explicit user action does.
type Selection struct {
	ConversationKey string `json:"conversation_key"`
	CommunityID     string `json:"community_id"`
}
