// Package session holds the explicit per-user context shared by the
// dispatcher and the view controller: identity, community memberships, the
// current selection, and unpersisted conversation drafts. It replaces what
// would otherwise be ambient globals.
package session

import (
	"sync"

	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/domain"
)

type Session struct {
	userID string

	mu          sync.RWMutex
	memberships []domain.Membership
	selection   *domain.Selection
	drafts      []domain.Conversation
}

func New(userID string, memberships []domain.Membership) *Session {
	return &Session{
		userID:      userID,
		memberships: append([]domain.Membership(nil), memberships...),
	}
}

func (s *Session) UserID() string { return s.userID }

func (s *Session) Memberships() []domain.Membership {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Membership(nil), s.memberships...)
}

func (s *Session) SetMemberships(ms []domain.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships = append([]domain.Membership(nil), ms...)
}

// Selected returns a copy of the current selection, or nil.
func (s *Session) Selected() *domain.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selection == nil {
		return nil
	}
	sel := *s.selection
	return &sel
}

func (s *Session) Select(sel domain.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = &sel
}

func (s *Session) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = nil
}

// AddDraft records an explicitly started zero-message conversation. Adding a
// draft whose key already exists is a no-op.
func (s *Session) AddDraft(c domain.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.drafts {
		if d.Key == c.Key {
			return
		}
	}
	s.drafts = append(s.drafts, c)
}

func (s *Session) Drafts() []domain.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Conversation(nil), s.drafts...)
}

// Reset clears selection and drafts on teardown.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = nil
	s.drafts = nil
}
