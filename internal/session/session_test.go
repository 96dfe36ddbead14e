package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/domain"
)

func TestSelectionLifecycle(t *testing.T) {
	s := New("alice", nil)
	require.Nil(t, s.Selected())

	s.Select(domain.Selection{ConversationKey: "k", CommunityID: "c1"})
	sel := s.Selected()
	require.NotNil(t, sel)
	require.Equal(t, "k", sel.ConversationKey)

	s.Deselect()
	require.Nil(t, s.Selected())
}

func TestAddDraftIgnoresDuplicates(t *testing.T) {
	s := New("alice", nil)
	d := domain.Conversation{Key: "k1"}
	s.AddDraft(d)
	s.AddDraft(d)
	require.Len(t, s.Drafts(), 1)
}

func TestResetClearsSelectionAndDrafts(t *testing.T) {
	s := New("alice", nil)
	s.Select(domain.Selection{ConversationKey: "k", CommunityID: "c1"})
	s.AddDraft(domain.Conversation{Key: "k"})

	s.Reset()
	require.Nil(t, s.Selected())
	require.Empty(t, s.Drafts())
}

func TestMembershipsReturnsCopy(t *testing.T) {
	ms := []domain.Membership{{CommunityID: "c1"}}
	s := New("alice", ms)
	got := s.Memberships()
	got[0].CommunityID = "mutated"
	require.Equal(t, "c1", s.Memberships()[0].CommunityID)
}
