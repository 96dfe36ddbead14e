package aggregate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/directory"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/domain"
)

type fakeDirectory struct {
	participants map[string]domain.Participant // "community:user"
	err          error
}

func (d *fakeDirectory) Resolve(_ context.Context, communityID, userID string) (*domain.Participant, error) {
	if d.err != nil {
		return nil, d.err
	}
	p, ok := d.participants[communityID+":"+userID]
	if !ok {
		return nil, directory.ErrNotFound
	}
	return &p, nil
}

func dirWith(communityID string, users ...string) *fakeDirectory {
	d := &fakeDirectory{participants: map[string]domain.Participant{}}
	for _, u := range users {
		d.participants[communityID+":"+u] = domain.Participant{ID: u, DisplayName: "User " + u, Role: domain.RoleResident}
	}
	return d
}

func msg(id, community, sender, receiver string, at time.Time, read bool) domain.Message {
	return domain.Message{
		ID:          id,
		CommunityID: community,
		SenderID:    sender,
		ReceiverID:  receiver,
		Content:     "msg " + id,
		CreatedAt:   at,
		IsRead:      read,
	}
}

var (
	hoa  = []domain.Membership{{CommunityID: "c1", CommunityName: "Elm Street HOA"}}
	base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func TestAggregateDedupesByCounterparty(t *testing.T) {
	for _, tc := range []struct {
		name  string
		count int
	}{
		{"no messages", 0},
		{"one message", 1},
		{"many messages", 7},
	} {
		t.Run(tc.name, func(t *testing.T) {
			msgs := []domain.Message{}
			for i := 0; i < tc.count; i++ {
				sender, receiver := "bob", "alice"
				if i%2 == 0 {
					sender, receiver = receiver, sender
				}
				msgs = append(msgs, msg(string(rune('a'+i)), "c1", sender, receiver, base.Add(time.Duration(i)*time.Minute), false))
			}
			convs, err := Aggregate(context.Background(), "alice", hoa,
				map[string][]domain.Message{"c1": msgs}, dirWith("c1", "bob"), nil)
			require.NoError(t, err)
			if tc.count == 0 {
				require.Empty(t, convs)
				return
			}
			require.Len(t, convs, 1)
			require.Equal(t, domain.ConversationKey("c1", "alice", "bob"), convs[0].Key)
		})
	}
}

func TestAggregateLatestMessageWins(t *testing.T) {
	msgs := []domain.Message{
		msg("m2", "c1", "alice", "bob", base.Add(2*time.Minute), true),
		msg("m3", "c1", "bob", "alice", base.Add(3*time.Minute), false),
		msg("m1", "c1", "bob", "alice", base.Add(1*time.Minute), true),
	}
	convs, err := Aggregate(context.Background(), "alice", hoa,
		map[string][]domain.Message{"c1": msgs}, dirWith("c1", "bob"), nil)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	require.NotNil(t, convs[0].LastMessage)
	require.Equal(t, "msg m3", convs[0].LastMessage.Content)
}

func TestAggregateTimestampTieBrokenByID(t *testing.T) {
	msgs := []domain.Message{
		msg("m-b", "c1", "bob", "alice", base, true),
		msg("m-a", "c1", "alice", "bob", base, true),
	}
	convs, err := Aggregate(context.Background(), "alice", hoa,
		map[string][]domain.Message{"c1": msgs}, dirWith("c1", "bob"), nil)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	require.Equal(t, "m-b", convs[0].LastMessage.ID)
}

func TestAggregateUnreadCountsOnlyMessagesToSelf(t *testing.T) {
	msgs := []domain.Message{
		msg("m1", "c1", "bob", "alice", base.Add(1*time.Minute), false),
		msg("m2", "c1", "bob", "alice", base.Add(2*time.Minute), false),
		msg("m3", "c1", "bob", "alice", base.Add(3*time.Minute), false),
		msg("m4", "c1", "bob", "alice", base.Add(4*time.Minute), true),
		msg("m5", "c1", "bob", "alice", base.Add(5*time.Minute), true),
		// outgoing unread messages never count against self
		msg("m6", "c1", "alice", "bob", base.Add(6*time.Minute), false),
	}
	convs, err := Aggregate(context.Background(), "alice", hoa,
		map[string][]domain.Message{"c1": msgs}, dirWith("c1", "bob"), nil)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	require.Equal(t, 3, convs[0].UnreadCount)
}

func TestAggregateExcludesUnresolvedCounterparties(t *testing.T) {
	msgs := []domain.Message{
		msg("m1", "c1", "bob", "alice", base, false),
		msg("m2", "c1", "ghost", "alice", base.Add(time.Minute), false),
	}
	convs, err := Aggregate(context.Background(), "alice", hoa,
		map[string][]domain.Message{"c1": msgs}, dirWith("c1", "bob"), nil)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	require.Equal(t, "bob", convs[0].Counterparty.ID)
}

func TestAggregateHardDirectoryFailureAborts(t *testing.T) {
	msgs := []domain.Message{msg("m1", "c1", "bob", "alice", base, false)}
	d := dirWith("c1", "bob")
	d.err = context.DeadlineExceeded
	_, err := Aggregate(context.Background(), "alice", hoa,
		map[string][]domain.Message{"c1": msgs}, d, nil)
	require.Error(t, err)
}

func TestAggregateAppendsDraftsWithoutMessages(t *testing.T) {
	draft := domain.Conversation{
		Key:          domain.ConversationKey("c1", "alice", "carol"),
		CommunityID:  "c1",
		SelfID:       "alice",
		Counterparty: domain.Participant{ID: "carol", Role: domain.RoleResident},
	}
	convs, err := Aggregate(context.Background(), "alice", hoa,
		map[string][]domain.Message{}, dirWith("c1", "bob"), []domain.Conversation{draft})
	require.NoError(t, err)
	require.Len(t, convs, 1)
	require.Nil(t, convs[0].LastMessage)
	require.Zero(t, convs[0].UnreadCount)
}

func TestAggregateDerivedConversationSupersedesDraft(t *testing.T) {
	draft := domain.Conversation{
		Key:          domain.ConversationKey("c1", "alice", "bob"),
		CommunityID:  "c1",
		SelfID:       "alice",
		Counterparty: domain.Participant{ID: "bob", Role: domain.RoleResident},
	}
	msgs := []domain.Message{msg("m1", "c1", "alice", "bob", base, false)}
	convs, err := Aggregate(context.Background(), "alice", hoa,
		map[string][]domain.Message{"c1": msgs}, dirWith("c1", "bob"), []domain.Conversation{draft})
	require.NoError(t, err)
	require.Len(t, convs, 1)
	require.NotNil(t, convs[0].LastMessage, "derived conversation wins over the draft")
}

func TestAggregateIsIdempotent(t *testing.T) {
	memberships := []domain.Membership{
		{CommunityID: "c1", CommunityName: "Elm Street HOA"},
		{CommunityID: "c2", CommunityName: "Oak Park HOA"},
	}
	d := dirWith("c1", "bob", "carol")
	d.participants["c2:dan"] = domain.Participant{ID: "dan", DisplayName: "User dan", Role: domain.RoleBoard}
	byCommunity := map[string][]domain.Message{
		"c1": {
			msg("m1", "c1", "bob", "alice", base.Add(1*time.Minute), false),
			msg("m2", "c1", "alice", "carol", base.Add(2*time.Minute), false),
		},
		"c2": {
			msg("m3", "c2", "dan", "alice", base.Add(3*time.Minute), false),
		},
	}

	first, err := Aggregate(context.Background(), "alice", memberships, byCommunity, d, nil)
	require.NoError(t, err)
	second, err := Aggregate(context.Background(), "alice", memberships, byCommunity, d, nil)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, first, 3)
}

func TestAggregatePartitionsByCommunity(t *testing.T) {
	memberships := []domain.Membership{
		{CommunityID: "c1", CommunityName: "Elm Street HOA"},
		{CommunityID: "c2", CommunityName: "Oak Park HOA"},
	}
	d := dirWith("c1", "bob")
	d.participants["c2:bob"] = domain.Participant{ID: "bob", DisplayName: "User bob", Role: domain.RoleResident}
	byCommunity := map[string][]domain.Message{
		"c1": {msg("m1", "c1", "bob", "alice", base, false)},
		"c2": {msg("m2", "c2", "bob", "alice", base.Add(time.Minute), false)},
	}
	convs, err := Aggregate(context.Background(), "alice", memberships, byCommunity, d, nil)
	require.NoError(t, err)
	require.Len(t, convs, 2, "same counterparty in two communities stays two conversations")
}

func TestAggregateSkipsSelfMessages(t *testing.T) {
	msgs := []domain.Message{msg("m1", "c1", "alice", "alice", base, false)}
	convs, err := Aggregate(context.Background(), "alice", hoa,
		map[string][]domain.Message{"c1": msgs}, dirWith("c1", "bob"), nil)
	require.NoError(t, err)
	require.Empty(t, convs)
}
