// Package aggregate derives the per-counterparty conversation list from the
// flat message log. The derivation is a pure function of its inputs, which is
// what makes re-running it on every change event safe: there is no
// incremental state to drift.
package aggregate

import (
	"context"
	"errors"
	"sort"

	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/directory"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/domain"
)

// Directory is the slice of the directory service the aggregator needs.
type Directory interface {
	Resolve(ctx context.Context, communityID, userID string) (*domain.Participant, error)
}

// Aggregate turns the user's full message history into one conversation per
// (community, counterparty) pair.
//
// Messages are grouped by counterparty within each community. Counterparties
// the directory cannot resolve are excluded silently; a stale id after
// directory changes is policy, not an error. The latest message by createdAt
// wins as lastMessage, with record id as the tie-break. Unread counts only
// messages addressed to self. Drafts are explicitly started zero-message
// conversations; one is appended only when no derived conversation already
// claims its key.
//
// A hard directory failure aborts the pass so the caller keeps its previous
// snapshot instead of publishing a partial one.
func Aggregate(
	ctx context.Context,
	selfID string,
	memberships []domain.Membership,
	byCommunity map[string][]domain.Message,
	dir Directory,
	drafts []domain.Conversation,
) ([]domain.Conversation, error) {
	out := []domain.Conversation{}
	seen := map[string]bool{}

	for _, mb := range memberships {
		groups := map[string][]domain.Message{}
		for _, m := range byCommunity[mb.CommunityID] {
			if m.SenderID == m.ReceiverID {
				continue
			}
			cp := m.Counterparty(selfID)
			groups[cp] = append(groups[cp], m)
		}

		// Deterministic resolve and output order regardless of map iteration.
		counterparties := make([]string, 0, len(groups))
		for cp := range groups {
			counterparties = append(counterparties, cp)
		}
		sort.Strings(counterparties)

		for _, cp := range counterparties {
			p, err := dir.Resolve(ctx, mb.CommunityID, cp)
			if errors.Is(err, directory.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}

			msgs := groups[cp]
			sortChronological(msgs)
			last := msgs[len(msgs)-1]

			unread := 0
			for _, m := range msgs {
				if m.ReceiverID == selfID && !m.IsRead {
					unread++
				}
			}

			key := domain.ConversationKey(mb.CommunityID, selfID, cp)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, domain.Conversation{
				Key:           key,
				CommunityID:   mb.CommunityID,
				CommunityName: mb.CommunityName,
				SelfID:        selfID,
				Counterparty:  *p,
				LastMessage:   &last,
				UnreadCount:   unread,
			})
		}
	}

	for _, d := range drafts {
		if seen[d.Key] {
			continue
		}
		seen[d.Key] = true
		out = append(out, d)
	}

	sortConversations(out)
	return out, nil
}

// sortChronological orders messages by createdAt then id ascending, so the
// final element is the latest even when the store's clock resolution allows
// equal timestamps.
func sortChronological(msgs []domain.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
}

// sortConversations puts freshly started conversations first, then most
// recent activity, with the key as a stable final tie-break.
func sortConversations(convs []domain.Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		a, b := convs[i], convs[j]
		switch {
		case a.LastMessage == nil && b.LastMessage == nil:
			return a.Key < b.Key
		case a.LastMessage == nil:
			return true
		case b.LastMessage == nil:
			return false
		case !a.LastMessage.CreatedAt.Equal(b.LastMessage.CreatedAt):
			return a.LastMessage.CreatedAt.After(b.LastMessage.CreatedAt)
		default:
			return a.Key < b.Key
		}
	})
}
