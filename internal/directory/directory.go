package directory

import (
	"context"
	"errors"

	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/domain"
)

// ErrNotFound marks a lookup whose subject does not exist in the directory.
// Callers treat it as "absent", distinct from an infrastructure failure.
var ErrNotFound = errors.New("directory: not found")

// Resolver is the read-only directory of communities and their participants.
type Resolver interface {
	// Resolve maps (community, user) to a participant with a known role.
	// Returns ErrNotFound for unknown users and for records whose role falls
	// outside the closed resident/board set.
	Resolve(ctx context.Context, communityID, userID string) (*domain.Participant, error)
	// CommunityName resolves a community id to its display name.
	CommunityName(ctx context.Context, communityID string) (string, error)
	// Memberships lists the communities the user belongs to.
	Memberships(ctx context.Context, userID string) ([]domain.Membership, error)
}
