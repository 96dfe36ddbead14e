package directory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/domain"
)

// CachedResolver is a read-through Redis cache in front of another resolver.
// Cache failures degrade to direct reads; negative results are not cached so a
// newly added participant shows up immediately.
type CachedResolver struct {
	next Resolver
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.SugaredLogger
}

func NewCachedResolver(next Resolver, rdb *redis.Client, ttl time.Duration, log *zap.SugaredLogger) *CachedResolver {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedResolver{next: next, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedResolver) Resolve(ctx context.Context, communityID, userID string) (*domain.Participant, error) {
	key := "dir:participant:" + communityID + ":" + userID
	if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
		var p domain.Participant
		if json.Unmarshal([]byte(raw), &p) == nil {
			return &p, nil
		}
	} else if err != redis.Nil {
		c.log.Debugw("directory cache read", "key", key, "err", err)
	}

	p, err := c.next.Resolve(ctx, communityID, userID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			c.log.Debugw("directory cache write", "key", key, "err", err)
		}
	}
	return p, nil
}

func (c *CachedResolver) CommunityName(ctx context.Context, communityID string) (string, error) {
	key := "dir:community:" + communityID
	if name, err := c.rdb.Get(ctx, key).Result(); err == nil {
		return name, nil
	} else if err != redis.Nil {
		c.log.Debugw("directory cache read", "key", key, "err", err)
	}

	name, err := c.next.CommunityName(ctx, communityID)
	if err != nil {
		return "", err
	}
	if err := c.rdb.Set(ctx, key, name, c.ttl).Err(); err != nil {
		c.log.Debugw("directory cache write", "key", key, "err", err)
	}
	return name, nil
}

// Memberships is not cached: the membership list drives subscription
// lifecycles and must reflect the directory promptly.
func (c *CachedResolver) Memberships(ctx context.Context, userID string) ([]domain.Membership, error) {
	return c.next.Memberships(ctx, userID)
}

var _ Resolver = (*CachedResolver)(nil)
