package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"booking/internal/userdirectory"
)

// DefaultProfileCacheTTL bounds how stale an enriched name or phone can be.
const DefaultProfileCacheTTL = 5 * time.Minute

const profileCachePrefix = "cache:user:"

// CacheStore caches user profiles in Redis as JSON.
type CacheStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCacheStore creates a new CacheStore. A non-positive ttl uses DefaultProfileCacheTTL.
func NewCacheStore(client *redis.Client, ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		ttl = DefaultProfileCacheTTL
	}
	return &CacheStore{client: client, ttl: ttl}
}

// GetProfile retrieves a profile from cache. A miss returns (nil, nil).
func (s *CacheStore) GetProfile(ctx context.Context, userID string) (*userdirectory.Profile, error) {
	data, err := s.client.Get(ctx, profileCachePrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var profile userdirectory.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetProfile stores the profile returned for userID.
func (s *CacheStore) SetProfile(ctx context.Context, userID string, profile *userdirectory.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, profileCachePrefix+userID, data, s.ttl).Err()
}
