package userdirectory

import (
	"context"

	"github.com/sirupsen/logrus"
)

// ProfileCache stores profiles between lookups, keyed by the looked-up user id.
// A miss returns (nil, nil).
type ProfileCache interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	SetProfile(ctx context.Context, userID string, profile *Profile) error
}

// CachedDirectory serves profiles from a cache and falls through to the wrapped directory.
// Cache errors are logged and treated as misses.
type CachedDirectory struct {
	next  Directory
	cache ProfileCache
	log   logrus.FieldLogger
}

// NewCachedDirectory creates a CachedDirectory.
func NewCachedDirectory(next Directory, cache ProfileCache, log logrus.FieldLogger) *CachedDirectory {
	return &CachedDirectory{next: next, cache: cache, log: log}
}

// GetUser returns the cached profile or fetches and caches it.
func (d *CachedDirectory) GetUser(ctx context.Context, userID string) (*Profile, error) {
	profile, err := d.cache.GetProfile(ctx, userID)
	if err != nil {
		d.log.WithError(err).WithField("user_id", userID).Warn("profile cache read failed")
	}
	if profile != nil {
		return profile, nil
	}

	profile, err = d.next.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := d.cache.SetProfile(ctx, userID, profile); err != nil {
		d.log.WithError(err).WithField("user_id", userID).Warn("profile cache write failed")
	}
	return profile, nil
}

var _ Directory = (*CachedDirectory)(nil)
