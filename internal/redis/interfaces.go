package redis

import (
	"context"
	"time"

	"booking/internal/userdirectory"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (string, error)
	ReleaseDriverLock(ctx context.Context, driverID, token string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface         = (*LockStore)(nil)
	_ userdirectory.ProfileCache = (*CacheStore)(nil)
)
