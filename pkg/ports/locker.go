package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serialises missions of one robot across server instances.
type DistributedLocker interface {
	// Lock blocks until the lock on key (a robot ID) is held or ctx is done.
	// The lock expires after ttl if its holder disappears. The returned UnlockFunc
	// must be called once the mission is recorded; it only releases a lock it still owns.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
