package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

// ---------------------------------------------------------------------------
// Sync lease
// ---------------------------------------------------------------------------

// RedisLease guards sync runs across replicas with a SETNX lease keyed by
// operation name. The TTL bounds how long a crashed run can block the next
// one.
type RedisLease struct {
	client *redis.Client
}

var _ syncdomain.Lease = (*RedisLease)(nil)

// NewRedisLease creates a Redis-backed sync lease
func NewRedisLease(client *redis.Client) *RedisLease {
	return &RedisLease{client: client}
}

func leaseKey(operation string) string {
	return "eskimo:lease:" + operation
}

// Acquire attempts to take the lease for the named operation
func (l *RedisLease) Acquire(ctx context.Context, operation string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, leaseKey(operation), time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

// Release frees the lease for the named operation
func (l *RedisLease) Release(ctx context.Context, operation string) error {
	return l.client.Del(ctx, leaseKey(operation)).Err()
}

// ---------------------------------------------------------------------------
// In-process lease
// ---------------------------------------------------------------------------

// MemoryLease guards sync runs within a single process. Held leases expire
// after their TTL so a stuck run cannot block forever.
type MemoryLease struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

var _ syncdomain.Lease = (*MemoryLease)(nil)

// NewMemoryLease creates an in-process sync lease
func NewMemoryLease() *MemoryLease {
	return &MemoryLease{
		held:  make(map[string]time.Time),
		clock: time.Now,
	}
}

// Acquire attempts to take the lease for the named operation
func (l *MemoryLease) Acquire(_ context.Context, operation string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if expiry, ok := l.held[operation]; ok && now.Before(expiry) {
		return false, nil
	}
	l.held[operation] = now.Add(ttl)
	return true, nil
}

// Release frees the lease for the named operation
func (l *MemoryLease) Release(_ context.Context, operation string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, operation)
	return nil
}
