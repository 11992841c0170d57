package redisstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	acquireBudget = 2 * time.Second
	retryDelay    = 50 * time.Millisecond
)

// unlockScript deletes the lock only if it is still held by this owner.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// SlotLock serializes booking creation per (station, slot) with a
// redis SET NX lock. It closes the check-then-act window between the
// conflict scan and the insert.
type SlotLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSlotLock returns a redis-backed lock with the given hold TTL.
func NewSlotLock(client *redis.Client, ttl time.Duration) *SlotLock {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &SlotLock{client: client, ttl: ttl}
}

func (l *SlotLock) key(stationID, slotID string) string {
	return fmt.Sprintf("bookings:lock:%s:%s", stationID, slotID)
}

// Lock acquires the per-slot lock, retrying briefly under contention.
// The returned func releases the lock; the TTL bounds the hold time if
// the release is never reached.
func (l *SlotLock) Lock(ctx context.Context, stationID, slotID string) (func(), error) {
	key := l.key(stationID, slotID)
	owner := lockOwner()

	deadline := time.Now().Add(acquireBudget)
	for {
		ok, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, errors.New("slot lock: acquire timed out")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = unlockScript.Run(releaseCtx, l.client, []string{key}, owner).Err()
	}, nil
}

func lockOwner() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
