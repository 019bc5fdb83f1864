package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// MintLock is the single-flight guard keyed by attendance ID. Two
// concurrent mint requests for the same attendance (a double-clicked
// mint button) can never both reach the chain.
type MintLock struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewMintLock(client *redis.Client, ttl time.Duration) *MintLock {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &MintLock{Client: client, TTL: ttl}
}

func key(attendanceID string) string {
	return "mint_lock:" + attendanceID
}

// Acquire claims the lock for one pipeline run. The TTL bounds how long
// a crashed holder can block retries.
func (l *MintLock) Acquire(ctx context.Context, attendanceID, holderID string) (bool, error) {
	ok, err := l.Client.SetNX(ctx, key(attendanceID), holderID, l.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("mint lock error: %w", err)
	}
	return ok, nil
}

// Release deletes the lock only if this holder still owns it.
func (l *MintLock) Release(ctx context.Context, attendanceID, holderID string) error {
	val, err := l.Client.Get(ctx, key(attendanceID)).Result()
	if err == redis.Nil {
		return nil // expired or already released
	}
	if err != nil {
		return err
	}
	if val == holderID {
		_, err := l.Client.Del(ctx, key(attendanceID)).Result()
		return err
	}
	return nil
}

// IsLocked reports whether a pipeline run currently holds the lock.
func (l *MintLock) IsLocked(ctx context.Context, attendanceID string) (bool, error) {
	_, err := l.Client.Get(ctx, key(attendanceID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
