package dedupcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrAlreadyClaimed is returned by Claim when another owner already
// holds the (endpoint, token) window.
var ErrAlreadyClaimed = errors.New("dedupcache: window already claimed")

// Manager coordinates in-flight GET claims over Redis.
type Manager struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewManager creates a Manager. ttl bounds how long a claim survives if
// its owner crashes without releasing it; callers should set it a
// little above their expected GET latency.
func NewManager(redisClient *redis.Client, ttl time.Duration) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Manager{redis: redisClient, ttl: ttl}
}

// Claim atomically marks key as in-flight under ownerID. It returns
// ErrAlreadyClaimed if another (non-expired) owner holds it.
func (m *Manager) Claim(ctx context.Context, key Key, ownerID string) error {
	now := time.Now()
	entry := Entry{OwnerID: ownerID, ClaimedAt: now, Expires: now.Add(m.ttl)}
	data, err := json.Marshal(entry)
	if err != nil {
		dedupErrors.WithLabelValues("claim").Inc()
		return fmt.Errorf("dedupcache: marshal claim: %w", err)
	}

	ok, err := m.redis.SetNX(ctx, key.String(), data, m.ttl).Result()
	if err != nil {
		dedupErrors.WithLabelValues("claim").Inc()
		return fmt.Errorf("dedupcache: redis setnx: %w", err)
	}
	if !ok {
		claimConflicts.Inc()
		return ErrAlreadyClaimed
	}

	claimsHeld.Inc()
	return nil
}

// Release frees a previously claimed window so another owner may claim
// it immediately, instead of waiting out the TTL.
func (m *Manager) Release(ctx context.Context, key Key) error {
	if err := m.redis.Del(ctx, key.String()).Err(); err != nil {
		dedupErrors.WithLabelValues("release").Inc()
		return fmt.Errorf("dedupcache: redis del: %w", err)
	}
	claimsHeld.Dec()
	return nil
}

// Holder returns the current claim for key, if any.
func (m *Manager) Holder(ctx context.Context, key Key) (*Entry, error) {
	data, err := m.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		dedupErrors.WithLabelValues("holder").Inc()
		return nil, fmt.Errorf("dedupcache: redis get: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		dedupErrors.WithLabelValues("holder").Inc()
		return nil, fmt.Errorf("dedupcache: unmarshal claim: %w", err)
	}
	return &entry, nil
}
