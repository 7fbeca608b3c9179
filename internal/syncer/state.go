package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/rvellora/stockline-backend/pkg/redis"
)

// SyncState is the only durable reconciliation state: the moment the last
// run completed. It is loaded before a run, passed through it, and the
// updated value is persisted afterwards; the engine itself keeps no globals.
type SyncState struct {
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
}

// StateStore persists SyncState keyed by shop domain.
type StateStore interface {
	Load(ctx context.Context, shopDomain string) (SyncState, error)
	Save(ctx context.Context, shopDomain string, state SyncState) error
}

// stateBackend is the slice of the redis client the store depends on.
type stateBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SyncStateKey(shopDomain string) string
}

// RedisStateStore keeps SyncState as a small JSON document in Redis.
type RedisStateStore struct {
	client stateBackend
}

// NewRedisStateStore constructs the Redis-backed state store.
func NewRedisStateStore(client stateBackend) (*RedisStateStore, error) {
	if client == nil {
		return nil, errors.New("redis client required for state store")
	}
	return &RedisStateStore{client: client}, nil
}

// Load returns the stored state, or the zero state when none exists yet.
func (s *RedisStateStore) Load(ctx context.Context, shopDomain string) (SyncState, error) {
	raw, err := s.client.Get(ctx, s.client.SyncStateKey(shopDomain))
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return SyncState{}, nil
		}
		return SyncState{}, fmt.Errorf("read sync state: %w", err)
	}

	var state SyncState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return SyncState{}, fmt.Errorf("decode sync state: %w", err)
	}
	return state, nil
}

// Save persists the state without expiry.
func (s *RedisStateStore) Save(ctx context.Context, shopDomain string, state SyncState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode sync state: %w", err)
	}
	if err := s.client.Set(ctx, s.client.SyncStateKey(shopDomain), string(payload), 0); err != nil {
		return fmt.Errorf("write sync state: %w", err)
	}
	return nil
}
