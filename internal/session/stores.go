package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tinoosan/roombook/internal/errs"
)

// sweepEvery bounds how often Save scans for expired sessions.
const sweepEvery = time.Minute

// MemoryStore keeps sessions in process. Expired entries are dropped on read,
// and Save prunes every expired entry at most once per sweepEvery.
type MemoryStore struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]Session
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[uuid.UUID]Session), now: time.Now}
}

func (m *MemoryStore) Save(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if now.Sub(m.lastSweep) >= sweepEvery {
		for id, existing := range m.sessions {
			if !now.Before(existing.ExpiresAt) {
				delete(m.sessions, id)
			}
		}
		m.lastSweep = now
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return Session{}, errs.ErrNotFound
	}
	if !m.now().Before(s.ExpiresAt) {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return Session{}, errs.ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// RedisStore keeps sessions in Redis with the session lifetime as key TTL,
// so sessions survive restarts and are shared across replicas.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// OpenRedis connects to the Redis instance at url and verifies it with PING.
func OpenRedis(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: redis: %v", errs.ErrStoreUnavailable, err)
	}
	return NewRedisStore(rdb), nil
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "roombook:session:"}
}

type redisSession struct {
	AccountID string    `json:"account_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (r *RedisStore) Save(ctx context.Context, s Session) error {
	payload, err := json.Marshal(redisSession{AccountID: s.AccountID, IssuedAt: s.IssuedAt, ExpiresAt: s.ExpiresAt})
	if err != nil {
		return err
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, r.prefix+s.ID.String(), payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", errs.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id uuid.UUID) (Session, error) {
	raw, err := r.rdb.Get(ctx, r.prefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, errs.ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("%w: redis get: %v", errs.ErrStoreUnavailable, err)
	}
	var rs redisSession
	if err := json.Unmarshal(raw, &rs); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return Session{ID: id, AccountID: rs.AccountID, IssuedAt: rs.IssuedAt, ExpiresAt: rs.ExpiresAt}, nil
}

func (r *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.rdb.Del(ctx, r.prefix+id.String()).Err(); err != nil {
		return fmt.Errorf("%w: redis del: %v", errs.ErrStoreUnavailable, err)
	}
	return nil
}

// Ready pings Redis.
func (r *RedisStore) Ready(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }

// Close releases the client.
func (r *RedisStore) Close() error { return r.rdb.Close() }
