package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "lifeforge:pending_session:"

// Redis stores pending sessions in Redis with a TTL matching the
// session lifetime, so sweeping is delegated to key expiry. Use it
// when several processes serve the same login flow.
type Redis struct {
	client   redis.UniversalClient
	lifetime time.Duration
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithRedisLifetime overrides the default five-minute session lifetime.
func WithRedisLifetime(d time.Duration) RedisOption {
	return func(r *Redis) {
		r.lifetime = d
	}
}

// NewRedis creates a Redis-backed pending-session store.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client:   client,
		lifetime: DefaultLifetime,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) Register(ctx context.Context, userAgent, ip string) (Pending, error) {
	now := time.Now()
	p := Pending{
		ID:        uuid.NewString(),
		UserAgent: userAgent,
		IP:        ip,
		CreatedAt: now,
		ExpiresAt: now.Add(r.lifetime),
		Status:    StatusPending,
	}
	if err := r.save(ctx, p); err != nil {
		return Pending{}, err
	}
	return p, nil
}

func (r *Redis) Approve(ctx context.Context, id, userID, token string) error {
	p, err := r.load(ctx, id)
	if err != nil {
		return err
	}
	if p.Expired(time.Now()) {
		return ErrExpired
	}
	if p.Status == StatusApproved {
		return ErrAlreadyResolved
	}

	p.UserID = userID
	p.Token = token
	p.Status = StatusApproved
	return r.save(ctx, p)
}

func (r *Redis) Get(ctx context.Context, id string) (Pending, error) {
	p, err := r.load(ctx, id)
	if err != nil {
		return Pending{}, err
	}
	if p.Status != StatusApproved && p.Expired(time.Now()) {
		p.Status = StatusExpired
	}
	return p, nil
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session: delete pending session: %w", err)
	}
	return nil
}

func (r *Redis) save(ctx context.Context, p Pending) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("session: encode pending session: %w", err)
	}
	ttl := time.Until(p.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := r.client.Set(ctx, redisKeyPrefix+p.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("session: store pending session: %w", err)
	}
	return nil
}

func (r *Redis) load(ctx context.Context, id string) (Pending, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Pending{}, ErrNotFound
	}
	if err != nil {
		return Pending{}, fmt.Errorf("session: load pending session: %w", err)
	}
	var p Pending
	if err := json.Unmarshal(raw, &p); err != nil {
		return Pending{}, fmt.Errorf("session: decode pending session: %w", err)
	}
	return p, nil
}
