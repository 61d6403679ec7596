package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "thumbgen:session:"

// redisCommander is the subset of *redis.Client the store uses.
type redisCommander interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps sessions as expiring keys holding the user id.
type RedisStore struct {
	client redisCommander
	now    func() time.Time
}

func NewRedisStore(client redisCommander) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// NewRedisClient opens a client and checks connectivity.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *RedisStore) Create(ctx context.Context, userID string, ttl time.Duration) (*Session, error) {
	s := &Session{ID: uuid.NewString(), UserID: userID, ExpiresAt: r.now().Add(ttl)}
	if err := r.client.Set(ctx, redisKeyPrefix+s.ID, userID, ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return s, nil
}

func (r *RedisStore) Lookup(ctx context.Context, sessionID string) (*Session, error) {
	key := redisKeyPrefix + sessionID
	userID, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	s := &Session{ID: sessionID, UserID: userID}
	if ttl, err := r.client.TTL(ctx, key).Result(); err == nil && ttl > 0 {
		s.ExpiresAt = r.now().Add(ttl)
	}
	return s, nil
}

func (r *RedisStore) Destroy(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
