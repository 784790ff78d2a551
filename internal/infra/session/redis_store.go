package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"teacher_referral_bot/internal/domain/session"
)

const keyPrefix = "session:"

// RedisStore persists sessions in Redis so in-progress dialogs survive
// process restarts. Sessions have no TTL; they live until completion or
// cancellation, same as the memory store.
type RedisStore struct {
	client *redis.Client
}

// NewRedisClient connects to Redis using a redis:// URL and verifies the
// connection with a ping.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, telegramID int64) (*session.Session, error) {
	val, err := s.client.Get(ctx, sessionKey(telegramID)).Result()
	if err == redis.Nil {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting session from redis: %w", err)
	}

	sess := &session.Session{}
	if err := json.Unmarshal([]byte(val), sess); err != nil {
		return nil, fmt.Errorf("error decoding session: %w", err)
	}
	if sess.Data == nil {
		sess.Data = make(map[string]string)
	}
	return sess, nil
}

func (s *RedisStore) Put(ctx context.Context, sess *session.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("error encoding session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.TelegramID), payload, 0).Err(); err != nil {
		return fmt.Errorf("error storing session in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, telegramID int64) error {
	if err := s.client.Del(ctx, sessionKey(telegramID)).Err(); err != nil {
		return fmt.Errorf("error clearing session in redis: %w", err)
	}
	return nil
}

func sessionKey(telegramID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, telegramID)
}
