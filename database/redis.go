package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"smarthotel/model"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses the URL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// ErrResetNotFound is returned by Update when the request expired meanwhile.
var ErrResetNotFound = errors.New("reset request not found")

// ResetStore keeps password-reset requests keyed by their reset token.
type ResetStore struct {
	client *redis.Client
}

func NewResetStore(client *redis.Client) *ResetStore {
	return &ResetStore{client: client}
}

func (s *ResetStore) key(token string) string {
	return fmt.Sprintf("reset:%s", token)
}

func (s *ResetStore) Put(ctx context.Context, token string, reset model.PasswordReset, ttl time.Duration) error {
	data, err := json.Marshal(reset)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(token), data, ttl).Err()
}

// Update rewrites the request without extending its expiry.
func (s *ResetStore) Update(ctx context.Context, token string, reset model.PasswordReset) error {
	data, err := json.Marshal(reset)
	if err != nil {
		return err
	}
	err = s.client.SetArgs(ctx, s.key(token), data, redis.SetArgs{KeepTTL: true, Mode: "XX"}).Err()
	if errors.Is(err, redis.Nil) {
		return ErrResetNotFound
	}
	return err
}

// Get returns nil when the token is unknown or expired.
func (s *ResetStore) Get(ctx context.Context, token string) (*model.PasswordReset, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var reset model.PasswordReset
	if err := json.Unmarshal(data, &reset); err != nil {
		return nil, err
	}
	return &reset, nil
}

func (s *ResetStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}
