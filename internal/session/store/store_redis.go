package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tickethub/internal/session"
	id "tickethub/pkg/domain"
	"tickethub/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix = "tickethub:session:"

	// maxUpdateAttempts bounds optimistic retries when another request
	// writes the same session between WATCH and EXEC.
	maxUpdateAttempts = 5
)

// RedisStore persists sessions in Redis as JSON documents so several
// server instances can share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ session.Store = (*RedisStore)(nil)

// NewRedis constructs a Redis-backed session store. Each write refreshes the
// key's expiry to ttl; zero keeps keys until they are deleted.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) sessionKey(sessionID id.SessionID) string {
	return sessionKeyPrefix + sessionID.String()
}

func (s *RedisStore) Create(ctx context.Context, data *session.Data) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.sessionKey(data.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID id.SessionID) (*session.Data, error) {
	raw, err := s.client.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decodeData(raw)
}

// Update reads, mutates and writes the session inside WATCH/MULTI, retrying
// when a concurrent writer touched the key.
func (s *RedisStore) Update(ctx context.Context, sessionID id.SessionID, fn func(*session.Data) error) (*session.Data, error) {
	key := s.sessionKey(sessionID)
	var result *session.Data

	txf := func(tx *redis.Tx) error {
		working := &session.Data{ID: sessionID}
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("get session for update: %w", err)
		default:
			if working, err = decodeData(raw); err != nil {
				return err
			}
		}

		if err := fn(working); err != nil {
			return err // returned unchanged to the caller
		}
		working.ID = sessionID

		payload, err := json.Marshal(working)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = working
		return nil
	}

	for range maxUpdateAttempts {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, fmt.Errorf("update session %s: too much contention: %w", sessionID, sentinel.ErrUnavailable)
}

func (s *RedisStore) Delete(ctx context.Context, sessionID id.SessionID) error {
	n, err := s.client.Del(ctx, s.sessionKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func decodeData(raw []byte) (*session.Data, error) {
	var data session.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &data, nil
}
