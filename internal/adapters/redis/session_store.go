// Package redis provides Redis-based adapters for the estate API.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	apperrors "github.com/estatehub/estate-api/internal/errors"
	"github.com/estatehub/estate-api/internal/ports"
)

// DefaultSessionPrefix namespaces session keys as session:<subject>.
const DefaultSessionPrefix = "session:"

const scanBatch = 100

// SessionStore keeps one live session per subject. Expiry is left to Redis.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return NewSessionStoreWithPrefix(client, DefaultSessionPrefix)
}

// NewSessionStoreWithPrefix creates a Redis session store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: prefix,
	}
}

func (s *SessionStore) key(subject string) string { return s.prefix + subject }

// Put writes the snapshot with SET EX, replacing any earlier session and its TTL.
func (s *SessionStore) Put(ctx context.Context, subject string, snapshot domainauth.Session, ttl time.Duration) error {
	if subject == "" {
		return errors.New("session subject cannot be empty")
	}
	if ttl <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", ttl)
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(subject), data, ttl).Err(); err != nil {
		return apperrors.StoreUnavailable(fmt.Errorf("redis set: %w", err))
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, subject string) (domainauth.Session, error) {
	if subject == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	data, err := s.client.Get(ctx, s.key(subject)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ports.ErrSessionNotFound
		}
		return domainauth.Session{}, apperrors.StoreUnavailable(fmt.Errorf("redis get: %w", err))
	}

	var sess domainauth.Session
	if unmarshalErr := json.Unmarshal(data, &sess); unmarshalErr != nil {
		return domainauth.Session{}, apperrors.Wrap(unmarshalErr, apperrors.ErrCodeInternal, "corrupt session record")
	}
	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, subject string) error {
	if subject == "" {
		return nil // Nothing to delete
	}
	if err := s.client.Del(ctx, s.key(subject)).Err(); err != nil {
		return apperrors.StoreUnavailable(fmt.Errorf("redis del: %w", err))
	}
	return nil
}

// LiveSession is a session seen by Scan together with its remaining lifetime.
type LiveSession struct {
	Subject string
	Session domainauth.Session
	TTL     time.Duration
}

// Scan walks every live session and calls fn for each. Keys that expire or fail to
// decode mid-scan are skipped. Returning an error from fn stops the walk.
func (s *SessionStore) Scan(ctx context.Context, fn func(LiveSession) error) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		subject := strings.TrimPrefix(key, s.prefix)

		sess, err := s.Get(ctx, subject)
		if errors.Is(err, ports.ErrSessionNotFound) || apperrors.IsInternal(err) {
			continue
		}
		if err != nil {
			return err
		}

		ttl, err := s.client.TTL(ctx, key).Result()
		if err != nil {
			return apperrors.StoreUnavailable(fmt.Errorf("redis ttl: %w", err))
		}
		if err := fn(LiveSession{Subject: subject, Session: sess, TTL: ttl}); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return apperrors.StoreUnavailable(fmt.Errorf("redis scan: %w", err))
	}
	return nil
}

// Ping reports whether the backing Redis answers.
func (s *SessionStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return apperrors.StoreUnavailable(fmt.Errorf("redis ping: %w", err))
	}
	return nil
}
