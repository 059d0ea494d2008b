package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned when no cached session exists for a token.
var ErrSessionNotFound = errors.New("session not found")

const sessionKeyPrefix = "session:"

// Session is the durable client session: the resolution triple plus the time
// it was last validated against the store. It is a soft hint only; privileged
// paths re-resolve instead of trusting cached flags.
type Session struct {
	Resolution
	ResolvedAt time.Time `json:"resolved_at"`
}

// kv is the minimal key/value surface SessionStore needs from Redis.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// SessionStore persists sessions in Redis keyed by JWT token ID, so a session
// survives reloads and dies with its token.
type SessionStore struct {
	client kv
	ttl    time.Duration
	logger *zap.Logger
}

// NewSessionStore creates a session store. ttl should match the JWT lifetime.
func NewSessionStore(client kv, ttl time.Duration, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{client: client, ttl: ttl, logger: logger}
}

func sessionKey(jti string) string {
	return sessionKeyPrefix + jti
}

// Save persists the session for the given token ID.
func (s *SessionStore) Save(ctx context.Context, jti string, res *Resolution) error {
	sess := Session{Resolution: *res, ResolvedAt: time.Now()}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(jti), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get returns the cached session for the token ID, or ErrSessionNotFound.
func (s *SessionStore) Get(ctx context.Context, jti string) (*Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(jti)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// malformed cache entry: drop it and report a miss
		s.logger.Warn("dropping malformed session", zap.String("jti", jti), zap.Error(err))
		_ = s.client.Del(ctx, sessionKey(jti)).Err()
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

// Delete removes the session. Deleting an absent session is not an error, so
// logout stays idempotent.
func (s *SessionStore) Delete(ctx context.Context, jti string) error {
	if err := s.client.Del(ctx, sessionKey(jti)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

const oauthStatePrefix = "oauthstate:"

// SaveOAuthState stores a one-time CSRF state for the OAuth redirect flow.
func (s *SessionStore) SaveOAuthState(ctx context.Context, state string, ttl time.Duration) error {
	if err := s.client.Set(ctx, oauthStatePrefix+state, "1", ttl).Err(); err != nil {
		return fmt.Errorf("save oauth state: %w", err)
	}
	return nil
}

// TakeOAuthState consumes a state, returning whether it was valid.
func (s *SessionStore) TakeOAuthState(ctx context.Context, state string) (bool, error) {
	n, err := s.client.Del(ctx, oauthStatePrefix+state).Result()
	if err != nil {
		return false, fmt.Errorf("take oauth state: %w", err)
	}
	return n > 0, nil
}
