// Package session keeps server-side session bindings in Redis. The browser holds
// only a signed token naming the binding; deleting the binding ends the session
// even if the token is replayed.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var ErrNoSession = errors.New("no active session")

type claims struct {
	SessionID string `json:"sid"`
	UserID    int    `json:"user_id"`
	jwt.RegisteredClaims
}

type Store struct {
	rdb    *redis.Client
	secret []byte
	ttl    time.Duration
}

func NewStore(rdb *redis.Client, secret string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{rdb: rdb, secret: []byte(secret), ttl: ttl}
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

func key(sid string) string {
	return fmt.Sprintf("session:%s", sid)
}

// Create binds a new session to userID and returns the token for the cookie.
func (s *Store) Create(ctx context.Context, userID int) (string, error) {
	sid := uuid.NewString()
	if err := s.rdb.Set(ctx, key(sid), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: sid,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		_ = s.rdb.Del(ctx, key(sid)).Err()
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (s *Store) parse(token string) (*claims, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || c.SessionID == "" {
		return nil, ErrNoSession
	}
	return &c, nil
}

// Lookup returns the user id bound to token.
func (s *Store) Lookup(ctx context.Context, token string) (int, error) {
	c, err := s.parse(token)
	if err != nil {
		return 0, err
	}
	userID, err := s.rdb.Get(ctx, key(c.SessionID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, fmt.Errorf("load session: %w", err)
	}
	if userID != c.UserID {
		return 0, ErrNoSession
	}
	return userID, nil
}

// Delete removes the binding named by token. Unknown tokens are ignored.
func (s *Store) Delete(ctx context.Context, token string) error {
	c, err := s.parse(token)
	if err != nil {
		return nil
	}
	if err := s.rdb.Del(ctx, key(c.SessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Ping reports whether the backing Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
