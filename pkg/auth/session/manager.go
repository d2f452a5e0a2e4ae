// Package session keeps refresh sessions in Redis, keyed by the jti of the
// access token they were issued alongside.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/campusshelf/library-backend/pkg/config"
	redisclient "github.com/campusshelf/library-backend/pkg/redis"
)

const refreshTokenBytes = 32

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	errMissingAccessID     = errors.New("access id is required")
)

type store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker is what the auth middleware needs to reject tokens
// whose session was revoked.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// Rotated is the session issued by a successful refresh.
type Rotated struct {
	AccessID     string
	RefreshToken string
	UserID       uuid.UUID
}

// Manager binds one refresh token to each access id. Only a digest of the
// token is stored.
type Manager struct {
	kv  store
	ttl time.Duration
}

func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	switch {
	case ttl <= 0:
		return nil, errors.New("refresh token ttl must be positive")
	case ttl <= accessTTL:
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{kv: client, ttl: ttl}, nil
}

// record is the stored form of a session: "<user uuid>:<sha256 hex of token>".
type record struct {
	userID uuid.UUID
	digest string
}

func (r record) String() string {
	return r.userID.String() + ":" + r.digest
}

func parseRecord(raw string) (record, bool) {
	id, digest, ok := strings.Cut(raw, ":")
	if !ok || len(digest) != sha256.Size*2 {
		return record{}, false
	}
	userID, err := uuid.Parse(id)
	if err != nil {
		return record{}, false
	}
	return record{userID: userID, digest: digest}, true
}

func (r record) matches(token string) bool {
	return subtle.ConstantTimeCompare([]byte(r.digest), []byte(digest(token))) == 1
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Generate issues a refresh token for accessID owned by userID.
func (m *Manager) Generate(ctx context.Context, accessID string, userID uuid.UUID) (string, error) {
	if blank(accessID) {
		return "", errMissingAccessID
	}
	if userID == uuid.Nil {
		return "", errors.New("user id is required")
	}
	return m.issue(ctx, accessID, userID)
}

func (m *Manager) issue(ctx context.Context, accessID string, userID uuid.UUID) (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	rec := record{userID: userID, digest: digest(token)}
	if err := m.kv.Set(ctx, m.kv.AccessSessionKey(accessID), rec.String(), m.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// load returns the session for accessID. A missing key is reported as
// ErrInvalidRefreshToken.
func (m *Manager) load(ctx context.Context, accessID string) (record, error) {
	raw, err := m.kv.Get(ctx, m.kv.AccessSessionKey(accessID))
	if errors.Is(err, redislib.Nil) {
		return record{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return record{}, err
	}
	rec, ok := parseRecord(raw)
	if !ok {
		return record{}, ErrInvalidRefreshToken
	}
	return rec, nil
}

// Rotate trades a valid refresh token for a new access id and refresh token.
// The old session is removed so the token works once.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (*Rotated, error) {
	if blank(oldAccessID) || blank(provided) {
		return nil, ErrInvalidRefreshToken
	}
	rec, err := m.load(ctx, oldAccessID)
	if err != nil {
		return nil, err
	}
	if !rec.matches(provided) {
		return nil, ErrInvalidRefreshToken
	}

	next := NewAccessID()
	token, err := m.issue(ctx, next, rec.userID)
	if err != nil {
		return nil, err
	}
	if err := m.Revoke(ctx, oldAccessID); err != nil {
		return nil, err
	}
	return &Rotated{AccessID: next, RefreshToken: token, UserID: rec.userID}, nil
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if blank(accessID) {
		return errMissingAccessID
	}
	return m.kv.Del(ctx, m.kv.AccessSessionKey(accessID))
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if blank(accessID) {
		return false, errMissingAccessID
	}
	_, err := m.load(ctx, accessID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrInvalidRefreshToken):
		return false, nil
	default:
		return false, err
	}
}

// NewAccessID produces the identifier used as the JWT jti and session key.
func NewAccessID() string {
	return uuid.NewString()
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
