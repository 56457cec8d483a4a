// Package session issues and validates the API's own access tokens.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	Issuer   = "bookmarket-api"
	Audience = "bookmarket-client"
)

// ErrRevoked is returned for a token whose jti has been blacklisted.
var ErrRevoked = errors.New("session: token has been revoked")

// Claims is the payload of an access token.
type Claims struct {
	UserID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// Manager signs tokens with an HMAC secret and tracks revocations in Redis.
type Manager struct {
	secret []byte
	ttl    time.Duration
	redis  *redis.Client
	now    func() time.Time
}

// NewManager returns a Manager. A nil redis client disables revocation.
func NewManager(secret string, ttl time.Duration, rdb *redis.Client) *Manager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, redis: rdb, now: time.Now}
}

// Issue creates a signed token for the user.
func (m *Manager) Issue(userID, email string) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := m.now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iss":   Issuer,
		"aud":   Audience,
		"exp":   now.Add(m.ttl).Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"jti":   uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse validates the token and returns its claims. It does not consult the
// revocation list; see CheckRevoked.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	sub, _ := mc["sub"].(string)
	if sub == "" {
		return nil, errors.New("invalid subject claim")
	}
	email, _ := mc["email"].(string)
	jti, _ := mc["jti"].(string)

	claims := &Claims{UserID: sub, Email: email, TokenID: jti}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

func blacklistKey(jti string) string {
	return "blacklist:" + jti
}

// CheckRevoked returns ErrRevoked when the token id is blacklisted. Redis
// failures let the token through.
func (m *Manager) CheckRevoked(ctx context.Context, c *Claims) error {
	if m.redis == nil || c.TokenID == "" {
		return nil
	}
	n, err := m.redis.Exists(ctx, blacklistKey(c.TokenID)).Result()
	if err == nil && n > 0 {
		return ErrRevoked
	}
	return nil
}

// Revoke blacklists the token until it would have expired anyway.
func (m *Manager) Revoke(ctx context.Context, c *Claims) error {
	if m.redis == nil || c.TokenID == "" {
		return nil
	}
	ttl := c.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	return m.redis.Set(ctx, blacklistKey(c.TokenID), "1", ttl).Err()
}
