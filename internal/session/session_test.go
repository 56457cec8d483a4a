package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_IssueAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour, nil)

	token, err := m.Issue("user-1", "reader@example.com")
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestManager_ParseRejects(t *testing.T) {
	m := NewManager("test-secret", time.Hour, nil)
	other := NewManager("other-secret", time.Hour, nil)
	foreign, err := other.Issue("user-1", "a@b.c")
	require.NoError(t, err)

	expired := NewManager("test-secret", time.Hour, nil)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue("user-1", "a@b.c")
	require.NoError(t, err)

	wrongAud := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1", "iss": Issuer, "aud": "someone-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	wrongAudToken, err := wrongAud.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":        "abc",
		"wrong secret":   foreign,
		"expired":        old,
		"wrong audience": wrongAudToken,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(token)
			assert.Error(t, err)
		})
	}
}

func TestManager_Revoke(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	m := NewManager("test-secret", time.Hour, rdb)
	token, err := m.Issue("user-1", "a@b.c")
	require.NoError(t, err)
	claims, err := m.Parse(token)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, m.CheckRevoked(ctx, claims))
	require.NoError(t, m.Revoke(ctx, claims))
	assert.ErrorIs(t, m.CheckRevoked(ctx, claims), ErrRevoked)

	ttl := mr.TTL(blacklistKey(claims.TokenID))
	assert.Greater(t, ttl, 59*time.Minute)
}
