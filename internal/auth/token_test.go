package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/inventory-service/internal/domain"
)

func testIdentity() domain.Identity {
	return domain.Identity{ID: "user-123", FullName: "Dana Reyes", Email: "dana@example.com", Role: domain.RoleWarehouseManager}
}

func TestNewTokenManager(t *testing.T) {
	tests := []struct {
		name       string
		ttlMinutes int
		want       time.Duration
	}{
		{name: "configured ttl", ttlMinutes: 30, want: 30 * time.Minute},
		{name: "zero falls back to default", ttlMinutes: 0, want: 15 * time.Minute},
		{name: "negative falls back to default", ttlMinutes: -5, want: 15 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := NewTokenManager("secret", tt.ttlMinutes)
			assert.Equal(t, tt.want, tm.TTL())
		})
	}
}

func TestTokenManager_GenerateAndParse(t *testing.T) {
	tm := NewTokenManager("test-secret", 15)
	identity := testIdentity()

	before := time.Now()
	token, expiresAt, err := tm.GenerateToken(identity)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, before.Add(15*time.Minute), expiresAt, 2*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, identity, claims.Identity())
	assert.Equal(t, "user-123", claims.Subject)
}

func TestTokenManager_ParseRejects(t *testing.T) {
	tm := NewTokenManager("test-secret", 15)
	identity := testIdentity()

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("other-secret", 15)
		token, _, err := other.GenerateToken(identity)
		require.NoError(t, err)

		_, err = tm.ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewTokenManager("test-secret", 1)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, _, err := past.GenerateToken(identity)
		require.NoError(t, err)

		_, err = tm.ParseToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("different signing method", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: identity.ID},
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = tm.ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Role: domain.RoleHR}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = tm.ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tm.ParseToken("not-a-jwt")
		assert.Error(t, err)
	})
}

func TestNewRefreshToken(t *testing.T) {
	raw, hash, err := NewRefreshToken()
	require.NoError(t, err)

	assert.Len(t, raw, refreshTokenBytes*2)
	assert.Len(t, hash, 64)
	assert.Equal(t, HashRefreshToken(raw), hash)
	assert.NotEqual(t, raw, hash)

	raw2, _, err := NewRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", 4)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "correct horse"))
	assert.Error(t, ComparePassword(hash, "battery staple"))
}
