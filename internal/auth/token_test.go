// AngelaMos | 2026
// token_test.go

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qhub-dev/qhub/internal/config"
	"github.com/qhub-dev/qhub/internal/core"
	"github.com/qhub-dev/qhub/internal/user"
)

func testJWTConfig(secret string) config.JWTConfig {
	return config.JWTConfig{Secret: secret, ExpiryHours: 24, Issuer: "qhub"}
}

func TestIssueVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ts := NewTokenService(testJWTConfig("secret-one"), WithClock(func() time.Time { return now }))

	u := &user.User{ID: "u-1", Email: "alice@example.com", Tier: user.TierPro}

	token, exp, err := ts.Issue(u)
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), exp)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, user.TierPro, claims.Tier)
	assert.True(t, claims.IssuedAt.Equal(now))
	assert.True(t, claims.ExpiresAt.Equal(exp))
	assert.NotEmpty(t, claims.ID)
}

func TestVerifyExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ts := NewTokenService(testJWTConfig("secret-one"), WithClock(func() time.Time { return now }))

	token, _, err := ts.Issue(&user.User{ID: "u-1", Email: "a@b.co", Tier: user.TierFree})
	require.NoError(t, err)

	now = now.Add(24*time.Hour + time.Second)

	_, err = ts.Verify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyWrongSecret(t *testing.T) {
	a := NewTokenService(testJWTConfig("secret-one"))
	b := NewTokenService(testJWTConfig("secret-two"))

	token, _, err := a.Issue(&user.User{ID: "u-1", Email: "a@b.co", Tier: user.TierFree})
	require.NoError(t, err)

	_, err = b.Verify(token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
	assert.NotErrorIs(t, err, core.ErrTokenExpired)
}

func TestVerifyMalformed(t *testing.T) {
	ts := NewTokenService(testJWTConfig("secret-one"))

	for _, token := range []string{"", "abc", "a.b.c", "eyJhbGciOiJub25lIn0.e30."} {
		_, err := ts.Verify(token)
		assert.ErrorIs(t, err, core.ErrTokenInvalid, token)
	}
}

func TestVerifyTampered(t *testing.T) {
	ts := NewTokenService(testJWTConfig("secret-one"))

	token, _, err := ts.Issue(&user.User{ID: "u-1", Email: "a@b.co", Tier: user.TierFree})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	other, _, err := ts.Issue(&user.User{ID: "u-2", Email: "c@d.co", Tier: user.TierEnterprise})
	require.NoError(t, err)
	parts[1] = strings.Split(other, ".")[1]

	_, err = ts.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestIssueUniquePerCall(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ts := NewTokenService(testJWTConfig("secret-one"), WithClock(func() time.Time { return now }))
	u := &user.User{ID: "u-1", Email: "a@b.co", Tier: user.TierFree}

	a, _, err := ts.Issue(u)
	require.NoError(t, err)
	b, _, err := ts.Issue(u)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, core.HashToken(a), core.HashToken(b))
}

func TestDevSecretFallback(t *testing.T) {
	ts := NewTokenService(config.JWTConfig{ExpiryHours: 1})
	assert.Equal(t, []byte(config.DevJWTSecret), ts.secret)
	assert.Equal(t, time.Hour, ts.TTL())
}
