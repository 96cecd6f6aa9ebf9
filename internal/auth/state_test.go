// AngelaMos | 2026
// state_test.go

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qhub-dev/qhub/internal/user"
)

func TestStateTransitions(t *testing.T) {
	s := NewState()
	assert.Equal(t, Anonymous, s.Phase())
	assert.Nil(t, s.Identity())

	require.NoError(t, s.Begin())
	assert.Equal(t, Authenticating, s.Phase())
	assert.ErrorIs(t, s.Begin(), ErrAuthBusy)

	s.Fail()
	assert.Equal(t, Anonymous, s.Phase())

	require.NoError(t, s.Begin())
	exp := time.Now().Add(time.Hour)
	s.Succeed(&AuthResponse{
		User:      &user.User{ID: "u-1", Email: "alice@example.com", Tier: user.TierFree},
		Token:     "tok",
		ExpiresAt: exp,
	})
	assert.Equal(t, Authenticated, s.Phase())
	assert.Equal(t, "tok", s.Token())

	id := s.Identity()
	require.NotNil(t, id)
	assert.Equal(t, "alice@example.com", id.Email)

	id.Email = "mutated"
	assert.Equal(t, "alice@example.com", s.Identity().Email)

	s.Refresh(&user.User{ID: "u-1", Email: "alice@example.com", Tier: user.TierPro})
	assert.Equal(t, user.TierPro, s.Identity().Tier)

	s.Refresh(&user.User{ID: "someone-else", Tier: user.TierEnterprise})
	assert.Equal(t, user.TierPro, s.Identity().Tier)

	require.NoError(t, s.Begin())
	assert.Equal(t, Authenticating, s.Phase())

	s.Reset()
	assert.Equal(t, Anonymous, s.Phase())
	assert.Empty(t, s.Token())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "anonymous", Anonymous.String())
	assert.Equal(t, "authenticating", Authenticating.String())
	assert.Equal(t, "authenticated", Authenticated.String())
}
