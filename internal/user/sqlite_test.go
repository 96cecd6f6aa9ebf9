// AngelaMos | 2026
// sqlite_test.go

package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qhub-dev/qhub/internal/core"
	"github.com/qhub-dev/qhub/internal/testutil"
	"github.com/qhub-dev/qhub/internal/user"
)

func newUser(email string) *user.User {
	hash := "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA"
	return &user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: &hash,
		Tier:         user.TierFree,
		IsActive:     true,
	}
}

func TestSQLiteCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := user.NewRepository(testutil.NewSQLiteDB(t))

	u := newUser("alice@example.com")
	name := "alice"
	u.Username = &name
	require.NoError(t, repo.Create(ctx, u))
	assert.False(t, u.CreatedAt.IsZero())

	got, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, user.TierFree, got.Tier)
	assert.True(t, got.IsActive)
	assert.False(t, got.EmailVerified)
	require.NotNil(t, got.Username)
	assert.Equal(t, "alice", *got.Username)
	assert.Nil(t, got.DisplayName)
	assert.Nil(t, got.LastLoginAt)
	assert.True(t, got.HasPassword())

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Email, byID.Email)

	exists, err := repo.ExistsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "Alice@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSQLiteDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := user.NewRepository(testutil.NewSQLiteDB(t))

	require.NoError(t, repo.Create(ctx, newUser("bob@example.com")))
	err := repo.Create(ctx, newUser("bob@example.com"))
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestSQLiteNotFound(t *testing.T) {
	ctx := context.Background()
	repo := user.NewRepository(testutil.NewSQLiteDB(t))

	_, err := repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, core.ErrNotFound)

	err = repo.SetActive(ctx, uuid.NewString(), false)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteUpdates(t *testing.T) {
	ctx := context.Background()
	repo := user.NewRepository(testutil.NewSQLiteDB(t))

	u := newUser("carol@example.com")
	require.NoError(t, repo.Create(ctx, u))

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, u.ID, at))
	require.NoError(t, repo.UpdatePassword(ctx, u.ID, "$argon2id$new"))
	require.NoError(t, repo.SetActive(ctx, u.ID, false))
	require.NoError(t, repo.UpdateTier(ctx, u.ID, user.TierPro))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, at.Equal(*got.LastLoginAt))
	assert.Equal(t, "$argon2id$new", *got.PasswordHash)
	assert.False(t, got.IsActive)
	assert.Equal(t, user.TierPro, got.Tier)
}

func TestServiceAdministration(t *testing.T) {
	ctx := context.Background()
	repo := user.NewRepository(testutil.NewSQLiteDB(t))
	svc := user.NewService(repo)

	require.NoError(t, repo.Create(ctx, newUser("dave@example.com")))

	u, err := svc.Deactivate(ctx, " dave@example.com ")
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	u, err = svc.Activate(ctx, "dave@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsActive)

	u, err = svc.SetTier(ctx, "dave@example.com", user.TierEnterprise)
	require.NoError(t, err)
	assert.Equal(t, user.TierEnterprise, u.Tier)

	_, err = svc.SetTier(ctx, "dave@example.com", "platinum")
	require.Error(t, err)

	_, err = svc.Deactivate(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
