// AngelaMos | 2026
// main_test.go

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qhub-dev/qhub/internal/auth"
	"github.com/qhub-dev/qhub/internal/config"
	"github.com/qhub-dev/qhub/internal/core"
	"github.com/qhub-dev/qhub/internal/session"
	"github.com/qhub-dev/qhub/internal/testutil"
	"github.com/qhub-dev/qhub/internal/user"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func sqliteURL(t *testing.T) string {
	t.Helper()

	url := "sqlite://" + filepath.Join(t.TempDir(), "qhub.db")
	t.Setenv("DATABASE_URL", url)
	t.Setenv("LOG_LEVEL", "error")
	return url
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "qhub dev\n", out)
}

func TestMigrateCommand(t *testing.T) {
	sqliteURL(t)

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema at version")
	assert.Contains(t, out, "(sqlite)")
}

func TestCommandsRequireDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := execute(t, "sessions", "sweep")
	assert.ErrorIs(t, err, errNoDatabase)

	_, err = execute(t, "users", "show", "alice@example.com")
	assert.ErrorIs(t, err, errNoDatabase)
}

func TestUsersCommands(t *testing.T) {
	url := sqliteURL(t)
	ctx := context.Background()

	db, err := core.NewDatabase(ctx, config.DatabaseConfig{URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = execute(t, "migrate")
	require.NoError(t, err)

	hash := "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA"
	require.NoError(t, user.NewRepository(db).Create(ctx, &user.User{
		ID:           uuid.NewString(),
		Email:        "alice@example.com",
		PasswordHash: &hash,
		Tier:         user.TierFree,
		IsActive:     true,
	}))

	out, err := execute(t, "users", "set-tier", "alice@example.com", "pro")
	require.NoError(t, err)
	assert.Contains(t, out, "tier:    pro")

	out, err = execute(t, "users", "deactivate", "alice@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "active:  false")

	out, err = execute(t, "users", "activate", "alice@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "active:  true")

	_, err = execute(t, "users", "set-tier", "alice@example.com", "platinum")
	assert.Error(t, err)

	_, err = execute(t, "users", "show", "nobody@example.com")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSessionsSweepCommand(t *testing.T) {
	url := sqliteURL(t)
	ctx := context.Background()

	_, err := execute(t, "migrate")
	require.NoError(t, err)

	db, err := core.NewDatabase(ctx, config.DatabaseConfig{URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	u := &user.User{ID: uuid.NewString(), Email: "bob@example.com", Tier: user.TierFree, IsActive: true}
	require.NoError(t, user.NewRepository(db).Create(ctx, u))

	past := time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, session.NewRepository(db).Create(ctx, &session.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		TokenHash: core.HashToken("stale"),
		ExpiresAt: past.Add(time.Hour),
		CreatedAt: past,
	}))

	out, err := execute(t, "sessions", "sweep")
	require.NoError(t, err)
	assert.Equal(t, "removed 1 expired session(s)\n", out)
}

func TestRunSweeperStopsWithContext(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	hasher, err := core.NewPasswordHasher(testutil.FastHashing())
	require.NoError(t, err)

	svc := auth.NewService(
		user.NewRepository(db),
		session.NewRepository(db),
		auth.NewTokenService(config.JWTConfig{Secret: "test-secret", ExpiryHours: 1, Issuer: "qhub"}),
		hasher,
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		runSweeper(ctx, svc, 10*time.Millisecond)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestRunSweeperDisabled(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		runSweeper(context.Background(), nil, 0)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper with zero interval should return")
	}
}
