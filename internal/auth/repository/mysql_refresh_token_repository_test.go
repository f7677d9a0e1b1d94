package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	"github.com/allisson/sessions/internal/testutil"
)

func TestMySQLRefreshTokenRepository_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLRefreshTokenRepository(db)
	ctx := context.Background()

	identityID := testutil.CreateTestIdentity(t, db, "mysql", "alice@example.com")
	userID := testutil.CreateTestUser(t, db, "mysql", identityID, "Alice", "Smith")

	token := &authDomain.RefreshToken{
		Token:     "opaque-refresh-token-1",
		JTI:       uuid.Must(uuid.NewV7()),
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(168 * time.Hour),
	}

	require.NoError(t, repo.Create(ctx, token))

	retrieved, err := repo.GetByToken(ctx, token.Token)
	require.NoError(t, err)
	assert.Equal(t, token.JTI, retrieved.JTI)
	assert.Equal(t, userID, retrieved.UserID)
	assert.False(t, retrieved.Invalidated)

	_, err = repo.GetByToken(ctx, "never-issued")
	assert.ErrorIs(t, err, authDomain.ErrRefreshTokenNotFound)
}

func TestMySQLRefreshTokenRepository_Invalidate(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLRefreshTokenRepository(db)
	ctx := context.Background()

	identityID := testutil.CreateTestIdentity(t, db, "mysql", "bob@example.com")
	userID := testutil.CreateTestUser(t, db, "mysql", identityID, "Bob", "Jones")

	token := &authDomain.RefreshToken{
		Token:     "opaque-refresh-token-2",
		JTI:       uuid.Must(uuid.NewV7()),
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(168 * time.Hour),
	}
	require.NoError(t, repo.Create(ctx, token))

	claimed, err := repo.Invalidate(ctx, token.Token)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.Invalidate(ctx, token.Token)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestMySQLRefreshTokenRepository_InvalidateAllForUser(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLRefreshTokenRepository(db)
	ctx := context.Background()

	identityID := testutil.CreateTestIdentity(t, db, "mysql", "multi@example.com")
	userID := testutil.CreateTestUser(t, db, "mysql", identityID, "Multi", "Device")

	liveJTIs := make(map[uuid.UUID]bool)
	for _, value := range []string{"device-a-token", "device-b-token"} {
		jti := uuid.Must(uuid.NewV7())
		liveJTIs[jti] = true
		require.NoError(t, repo.Create(ctx, &authDomain.RefreshToken{
			Token:     value,
			JTI:       jti,
			UserID:    userID,
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		}))
	}

	require.NoError(t, repo.Create(ctx, &authDomain.RefreshToken{
		Token:       "already-dead-token",
		JTI:         uuid.Must(uuid.NewV7()),
		UserID:      userID,
		ExpiresAt:   time.Now().UTC().Add(time.Hour),
		Invalidated: true,
	}))

	jtis, err := repo.InvalidateAllForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, jtis, 2)
	for _, jti := range jtis {
		assert.True(t, liveJTIs[jti])
	}

	jtis, err = repo.InvalidateAllForUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, jtis)
}
