package redis

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/domain/auth"
	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/testutil"
)

func testIdentity(email string) domainauth.SavedIdentity {
	return domainauth.SavedIdentity{
		Principal: domainauth.NewPrincipal(domainauth.UserProfile{
			ID:            "123",
			Email:         email,
			VerifiedEmail: true,
			Name:          "Test User",
		}),
		Groups: []string{"users", "example.com"},
	}
}

func TestStateStore_SaveAndReadIdentity(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewStateStore(client)
	ctx := context.Background()
	sid := uuid.NewString()

	err := store.SaveIdentity(ctx, sid, testIdentity("user@example.com"))
	require.NoError(t, err)

	ident, ok, err := store.Identity(ctx, sid)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "user@example.com", ident.Principal.Name)
	assert.Equal(t, []string{"users", "example.com"}, ident.Groups)

	// Reads retain the identity until it is cleared explicitly.
	_, ok, err = store.Identity(ctx, sid)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStateStore_SaveIdentity_ZeroIsNoop(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewStateStore(client)
	ctx := context.Background()
	sid := uuid.NewString()

	require.NoError(t, store.SaveIdentity(ctx, sid, domainauth.SavedIdentity{}))

	_, ok, err := store.Identity(ctx, sid)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStateStore_ClearIdentity(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewStateStore(client)
	ctx := context.Background()
	sid := uuid.NewString()

	require.NoError(t, store.SaveIdentity(ctx, sid, testIdentity("user@example.com")))
	require.NoError(t, store.ClearIdentity(ctx, sid))

	_, ok, err := store.Identity(ctx, sid)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStateStore_TakeOriginalPath_SingleUse(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewStateStore(client)
	ctx := context.Background()
	sid := uuid.NewString()

	require.NoError(t, store.SaveOriginalPath(ctx, sid, "/dashboard?tab=alerts"))

	path, ok, err := store.TakeOriginalPath(ctx, sid)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/dashboard?tab=alerts", path)

	_, ok, err = store.TakeOriginalPath(ctx, sid)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStateStore_TakeOriginalPath_NothingStored(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewStateStore(client)

	_, ok, err := store.TakeOriginalPath(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.False(t, ok)
}
