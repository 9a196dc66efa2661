package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/agubarev/accounts/pkg/user"
	"github.com/pkg/errors"
	"github.com/r3labs/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedStoreNil(t *testing.T) {
	s, err := user.NewCachedStore(nil, time.Minute)
	assert.Equal(t, user.ErrNilStore, err)
	assert.Nil(t, s)
}

func TestCachedStoreServesFromCache(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	backend, err := user.NewMemoryStore()
	require.NoError(t, err)

	s, err := user.NewCachedStore(backend, time.Minute)
	require.NoError(t, err)

	u := newStoredUser("art", "art@email.com")
	_, err = s.CreateUser(ctx, u)
	require.NoError(t, err)

	// removing behind the cache's back
	require.NoError(t, backend.DeleteUserByID(ctx, u.ID))

	cached, err := s.FetchUserByUsername(ctx, "art")
	a.NoError(err)
	a.Equal(u.ID, cached.ID)
	a.Equal([]byte(u.PasswordHash), []byte(cached.PasswordHash))

	cached, err = s.FetchUserByEmailAddr(ctx, "art@email.com")
	a.NoError(err)
	a.Equal(u.ID, cached.ID)
}

func TestCachedStoreStaleIndex(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	backend, err := user.NewMemoryStore()
	require.NoError(t, err)

	s, err := user.NewCachedStore(backend, time.Minute)
	require.NoError(t, err)

	u := newStoredUser("art", "art@email.com")
	_, err = s.CreateUser(ctx, u)
	require.NoError(t, err)

	updated := u
	updated.Username = "arthur"

	changelog, err := diff.Diff(u.Essential, updated.Essential)
	require.NoError(t, err)

	_, err = s.UpdateUser(ctx, updated, changelog)
	require.NoError(t, err)

	_, err = s.FetchUserByUsername(ctx, "art")
	a.Equal(user.ErrUserNotFound, errors.Cause(err))

	fetched, err := s.FetchUserByUsername(ctx, "arthur")
	a.NoError(err)
	a.Equal(u.ID, fetched.ID)
}
