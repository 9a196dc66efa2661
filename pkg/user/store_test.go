package user_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/agubarev/accounts/pkg/database"
	"github.com/agubarev/accounts/pkg/user"
	"github.com/agubarev/accounts/pkg/util"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/r3labs/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// storesForTesting returns every store which can be tested in this environment,
// postgres and mysql only if their DSNs are set
func storesForTesting() map[string]func(t *testing.T) user.Store {
	stores := map[string]func(t *testing.T) user.Store{
		"memory": func(t *testing.T) user.Store {
			s, err := user.NewMemoryStore()
			require.NoError(t, err)
			return s
		},
		"badger": func(t *testing.T) user.Store {
			dir := util.RandomTempDir("accounts-badger")
			db, err := database.BadgerDB(dir, zap.NewNop())
			require.NoError(t, err)

			t.Cleanup(func() {
				db.Close()
				os.RemoveAll(dir)
			})

			s, err := user.NewBadgerStore(db)
			require.NoError(t, err)
			return s
		},
		"cached": func(t *testing.T) user.Store {
			backend, err := user.NewMemoryStore()
			require.NoError(t, err)

			s, err := user.NewCachedStore(backend, time.Minute)
			require.NoError(t, err)
			return s
		},
	}

	if os.Getenv(database.EnvTestPostgreSQL) != "" {
		stores["postgres"] = func(t *testing.T) user.Store {
			pool, err := database.PostgreSQLForTesting(user.PostgreSQLSchema, "user")
			require.NoError(t, err)
			t.Cleanup(pool.Close)

			s, err := user.NewPostgreSQLStore(pool)
			require.NoError(t, err)
			return s
		}
	}

	if os.Getenv(database.EnvTestMySQL) != "" {
		stores["mysql"] = func(t *testing.T) user.Store {
			conn, err := database.MySQLForTesting(user.MySQLSchema, "user")
			require.NoError(t, err)
			t.Cleanup(func() { conn.Close() })

			s, err := user.NewMySQLStore(conn)
			require.NoError(t, err)
			return s
		}
	}

	return stores
}

func newStoredUser(username, email string) user.User {
	now := time.Now().UTC().Truncate(time.Microsecond)

	return user.User{
		ID:           uuid.New(),
		PasswordHash: []byte("$2a$10$notarealhashbutgoodenoughforastore"),
		Essential: user.Essential{
			Username:  username,
			Email:     email,
			Firstname: "John",
			Lastname:  "Smith",
			IsActive:  true,
		},
		Metadata: user.Metadata{
			Checksum:  42,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func TestStoreCreateAndFetch(t *testing.T) {
	for name, newStore := range storesForTesting() {
		t.Run(name, func(t *testing.T) {
			a := assert.New(t)
			ctx := context.Background()
			s := newStore(t)

			u := newStoredUser("art", "art@email.com")

			_, err := s.CreateUser(ctx, u)
			a.NoError(err)

			fetched, err := s.FetchUserByID(ctx, u.ID)
			a.NoError(err)
			a.Equal(u.ID, fetched.ID)
			a.Equal(u.Essential, fetched.Essential)
			a.Equal(u.Checksum, fetched.Checksum)
			a.Equal([]byte(u.PasswordHash), []byte(fetched.PasswordHash))
			a.True(u.CreatedAt.Equal(fetched.CreatedAt))

			fetched, err = s.FetchUserByUsername(ctx, "art")
			a.NoError(err)
			a.Equal(u.ID, fetched.ID)

			fetched, err = s.FetchUserByEmailAddr(ctx, "art@email.com")
			a.NoError(err)
			a.Equal(u.ID, fetched.ID)

			_, err = s.FetchUserByID(ctx, uuid.New())
			a.Equal(user.ErrUserNotFound, errors.Cause(err))

			_, err = s.FetchUserByUsername(ctx, "nobody")
			a.Equal(user.ErrUserNotFound, errors.Cause(err))

			_, err = s.FetchUserByEmailAddr(ctx, "")
			a.Equal(user.ErrUserNotFound, errors.Cause(err))
		})
	}
}

func TestStoreUniqueness(t *testing.T) {
	for name, newStore := range storesForTesting() {
		t.Run(name, func(t *testing.T) {
			a := assert.New(t)
			ctx := context.Background()
			s := newStore(t)

			_, err := s.CreateUser(ctx, newStoredUser("art", "art@email.com"))
			a.NoError(err)

			_, err = s.CreateUser(ctx, newStoredUser("art", "other@email.com"))
			a.Equal(user.ErrUsernameTaken, errors.Cause(err))

			_, err = s.CreateUser(ctx, newStoredUser("other", "art@email.com"))
			a.Equal(user.ErrEmailTaken, errors.Cause(err))

			// empty emails never collide
			_, err = s.CreateUser(ctx, newStoredUser("noemail1", ""))
			a.NoError(err)

			_, err = s.CreateUser(ctx, newStoredUser("noemail2", ""))
			a.NoError(err)

			_, err = s.CreateUser(ctx, user.User{})
			a.Equal(user.ErrZeroID, errors.Cause(err))
		})
	}
}

func TestStoreUpdate(t *testing.T) {
	for name, newStore := range storesForTesting() {
		t.Run(name, func(t *testing.T) {
			a := assert.New(t)
			ctx := context.Background()
			s := newStore(t)

			u := newStoredUser("art", "art@email.com")
			_, err := s.CreateUser(ctx, u)
			require.NoError(t, err)

			_, err = s.UpdateUser(ctx, u, nil)
			a.Equal(user.ErrNothingChanged, errors.Cause(err))

			updated := u
			updated.Username = "arthur"
			updated.Email = "arthur@email.com"
			updated.IsSuperuser = true
			updated.IsStaff = true
			updated.Checksum = 43

			changelog, err := diff.Diff(u.Essential, updated.Essential)
			require.NoError(t, err)

			_, err = s.UpdateUser(ctx, updated, changelog)
			a.NoError(err)

			fetched, err := s.FetchUserByID(ctx, u.ID)
			a.NoError(err)
			a.Equal(updated.Essential, fetched.Essential)
			a.Equal(uint64(43), fetched.Checksum)

			fetched, err = s.FetchUserByUsername(ctx, "arthur")
			a.NoError(err)
			a.Equal(u.ID, fetched.ID)

			fetched, err = s.FetchUserByEmailAddr(ctx, "arthur@email.com")
			a.NoError(err)
			a.Equal(u.ID, fetched.ID)

			// old indexes must be gone
			_, err = s.FetchUserByUsername(ctx, "art")
			a.Equal(user.ErrUserNotFound, errors.Cause(err))

			_, err = s.FetchUserByEmailAddr(ctx, "art@email.com")
			a.Equal(user.ErrUserNotFound, errors.Cause(err))
		})
	}
}

func TestStoreDelete(t *testing.T) {
	for name, newStore := range storesForTesting() {
		t.Run(name, func(t *testing.T) {
			a := assert.New(t)
			ctx := context.Background()
			s := newStore(t)

			u := newStoredUser("art", "art@email.com")
			_, err := s.CreateUser(ctx, u)
			require.NoError(t, err)

			// warming up caches
			_, err = s.FetchUserByUsername(ctx, "art")
			a.NoError(err)

			a.NoError(s.DeleteUserByID(ctx, u.ID))

			_, err = s.FetchUserByID(ctx, u.ID)
			a.Equal(user.ErrUserNotFound, errors.Cause(err))

			_, err = s.FetchUserByUsername(ctx, "art")
			a.Equal(user.ErrUserNotFound, errors.Cause(err))

			_, err = s.FetchUserByEmailAddr(ctx, "art@email.com")
			a.Equal(user.ErrUserNotFound, errors.Cause(err))

			a.Equal(user.ErrUserNotFound, errors.Cause(s.DeleteUserByID(ctx, u.ID)))
			a.Equal(user.ErrZeroID, errors.Cause(s.DeleteUserByID(ctx, uuid.Nil)))
		})
	}
}

func TestManagerOverStores(t *testing.T) {
	for name, newStore := range storesForTesting() {
		t.Run(name, func(t *testing.T) {
			a := assert.New(t)

			m, ctx, err := user.ManagerForTesting(newStore(t))
			require.NoError(t, err)

			u, err := m.CreateUser(ctx, user.NewUserObject{Username: "art", Email: "art@email.com", Password: []byte("testpass123")})
			a.NoError(err)
			a.True(u.IsActive)
			a.False(u.IsStaff)
			a.False(u.IsSuperuser)

			admin, err := m.CreateSuperuser(ctx, user.NewUserObject{Username: "superadmin", Email: "superadmin@email.com", Password: []byte("testpass123")})
			a.NoError(err)
			a.True(admin.IsActive)
			a.True(admin.IsStaff)
			a.True(admin.IsSuperuser)

			stored, err := m.UserByUsername(ctx, "superadmin")
			a.NoError(err)
			a.Equal(admin.Essential, stored.Essential)

			ok, err := m.CheckPassword(ctx, admin.ID, []byte("testpass123"))
			a.NoError(err)
			a.True(ok)
		})
	}
}
