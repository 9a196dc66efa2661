package core_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/agubarev/accounts/internal/config"
	"github.com/agubarev/accounts/internal/core"
	"github.com/agubarev/accounts/pkg/user"
	"github.com/agubarev/accounts/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func memoryConfig() config.Config {
	var cfg config.Config
	cfg.Store.Backend = config.BackendMemory
	cfg.Cache.Enabled = true
	cfg.Cache.TTL = time.Minute
	cfg.Password.MinScore = 3

	return cfg
}

func TestNewCore(t *testing.T) {
	a := assert.New(t)

	c, err := core.New(memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	um, err := c.UserManager()
	a.NoError(err)
	a.NotNil(um)

	ctx := context.Background()

	u, err := um.CreateUser(ctx, user.NewUserObject{Username: "art", Email: "art@email.com", Password: []byte("testpass123")})
	a.NoError(err)
	a.True(u.IsActive)
	a.False(u.IsStaff)
	a.False(u.IsSuperuser)

	admin, err := um.CreateSuperuser(ctx, user.NewUserObject{Username: "superadmin", Email: "superadmin@email.com", Password: []byte("testpass123")})
	a.NoError(err)
	a.True(admin.IsActive)
	a.True(admin.IsStaff)
	a.True(admin.IsSuperuser)
}

func TestNewCoreBadger(t *testing.T) {
	a := assert.New(t)

	dir := util.RandomTempDir("accounts-core")
	defer os.RemoveAll(dir)

	cfg := memoryConfig()
	cfg.Store.Backend = config.BackendBadger
	cfg.Store.Badger.Dir = dir

	c, err := core.New(cfg, nil)
	require.NoError(t, err)

	um, err := c.UserManager()
	require.NoError(t, err)

	_, err = um.CreateSuperuser(context.Background(), user.NewUserObject{Username: "superadmin", Email: "superadmin@email.com"})
	a.NoError(err)
	a.NoError(c.Close())

	// reopening to check that the user has been persisted
	c, err = core.New(cfg, nil)
	require.NoError(t, err)
	defer c.Close()

	um, err = c.UserManager()
	require.NoError(t, err)

	admin, err := um.UserByUsername(context.Background(), "superadmin")
	a.NoError(err)
	a.True(admin.IsSuperuser)
}

func TestNewCoreInvalidConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store.Backend = "cassandra"

	c, err := core.New(cfg, nil)
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestNilCore(t *testing.T) {
	var c *core.Core

	_, err := c.UserManager()
	assert.Equal(t, core.ErrNilCore, err)
}
