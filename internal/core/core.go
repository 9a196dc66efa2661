package core

import (
	"github.com/agubarev/accounts/internal/config"
	"github.com/agubarev/accounts/pkg/database"
	"github.com/agubarev/accounts/pkg/user"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Core wires the configured store and the user manager together
// and owns whatever backend connection was opened for them
type Core struct {
	users   *user.Manager
	logger  *zap.Logger
	closers []func() error
}

// New initializes the core according to the given config
func New(cfg config.Config, logger *zap.Logger) (_ *Core, err error) {
	if err = cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Core{logger: logger.Named("[core]")}

	// releasing whatever got opened if initialization fails halfway
	defer func() {
		if err != nil {
			if xerr := c.Close(); xerr != nil {
				c.logger.Warn("failed to release resources after failed init", zap.Error(xerr))
			}
		}
	}()

	l := c.logger
	l.Debug("initializing store", zap.String("backend", cfg.Store.Backend))

	store, err := c.openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Enabled {
		l.Debug("enabling user cache", zap.Duration("ttl", cfg.Cache.TTL))

		if store, err = user.NewCachedStore(store, cfg.Cache.TTL); err != nil {
			return nil, err
		}
	}

	//---------------------------------------------------------------------------
	// initializing user manager
	//---------------------------------------------------------------------------
	um, err := user.NewManager(store)
	if err != nil {
		return nil, err
	}

	if err = um.SetPasswordPolicy(cfg.PasswordPolicy()); err != nil {
		return nil, err
	}

	if err = um.SetLogger(logger); err != nil {
		return nil, err
	}

	c.users = um

	return c, nil
}

func (c *Core) openStore(cfg config.Config, logger *zap.Logger) (user.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return user.NewMemoryStore()
	case config.BackendBadger:
		db, err := database.BadgerDB(cfg.Store.Badger.Dir, logger)
		if err != nil {
			return nil, err
		}

		c.closers = append(c.closers, db.Close)

		return user.NewBadgerStore(db)
	case config.BackendPostgres:
		pool, err := database.PostgreSQLConnection(cfg.Store.Postgres.DSN, logger)
		if err != nil {
			return nil, err
		}

		c.closers = append(c.closers, func() error {
			pool.Close()
			return nil
		})

		if _, err = pool.Exec(user.PostgreSQLSchema); err != nil {
			return nil, errors.Wrap(err, "failed to apply postgres schema")
		}

		return user.NewPostgreSQLStore(pool)
	case config.BackendMySQL:
		conn, err := database.MySQLConnection(cfg.Store.MySQL.DSN, logger)
		if err != nil {
			return nil, err
		}

		c.closers = append(c.closers, conn.Close)

		if _, err = conn.NewSession(nil).Exec(user.MySQLSchema); err != nil {
			return nil, errors.Wrap(err, "failed to apply mysql schema")
		}

		return user.NewMySQLStore(conn)
	}

	return nil, errors.Wrapf(config.ErrUnknownBackend, "%q", cfg.Store.Backend)
}

// UserManager returns the user manager
func (c *Core) UserManager() (*user.Manager, error) {
	if c == nil {
		return nil, ErrNilCore
	}

	if c.users == nil {
		return nil, ErrNilUserManager
	}

	return c.users, nil
}

// Logger returns the core logger
func (c *Core) Logger() *zap.Logger {
	return c.logger
}

// Close releases the backend connections in reverse order
func (c *Core) Close() (err error) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if xerr := c.closers[i](); xerr != nil && err == nil {
			err = errors.Wrap(xerr, "failed to close backend")
		}
	}

	c.closers = nil

	return err
}
