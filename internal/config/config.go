package config

import (
	"strings"
	"time"

	"github.com/agubarev/accounts/pkg/security/password"
	"github.com/agubarev/accounts/pkg/util"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// store backends
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
)

// EnvPrefix is prepended to every environment variable, i.e. ACCOUNTS_STORE_BACKEND
const EnvPrefix = "ACCOUNTS"

// DefaultPath is where the config file is looked up unless told otherwise
const DefaultPath = "~/.accounts.yaml"

var ErrUnknownBackend = errors.New("unknown store backend")

type Config struct {
	Store struct {
		Backend string `mapstructure:"backend"`
		Badger  struct {
			Dir string `mapstructure:"dir"`
		} `mapstructure:"badger"`
		Postgres struct {
			DSN string `mapstructure:"dsn"`
		} `mapstructure:"postgres"`
		MySQL struct {
			DSN string `mapstructure:"dsn"`
		} `mapstructure:"mysql"`
	} `mapstructure:"store"`

	Cache struct {
		Enabled bool          `mapstructure:"enabled"`
		TTL     time.Duration `mapstructure:"ttl"`
	} `mapstructure:"cache"`

	Log struct {
		Debug bool   `mapstructure:"debug"`
		Dir   string `mapstructure:"dir"`
	} `mapstructure:"log"`

	Password struct {
		EnforceStrength bool `mapstructure:"enforce_strength"`
		MinScore        int  `mapstructure:"min_score"`
	} `mapstructure:"password"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", BackendBadger)
	v.SetDefault("store.badger.dir", "~/.accounts/data")
	v.SetDefault("store.postgres.dsn", "")
	v.SetDefault("store.mysql.dsn", "")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("log.debug", false)
	v.SetDefault("log.dir", "")
	v.SetDefault("password.enforce_strength", false)
	v.SetDefault("password.min_score", password.DefaultMinScore)
}

// Load reads configuration from the file at path (if it exists) and from
// the environment, which takes precedence, an empty path means DefaultPath
func Load(path string) (c Config, err error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath
	}

	if path, err = util.ExpandPath(path); err != nil {
		return c, err
	}

	// a missing default file is fine, an explicitly given one is not
	if explicit || util.Exists(path) {
		v.SetConfigFile(path)

		if err = v.ReadInConfig(); err != nil {
			return c, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	if err = v.Unmarshal(&c); err != nil {
		return c, errors.Wrap(err, "failed to unmarshal config")
	}

	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))

	return c, c.Validate()
}

// Validate checks the configuration for consistency
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendBadger:
		if strings.TrimSpace(c.Store.Badger.Dir) == "" {
			return errors.New("store.badger.dir must be set")
		}
	case BackendPostgres:
		if strings.TrimSpace(c.Store.Postgres.DSN) == "" {
			return errors.New("store.postgres.dsn must be set")
		}
	case BackendMySQL:
		if strings.TrimSpace(c.Store.MySQL.DSN) == "" {
			return errors.New("store.mysql.dsn must be set")
		}
	default:
		return errors.Wrapf(ErrUnknownBackend, "%q", c.Store.Backend)
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return errors.New("cache.ttl must be positive")
	}

	if c.Password.MinScore < 0 || c.Password.MinScore > 4 {
		return errors.Errorf("password.min_score must be within 0..4, got %d", c.Password.MinScore)
	}

	return nil
}

// PasswordPolicy returns the configured password policy
func (c Config) PasswordPolicy() password.Policy {
	return password.Policy{
		EnforceStrength: c.Password.EnforceStrength,
		MinScore:        c.Password.MinScore,
	}
}
