package database

import (
	"strings"

	"github.com/jackc/pgx"
	"github.com/jackc/pgx/log/zapadapter"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// PostgreSQLConnection opens a pgx connection pool, the DSN may be either
// a URL or a key=value string
func PostgreSQLConnection(dsn string, logger *zap.Logger) (*pgx.ConnPool, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, ErrEmptyDSN
	}

	conf, err := pgx.ParseConnectionString(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse DSN")
	}

	// injecting logger into database instance
	if logger != nil {
		conf.Logger = zapadapter.NewLogger(logger.Named("[postgres]"))
		conf.LogLevel = pgx.LogLevelWarn
	}

	pool, err := pgx.NewConnPool(pgx.ConnPoolConfig{
		ConnConfig:     conf,
		MaxConnections: 8,
	})

	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}

	return pool, nil
}
