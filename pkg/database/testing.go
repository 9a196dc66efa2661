package database

import (
	"fmt"
	"log"
	"os"

	"github.com/agubarev/accounts/pkg/util"
	"github.com/gocraft/dbr/v2"
	"github.com/jackc/pgx"
	"github.com/pkg/errors"
)

// environment variables holding test database DSNs
const (
	EnvTestPostgreSQL = "ACCOUNTS_TEST_POSTGRES_DSN"
	EnvTestMySQL      = "ACCOUNTS_TEST_MYSQL_DSN"
)

// PostgreSQLForTesting connects to the test database, applies the schema and
// truncates the given tables, returns nil if the DSN is not set
func PostgreSQLForTesting(schema string, tables ...string) (*pgx.ConnPool, error) {
	if !util.IsTestMode() {
		log.Fatal("PostgreSQLForTesting() can only be called during testing")
	}

	dsn := os.Getenv(EnvTestPostgreSQL)
	if dsn == "" {
		return nil, nil
	}

	pool, err := PostgreSQLConnection(dsn, nil)
	if err != nil {
		return nil, err
	}

	if _, err = pool.Exec(schema); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "failed to apply schema")
	}

	for _, table := range tables {
		if _, err = pool.Exec(fmt.Sprintf(`TRUNCATE TABLE "%s" RESTART IDENTITY CASCADE`, table)); err != nil {
			pool.Close()
			return nil, errors.Wrapf(err, "failed to truncate table %s", table)
		}
	}

	return pool, nil
}

// MySQLForTesting is the same as PostgreSQLForTesting but for MySQL
func MySQLForTesting(schema string, tables ...string) (*dbr.Connection, error) {
	if !util.IsTestMode() {
		log.Fatal("MySQLForTesting() can only be called during testing")
	}

	dsn := os.Getenv(EnvTestMySQL)
	if dsn == "" {
		return nil, nil
	}

	conn, err := MySQLConnection(dsn, nil)
	if err != nil {
		return nil, err
	}

	sess := conn.NewSession(nil)

	if _, err = sess.Exec(schema); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to apply schema")
	}

	for _, table := range tables {
		if _, err = sess.Exec(fmt.Sprintf("TRUNCATE TABLE `%s`", table)); err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "failed to truncate table %s", table)
		}
	}

	return conn, nil
}
