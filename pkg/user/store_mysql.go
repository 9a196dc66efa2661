package user

import (
	"context"

	"github.com/go-sql-driver/mysql"
	"github.com/gocraft/dbr/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/r3labs/diff"
)

// MySQLSchema creates what the mysql store needs
// NOTE: empty emails are stored as NULL so that the unique key ignores them
const MySQLSchema = "CREATE TABLE IF NOT EXISTS `user` (" +
	"`id` CHAR(36) NOT NULL," +
	"`username` VARCHAR(150) COLLATE utf8mb4_bin NOT NULL," +
	"`email` VARCHAR(254) NULL," +
	"`firstname` VARCHAR(150) NOT NULL DEFAULT ''," +
	"`lastname` VARCHAR(150) NOT NULL DEFAULT ''," +
	"`is_active` TINYINT(1) NOT NULL DEFAULT 1," +
	"`is_staff` TINYINT(1) NOT NULL DEFAULT 0," +
	"`is_superuser` TINYINT(1) NOT NULL DEFAULT 0," +
	"`password_hash` VARBINARY(128) NULL," +
	"`checksum` BIGINT NOT NULL DEFAULT 0," +
	"`created_at` DATETIME(6) NOT NULL," +
	"`updated_at` DATETIME(6) NOT NULL," +
	"PRIMARY KEY (`id`)," +
	"UNIQUE KEY `username` (`username`)," +
	"UNIQUE KEY `email` (`email`)" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"

var mysqlUserColumns = []string{
	"id",
	"username",
	"COALESCE(email, '') AS email",
	"firstname",
	"lastname",
	"is_active",
	"is_staff",
	"is_superuser",
	"COALESCE(password_hash, '') AS password_hash",
	"checksum",
	"created_at",
	"updated_at",
}

// MySQLStore is a user store for the MySQL backend
type MySQLStore struct {
	db *dbr.Connection
}

// NewMySQLStore initializes a mysql store, the schema
// is expected to exist already (see MySQLSchema)
func NewMySQLStore(conn *dbr.Connection) (Store, error) {
	if conn == nil {
		return nil, ErrNilDB
	}

	return &MySQLStore{db: conn}, nil
}

func nullableEmail(addr string) interface{} {
	if addr == "" {
		return nil
	}

	return addr
}

func nullableHash(h []byte) interface{} {
	if len(h) == 0 {
		return nil
	}

	return h
}

// translateError maps duplicate key errors onto their domain errors
func (s *MySQLStore) translateError(err error) error {
	myErr, ok := err.(*mysql.MySQLError)
	if !ok || myErr.Number != 1062 {
		return err
	}

	// message ends with: for key 'username' or for key 'user.username'
	switch msg := myErr.Message; {
	case hasKeySuffix(msg, "username"):
		return ErrUsernameTaken
	case hasKeySuffix(msg, "email"):
		return ErrEmailTaken
	case hasKeySuffix(msg, "PRIMARY"):
		return ErrUserExists
	}

	return err
}

func hasKeySuffix(msg, key string) bool {
	for _, suffix := range []string{"'" + key + "'", "'user." + key + "'"} {
		if len(msg) >= len(suffix) && msg[len(msg)-len(suffix):] == suffix {
			return true
		}
	}

	return false
}

func (s *MySQLStore) fetchUserByQuery(ctx context.Context, where string, args ...interface{}) (u User, err error) {
	err = s.db.NewSession(nil).
		Select(mysqlUserColumns...).
		From("user").
		Where(where, args...).
		Limit(1).
		LoadOneContext(ctx, &u)

	if err != nil {
		if err == dbr.ErrNotFound {
			return u, ErrUserNotFound
		}

		return u, errors.Wrap(err, "failed to fetch user")
	}

	if len(u.PasswordHash) == 0 {
		u.PasswordHash = nil
	}

	return u, nil
}

// CreateUser creates a new entry in the storage backend
func (s *MySQLStore) CreateUser(ctx context.Context, u User) (_ User, err error) {
	if u.ID == uuid.Nil {
		return u, ErrZeroID
	}

	_, err = s.db.NewSession(nil).
		InsertInto("user").
		Pair("id", u.ID.String()).
		Pair("username", u.Username).
		Pair("email", nullableEmail(u.Email)).
		Pair("firstname", u.Firstname).
		Pair("lastname", u.Lastname).
		Pair("is_active", u.IsActive).
		Pair("is_staff", u.IsStaff).
		Pair("is_superuser", u.IsSuperuser).
		Pair("password_hash", nullableHash(u.PasswordHash)).
		Pair("checksum", int64(u.Checksum)).
		Pair("created_at", u.CreatedAt).
		Pair("updated_at", u.UpdatedAt).
		ExecContext(ctx)

	if err != nil {
		return u, errors.Wrap(s.translateError(err), "failed to insert user")
	}

	return u, nil
}

func (s *MySQLStore) FetchUserByID(ctx context.Context, id uuid.UUID) (u User, err error) {
	return s.fetchUserByQuery(ctx, "id = ?", id.String())
}

func (s *MySQLStore) FetchUserByUsername(ctx context.Context, username string) (u User, err error) {
	return s.fetchUserByQuery(ctx, "username = ?", username)
}

func (s *MySQLStore) FetchUserByEmailAddr(ctx context.Context, addr string) (u User, err error) {
	if addr == "" {
		return u, ErrUserNotFound
	}

	return s.fetchUserByQuery(ctx, "email = ?", addr)
}

// UpdateUser only updates the columns mentioned by the changelog
func (s *MySQLStore) UpdateUser(ctx context.Context, u User, changelog diff.Changelog) (_ User, err error) {
	if len(changelog) == 0 {
		return u, ErrNothingChanged
	}

	changes, err := changesFromChangelog(u, changelog)
	if err != nil {
		return u, errors.Wrap(err, "failed to procure changes from a changelog")
	}

	if _, ok := changes["email"]; ok {
		changes["email"] = nullableEmail(u.Email)
	}

	if _, ok := changes["password_hash"]; ok {
		changes["password_hash"] = nullableHash(u.PasswordHash)
	}

	result, err := s.db.NewSession(nil).
		Update("user").
		SetMap(changes).
		Where("id = ?", u.ID.String()).
		ExecContext(ctx)

	if err != nil {
		return u, errors.Wrap(s.translateError(err), "failed to update user")
	}

	// mysql reports zero affected rows when values didn't change,
	// so existence has to be confirmed separately
	if ra, _ := result.RowsAffected(); ra == 0 {
		if _, err = s.FetchUserByID(ctx, u.ID); err != nil {
			return u, err
		}
	}

	return u, nil
}

func (s *MySQLStore) DeleteUserByID(ctx context.Context, id uuid.UUID) (err error) {
	if id == uuid.Nil {
		return ErrZeroID
	}

	result, err := s.db.NewSession(nil).
		DeleteFrom("user").
		Where("id = ?", id.String()).
		ExecContext(ctx)

	if err != nil {
		return errors.Wrapf(err, "failed to delete user: id=%s", id)
	}

	if ra, _ := result.RowsAffected(); ra == 0 {
		return ErrUserNotFound
	}

	return nil
}
