package user

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx"
	"github.com/pkg/errors"
	"github.com/r3labs/diff"
)

// PostgreSQLSchema creates what the postgres store needs
const PostgreSQLSchema = `
CREATE TABLE IF NOT EXISTS "user" (
	id            UUID        NOT NULL PRIMARY KEY,
	username      VARCHAR(150) NOT NULL,
	email         VARCHAR(254) NOT NULL DEFAULT '',
	firstname     VARCHAR(150) NOT NULL DEFAULT '',
	lastname      VARCHAR(150) NOT NULL DEFAULT '',
	is_active     BOOLEAN     NOT NULL DEFAULT TRUE,
	is_staff      BOOLEAN     NOT NULL DEFAULT FALSE,
	is_superuser  BOOLEAN     NOT NULL DEFAULT FALSE,
	password_hash BYTEA,
	checksum      BIGINT      NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	CONSTRAINT user_username_key UNIQUE (username)
);
CREATE UNIQUE INDEX IF NOT EXISTS user_email_key ON "user" (email) WHERE email <> '';`

const postgresUserColumns = `id::text, username, email, firstname, lastname, is_active, is_staff, is_superuser, password_hash, checksum, created_at, updated_at`

// pgxQuerier is satisfied by both *pgx.Conn and *pgx.ConnPool
type pgxQuerier interface {
	ExecEx(ctx context.Context, sql string, options *pgx.QueryExOptions, arguments ...interface{}) (pgx.CommandTag, error)
	QueryRowEx(ctx context.Context, sql string, options *pgx.QueryExOptions, args ...interface{}) *pgx.Row
}

type PostgreSQLStore struct {
	db pgxQuerier
}

// NewPostgreSQLStore initializes a postgres store, the schema
// is expected to exist already (see PostgreSQLSchema)
func NewPostgreSQLStore(db pgxQuerier) (Store, error) {
	if db == nil {
		return nil, ErrNilDB
	}

	return &PostgreSQLStore{db: db}, nil
}

// translateError maps unique violations onto their domain errors
func (s *PostgreSQLStore) translateError(err error) error {
	pgErr, ok := err.(pgx.PgError)
	if !ok || pgErr.Code != "23505" {
		return err
	}

	switch pgErr.ConstraintName {
	case "user_username_key":
		return ErrUsernameTaken
	case "user_email_key":
		return ErrEmailTaken
	case "user_pkey":
		return ErrUserExists
	}

	return err
}

func (s *PostgreSQLStore) fetchUserByQuery(ctx context.Context, q string, args ...interface{}) (u User, err error) {
	var (
		id       string
		hash     []byte
		checksum int64
	)

	err = s.db.QueryRowEx(ctx, q, nil, args...).Scan(
		&id,
		&u.Username,
		&u.Email,
		&u.Firstname,
		&u.Lastname,
		&u.IsActive,
		&u.IsStaff,
		&u.IsSuperuser,
		&hash,
		&checksum,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return u, ErrUserNotFound
		}

		return u, errors.Wrap(err, "failed to fetch user")
	}

	if u.ID, err = uuid.Parse(id); err != nil {
		return u, errors.Wrapf(err, "malformed user id %s", id)
	}

	u.PasswordHash = hash
	u.Checksum = uint64(checksum)

	return u, nil
}

// CreateUser creates a new entry in the storage backend
func (s *PostgreSQLStore) CreateUser(ctx context.Context, u User) (_ User, err error) {
	if u.ID == uuid.Nil {
		return u, ErrZeroID
	}

	q := `
	INSERT INTO "user"(id, username, email, firstname, lastname, is_active, is_staff, is_superuser, password_hash, checksum, created_at, updated_at)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = s.db.ExecEx(
		ctx,
		q,
		nil,
		u.ID.String(), u.Username, u.Email, u.Firstname, u.Lastname,
		u.IsActive, u.IsStaff, u.IsSuperuser,
		[]byte(u.PasswordHash), int64(u.Checksum), u.CreatedAt, u.UpdatedAt,
	)

	if err != nil {
		return u, errors.Wrap(s.translateError(err), "failed to insert user")
	}

	return u, nil
}

func (s *PostgreSQLStore) FetchUserByID(ctx context.Context, id uuid.UUID) (u User, err error) {
	return s.fetchUserByQuery(ctx, `SELECT `+postgresUserColumns+` FROM "user" WHERE id = $1 LIMIT 1`, id.String())
}

func (s *PostgreSQLStore) FetchUserByUsername(ctx context.Context, username string) (u User, err error) {
	return s.fetchUserByQuery(ctx, `SELECT `+postgresUserColumns+` FROM "user" WHERE username = $1 LIMIT 1`, username)
}

func (s *PostgreSQLStore) FetchUserByEmailAddr(ctx context.Context, addr string) (u User, err error) {
	if addr == "" {
		return u, ErrUserNotFound
	}

	return s.fetchUserByQuery(ctx, `SELECT `+postgresUserColumns+` FROM "user" WHERE email = $1 LIMIT 1`, addr)
}

// UpdateUser only updates the columns mentioned by the changelog
func (s *PostgreSQLStore) UpdateUser(ctx context.Context, u User, changelog diff.Changelog) (_ User, err error) {
	if len(changelog) == 0 {
		return u, ErrNothingChanged
	}

	changes, err := changesFromChangelog(u, changelog)
	if err != nil {
		return u, errors.Wrap(err, "failed to procure changes from a changelog")
	}

	columns := make([]string, 0, len(changes))
	for column := range changes {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	sets := make([]string, len(columns))
	args := make([]interface{}, 0, len(columns)+1)
	args = append(args, u.ID.String())
	for i, column := range columns {
		sets[i] = fmt.Sprintf("%s = $%d", column, i+2)
		args = append(args, changes[column])
	}

	q := fmt.Sprintf(`UPDATE "user" SET %s WHERE id = $1`, strings.Join(sets, ", "))

	cmd, err := s.db.ExecEx(ctx, q, nil, args...)
	if err != nil {
		return u, errors.Wrap(s.translateError(err), "failed to update user")
	}

	if cmd.RowsAffected() == 0 {
		return u, ErrUserNotFound
	}

	return u, nil
}

func (s *PostgreSQLStore) DeleteUserByID(ctx context.Context, id uuid.UUID) (err error) {
	if id == uuid.Nil {
		return ErrZeroID
	}

	cmd, err := s.db.ExecEx(ctx, `DELETE FROM "user" WHERE id = $1`, nil, id.String())
	if err != nil {
		return errors.Wrapf(err, "failed to delete user: id=%s", id)
	}

	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
