package user

import (
	"context"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/r3labs/diff"
)

// Store represents a user storage backend contract
// NOTE: username and email are expected to be normalized by the caller,
// the store only enforces their uniqueness
type Store interface {
	CreateUser(ctx context.Context, u User) (_ User, err error)
	FetchUserByID(ctx context.Context, id uuid.UUID) (u User, err error)
	FetchUserByUsername(ctx context.Context, username string) (u User, err error)
	FetchUserByEmailAddr(ctx context.Context, addr string) (u User, err error)
	UpdateUser(ctx context.Context, u User, changelog diff.Changelog) (_ User, err error)
	DeleteUserByID(ctx context.Context, id uuid.UUID) (err error)
}

// columnsByField maps changelog paths onto database columns
var columnsByField = map[string]string{
	"Username":     "username",
	"Email":        "email",
	"Firstname":    "firstname",
	"Lastname":     "lastname",
	"IsActive":     "is_active",
	"IsStaff":      "is_staff",
	"IsSuperuser":  "is_superuser",
	"PasswordHash": "password_hash",
}

// changesFromChangelog procures a column -> value map of what has to be
// updated, metadata columns are always included
func changesFromChangelog(u User, changelog diff.Changelog) (map[string]interface{}, error) {
	values := map[string]interface{}{
		"username":      u.Username,
		"email":         u.Email,
		"firstname":     u.Firstname,
		"lastname":      u.Lastname,
		"is_active":     u.IsActive,
		"is_staff":      u.IsStaff,
		"is_superuser":  u.IsSuperuser,
		"password_hash": []byte(u.PasswordHash),
	}

	changes := make(map[string]interface{}, len(changelog)+2)
	for _, change := range changelog {
		column, ok := columnsByField[change.Path[0]]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownField, "%s", change.Path[0])
		}

		changes[column] = values[column]
	}

	changes["checksum"] = int64(u.Checksum)
	changes["updated_at"] = u.UpdatedAt

	return changes, nil
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// record is how a user is serialized by the key-value backends,
// unlike the public JSON form it carries the password hash
type record struct {
	User
	PasswordHash []byte `json:"password_hash"`
}

func marshalRecord(u User) ([]byte, error) {
	return json.Marshal(record{User: u, PasswordHash: u.PasswordHash})
}

func unmarshalRecord(data []byte) (u User, err error) {
	var r record
	if err = json.Unmarshal(data, &r); err != nil {
		return u, errors.Wrap(err, "failed to unmarshal user record")
	}

	u = r.User
	u.PasswordHash = r.PasswordHash

	return u, nil
}
