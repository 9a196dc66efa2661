package user

import (
	"strings"
	"time"

	"github.com/agubarev/accounts/pkg/security/password"
	"github.com/agubarev/accounts/pkg/util"
	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// NewUserObject contains fields sufficient to create a new user
type NewUserObject struct {
	Username  string
	Email     string
	Password  []byte
	Firstname string
	Lastname  string
}

// Essential represents the part of a user which may be changed
// after it has been created
type Essential struct {
	Username    string `db:"username" json:"username"`
	Email       string `db:"email" json:"email"`
	Firstname   string `db:"firstname" json:"firstname"`
	Lastname    string `db:"lastname" json:"lastname"`
	IsActive    bool   `db:"is_active" json:"is_active"`
	IsStaff     bool   `db:"is_staff" json:"is_staff"`
	IsSuperuser bool   `db:"is_superuser" json:"is_superuser"`
}

// Metadata contains system information about a user
type Metadata struct {
	Checksum  uint64    `db:"checksum" json:"checksum"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// User is the main entity of this project
type User struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	PasswordHash password.Hash `db:"password_hash" json:"-"`

	Essential
	Metadata
}

// HasUsablePassword reports whether this user can ever be matched by a password
func (u User) HasUsablePassword() bool {
	return u.PasswordHash.IsUsable()
}

// Validate validates the user
func (u User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrZeroID
	}

	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}

	if u.Email != "" && !govalidator.IsEmail(u.Email) {
		return errors.Wrapf(ErrInvalidEmail, "%s", u.Email)
	}

	return nil
}

// calculateChecksum hashes the essential fields
// NOTE: only 63 bits are kept so that it fits a signed BIGINT column
func (u User) calculateChecksum() uint64 {
	flags := []byte{0, 0, 0}
	for i, f := range []bool{u.IsActive, u.IsStaff, u.IsSuperuser} {
		if f {
			flags[i] = 1
		}
	}

	return util.HashKey(
		u.ID[:],
		[]byte(u.Username),
		[]byte(u.Email),
		[]byte(u.Firstname),
		[]byte(u.Lastname),
		flags,
	) >> 1
}
