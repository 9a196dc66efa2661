package user

import "github.com/pkg/errors"

// errors
var (
	ErrNilManager               = errors.New("user manager is nil")
	ErrNilStore                 = errors.New("user store is nil")
	ErrNilDB                    = errors.New("database is nil")
	ErrUserExists               = errors.New("user already exists")
	ErrUserNotFound             = errors.New("user not found")
	ErrUsernameTaken            = errors.New("username is already taken")
	ErrEmailTaken               = errors.New("email is already taken")
	ErrEmptyUsername            = errors.New("username must be set")
	ErrInvalidEmail             = errors.New("invalid email address")
	ErrZeroID                   = errors.New("object has no id")
	ErrNothingChanged           = errors.New("nothing has changed")
	ErrUnknownField             = errors.New("unknown field")
	ErrSuperuserMustBeStaff     = errors.New("superuser must have is_staff=true")
	ErrSuperuserMustBeSuperuser = errors.New("superuser must have is_superuser=true")
)
