package core

import "github.com/pkg/errors"

// errors
var (
	ErrNilCore        = errors.New("core is nil")
	ErrNilUserManager = errors.New("user manager is nil")
)
