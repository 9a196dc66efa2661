package database

import "github.com/pkg/errors"

var (
	ErrEmptyDSN = errors.New("database DSN is empty")
	ErrEmptyDir = errors.New("database directory is empty")
)
