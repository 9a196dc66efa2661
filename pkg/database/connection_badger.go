package database

import (
	"github.com/agubarev/accounts/pkg/util"
	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// BadgerDB opens (or creates) an embedded badger database in dir
func BadgerDB(dir string, logger *zap.Logger) (*badger.DB, error) {
	dir, err := util.ExpandPath(dir)
	if err != nil {
		return nil, err
	}

	if dir == "" {
		return nil, ErrEmptyDir
	}

	if err = util.CreateDirectoryIfNotExists(dir, 0700); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	opts := badger.DefaultOptions(dir).
		WithLogger(&badgerLogger{logger: logger.Named("[badger]").Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open badger database at %s", dir)
	}

	return db, nil
}

// badgerLogger adapts zap to badger.Logger
type badgerLogger struct {
	logger *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Infof(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}
