package database

import (
	"context"
	"strings"

	"github.com/gocraft/dbr/v2"
	_ "github.com/jinzhu/gorm/dialects/mysql"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// MySQLConnection opens a dbr connection to MySQL, parseTime is forced
// because stores scan DATETIME columns into time.Time
func MySQLConnection(dsn string, logger *zap.Logger) (*dbr.Connection, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, ErrEmptyDSN
	}

	if !strings.Contains(dsn, "parseTime=") {
		if strings.Contains(dsn, "?") {
			dsn += "&parseTime=true"
		} else {
			dsn += "?parseTime=true"
		}
	}

	var receiver dbr.EventReceiver
	if logger != nil {
		receiver = &zapReceiver{logger: logger.Named("[mysql]")}
	}

	conn, err := dbr.Open("mysql", dsn, receiver)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open mysql connection")
	}

	if err = conn.PingContext(context.Background()); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to connect to mysql")
	}

	return conn, nil
}

// zapReceiver forwards dbr events to zap
type zapReceiver struct {
	logger *zap.Logger
}

func kvFields(kvs map[string]string) []zap.Field {
	fields := make([]zap.Field, 0, len(kvs))
	for k, v := range kvs {
		fields = append(fields, zap.String(k, v))
	}

	return fields
}

func (r *zapReceiver) Event(eventName string) {
	r.logger.Debug(eventName)
}

func (r *zapReceiver) EventKv(eventName string, kvs map[string]string) {
	r.logger.Debug(eventName, kvFields(kvs)...)
}

func (r *zapReceiver) EventErr(eventName string, err error) error {
	r.logger.Error(eventName, zap.Error(err))
	return err
}

func (r *zapReceiver) EventErrKv(eventName string, err error, kvs map[string]string) error {
	r.logger.Error(eventName, append(kvFields(kvs), zap.Error(err))...)
	return err
}

func (r *zapReceiver) Timing(eventName string, nanoseconds int64) {
	r.logger.Debug(eventName, zap.Int64("ns", nanoseconds))
}

func (r *zapReceiver) TimingKv(eventName string, nanoseconds int64, kvs map[string]string) {
	r.logger.Debug(eventName, append(kvFields(kvs), zap.Int64("ns", nanoseconds))...)
}
