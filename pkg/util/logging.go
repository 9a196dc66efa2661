package util

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogger initializes the default logger
// NOTE: errors always go to stderr and everything below to stdout,
// if logDir is given then both are also written to their own files
func DefaultLogger(debugMode bool, logDir string) (*zap.Logger, error) {
	return NewLogger(debugMode, logDir, os.Stdout)
}

// NewLogger is the same as DefaultLogger except that console output below
// error level goes to out, commands which print results to stdout pass stderr
func NewLogger(debugMode bool, logDir string, out io.Writer) (*zap.Logger, error) {
	if out == nil {
		out = os.Stdout
	}

	logDir = strings.TrimSpace(logDir)

	//---------------------------------------------------------------------------
	// log enablers and conjunction
	//---------------------------------------------------------------------------
	minLevel := zapcore.InfoLevel
	if debugMode {
		minLevel = zapcore.DebugLevel
	}

	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= minLevel && lvl < zapcore.ErrorLevel
	})

	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), highPriority),
		zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(out)), lowPriority),
	}

	// console only
	if logDir == "" {
		return zap.New(zapcore.NewTee(cores...)), nil
	}

	logDir, err := ExpandPath(logDir)
	if err != nil {
		return nil, err
	}

	if err := CreateDirectoryIfNotExists(logDir, 0755); err != nil {
		return nil, err
	}

	//---------------------------------------------------------------------------
	// errors and regular logfiles
	//---------------------------------------------------------------------------
	errFile, err := openLogFile(filepath.Join(logDir, "errors.log"))
	if err != nil {
		return nil, err
	}

	stdFile, err := openLogFile(filepath.Join(logDir, "standard.log"))
	if err != nil {
		return nil, err
	}

	fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	cores = append(
		cores,
		zapcore.NewCore(fileEncoder, errFile, highPriority),
		zapcore.NewCore(fileEncoder, stdFile, lowPriority),
	)

	return zap.New(zapcore.NewTee(cores...)), nil
}

func openLogFile(path string) (zapcore.WriteSyncer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open log file %s", path)
	}

	return zapcore.Lock(zapcore.AddSync(f)), nil
}
