// Package log wraps logrus behind a small Logger interface so the rest of
// the daemon never imports the backend directly.
package log

import "sync"

type Logger interface {
	Trace(args ...interface{})
	Tracef(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsTraceEnabled() bool
	IsDebugEnabled() bool
	IsInfoEnabled() bool
}

var (
	once   sync.Once
	logger Logger
)

// Init builds the process-wide logger from cfg. Only the first call has an
// effect.
func Init(cfg *Config) error {
	var err error
	once.Do(func() {
		logger, err = New(cfg)
	})
	return err
}

// GetLogger returns the process-wide logger. Init must have run first.
func GetLogger() Logger {
	return logger
}

// New builds an independent logger, used by Init and by code that needs a
// private instance (tests, the validate command).
func New(cfg *Config) (Logger, error) {
	return newAdapter(cfg)
}
