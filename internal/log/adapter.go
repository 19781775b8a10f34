package log

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type logrusAdapter struct {
	entry *logrus.Entry
}

func newAdapter(cfg *Config) (*logrusAdapter, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	backend := logrus.New()

	pattern := cfg.Pattern
	if pattern == "" {
		pattern = defaultPattern
	}
	layout := cfg.Time
	if layout == "" {
		layout = defaultTime
	}
	backend.SetFormatter(&formatter{pattern: pattern, time: layout})

	// An unknown level name falls back to info rather than failing startup.
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	backend.SetLevel(level)

	out := &multiWriter{}
	if len(cfg.Appenders) == 0 {
		out.add(os.Stdout)
	}
	for _, ac := range cfg.Appenders {
		w, err := newAppender(ac)
		if err != nil {
			return nil, err
		}
		out.add(w)
	}
	backend.SetOutput(out)

	return &logrusAdapter{entry: logrus.NewEntry(backend)}, nil
}

// Discard returns a logger that drops every line, handy in tests.
func Discard() Logger {
	backend := logrus.New()
	backend.SetOutput(io.Discard)
	return &logrusAdapter{entry: logrus.NewEntry(backend)}
}

// SetLevel changes the level of the process-wide logger at runtime.
// Level changes are safe while other goroutines are logging.
func SetLevel(level string) error {
	l := GetLogger()
	if l == nil {
		return errors.New("logger not initialized")
	}
	a, ok := l.(*logrusAdapter)
	if !ok {
		return errors.New("logger does not support level changes")
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse level %q: %w", level, err)
	}
	a.entry.Logger.SetLevel(parsed)
	return nil
}

func (l *logrusAdapter) Trace(args ...interface{}) { l.entry.Trace(args...) }
func (l *logrusAdapter) Tracef(format string, args ...interface{}) {
	l.entry.Tracef(format, args...)
}

func (l *logrusAdapter) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *logrusAdapter) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *logrusAdapter) Info(args ...interface{}) { l.entry.Info(args...) }
func (l *logrusAdapter) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *logrusAdapter) Warn(args ...interface{}) { l.entry.Warn(args...) }
func (l *logrusAdapter) Warnf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *logrusAdapter) Error(args ...interface{}) { l.entry.Error(args...) }
func (l *logrusAdapter) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func (l *logrusAdapter) Fatal(args ...interface{}) { l.entry.Fatal(args...) }
func (l *logrusAdapter) Fatalf(format string, args ...interface{}) {
	l.entry.Fatalf(format, args...)
}

func (l *logrusAdapter) WithField(field string, value interface{}) Logger {
	return &logrusAdapter{entry: l.entry.WithField(field, value)}
}

func (l *logrusAdapter) WithFields(fields map[string]interface{}) Logger {
	return &logrusAdapter{entry: l.entry.WithFields(fields)}
}

func (l *logrusAdapter) WithError(err error) Logger {
	return &logrusAdapter{entry: l.entry.WithError(err)}
}

func (l *logrusAdapter) IsTraceEnabled() bool {
	return l.entry.Logger.IsLevelEnabled(logrus.TraceLevel)
}

func (l *logrusAdapter) IsDebugEnabled() bool {
	return l.entry.Logger.IsLevelEnabled(logrus.DebugLevel)
}

func (l *logrusAdapter) IsInfoEnabled() bool {
	return l.entry.Logger.IsLevelEnabled(logrus.InfoLevel)
}
