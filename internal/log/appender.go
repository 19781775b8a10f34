package log

import (
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/natefinch/lumberjack.v2"
)

// multiWriter fans a log line out to every appender. A failing appender does
// not stop the others, the last error is reported.
type multiWriter struct {
	writers []io.Writer
}

func (m *multiWriter) Write(p []byte) (n int, err error) {
	for _, w := range m.writers {
		if _, e := w.Write(p); e != nil {
			err = e
		}
	}
	return len(p), err
}

func (m *multiWriter) add(w io.Writer) *multiWriter {
	m.writers = append(m.writers, w)
	return m
}

// newAppender turns one appender config into its writer.
func newAppender(cfg AppenderConfig) (io.Writer, error) {
	switch cfg.Type {
	case "console":
		return os.Stdout, nil
	case "file":
		var opts FileOptions
		if err := mapstructure.Decode(cfg.Options, &opts); err != nil {
			return nil, fmt.Errorf("file appender options: %w", err)
		}
		if opts.Filename == "" {
			return nil, fmt.Errorf("file appender needs a filename")
		}
		return &lumberjack.Logger{
			Filename:   opts.Filename,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		}, nil
	default:
		return nil, fmt.Errorf("unknown appender type %q", cfg.Type)
	}
}
