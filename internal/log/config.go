package log

// Config controls the process-wide logger. The zero value logs to stdout at
// info level with the default pattern.
type Config struct {
	// Level is a logrus level name: trace, debug, info, warn, error, fatal.
	Level string `mapstructure:"level" yaml:"level"`
	// Pattern is the line layout, see formatter.go for the verbs.
	Pattern string `mapstructure:"pattern" yaml:"pattern,omitempty"`
	// Time is the Go reference layout used for %time.
	Time string `mapstructure:"time" yaml:"time,omitempty"`

	Appenders []AppenderConfig `mapstructure:"appenders" yaml:"appenders,omitempty"`
}

// AppenderConfig adds an output beside stdout. Type selects the appender,
// Options carries its type-specific settings.
type AppenderConfig struct {
	Type    string                 `mapstructure:"type" yaml:"type"`
	Options map[string]interface{} `mapstructure:"options" yaml:"options,omitempty"`
}

// FileOptions are the Options of a "file" appender, rotation handled by
// lumberjack. MaxSize is megabytes, MaxAge days.
type FileOptions struct {
	Filename   string `mapstructure:"filename" yaml:"filename"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size,omitempty"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups,omitempty"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age,omitempty"`
	Compress   bool   `mapstructure:"compress" yaml:"compress,omitempty"`
}

const (
	defaultPattern = "%time [%level] %msg %field\n"
	defaultTime    = "2006-01-02 15:04:05.000"
)
