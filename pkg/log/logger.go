package log

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
	"io"
	"os"
	"sync"
	"time"
)

var logger = zerolog.Nop()
var once sync.Once

type LoggerOption func(*LoggerConfig)

type LoggerConfig struct {
	fileName string
	console  bool
	logLevel zerolog.Level
}

// WithFileLogger writes logs to a rotating file in addition to any other output.
func WithFileLogger(fileName string) LoggerOption {
	return func(l *LoggerConfig) {
		l.fileName = fileName
	}
}

func WithConsoleLogger() LoggerOption {
	return func(l *LoggerConfig) {
		l.console = true
	}
}

// WithLogLevel sets the minimum level by name ("debug", "info", ...). Unknown names keep the default.
func WithLogLevel(level string) LoggerOption {
	return func(l *LoggerConfig) {
		if parsed, err := zerolog.ParseLevel(level); err == nil && level != "" {
			l.logLevel = parsed
		}
	}
}

// Init builds the process-wide logger. Only the first call has an effect.
func Init(serviceName string, opts ...LoggerOption) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := &LoggerConfig{logLevel: zerolog.InfoLevel}

		for _, opt := range opts {
			opt(l)
		}

		output := make([]io.Writer, 0, 2)
		defaultOutput := os.Stdout
		if l.console {
			output = append(output, zerolog.ConsoleWriter{
				Out:        defaultOutput,
				TimeFormat: time.RFC3339,
			})
		}
		if l.fileName != "" {
			output = append(output, &lumberjack.Logger{
				Filename:   l.fileName,
				MaxSize:    5,
				MaxBackups: 10,
				MaxAge:     14,
				Compress:   true,
			})
		}

		if len(output) == 0 {
			output = append(output, defaultOutput)
		}

		logger = zerolog.New(zerolog.MultiLevelWriter(output...)).
			Level(l.logLevel).
			With().
			Timestamp().
			Str("service", serviceName).
			Logger()
	})
}

// GetLogger returns the process-wide logger, a no-op logger until Init has run.
func GetLogger() zerolog.Logger {
	return logger
}

// Component returns the process-wide logger tagged with a component name.
func Component(name string) *zerolog.Logger {
	l := logger.With().Str("component", name).Logger()
	return &l
}
