package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bingshan1999/TaskManager/internal/cfg"
)

var setFieldNames sync.Once

// New builds the process logger. Local runs get a human readable console
// writer, everything else logs JSON to stdout.
func New(service, env, level string) zerolog.Logger {
	return newWithWriter(os.Stdout, service, env, level)
}

func newWithWriter(out io.Writer, service, env, level string) zerolog.Logger {
	setFieldNames.Do(func() {
		zerolog.TimestampFieldName = "timestamp"
	})

	w := out
	if env == cfg.EnvLocal {
		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = out
		w = consoleWriter
	}

	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("service", service).
		Int("pid", os.Getpid()).
		Logger()
}

// ParseLevel falls back to info for empty or unknown levels.
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}
