package logger

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	defaultLogger zerolog.Logger
	once          sync.Once
)

// Init initializes the default logger writing human-readable output to stderr.
// It ensures that the logger is initialized only once.
func Init(level string) {
	once.Do(func() {
		lvl, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil || level == "" {
			lvl = zerolog.InfoLevel
		}
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		defaultLogger = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	})
}

// Get returns the initialized default logger. It calls Init() with the default
// level to ensure the logger is ready before returning it.
func Get() zerolog.Logger {
	Init("")
	return defaultLogger
}

// With returns the default logger tagged with a stage name.
func With(stage string) zerolog.Logger {
	return Get().With().Str("stage", stage).Logger()
}
