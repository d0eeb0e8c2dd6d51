// Package xlog centralizes the structured logging used across the
// container, ObjC, and Swift processors. Recoverable errors and
// warnings (spec kinds 2 and 3) are both logged here AND appended to
// the Diagnostics/Warnings slice the caller owns; this package only
// handles the observability side.
package xlog

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.Mutex
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).With().Timestamp().Logger().Level(zerolog.WarnLevel)
)

// SetOutput redirects the package logger, e.g. to io.Discard in tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = zerolog.New(w).With().Timestamp().Logger().Level(zerolog.WarnLevel)
}

// SetLevel adjusts verbosity; callers pass e.g. "debug", "warn", "error".
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	logger = logger.Level(lvl)
}

func Warn() *zerolog.Event {
	mu.Lock()
	defer mu.Unlock()
	return logger.Warn()
}

func Debug() *zerolog.Event {
	mu.Lock()
	defer mu.Unlock()
	return logger.Debug()
}

func Error() *zerolog.Event {
	mu.Lock()
	defer mu.Unlock()
	return logger.Error()
}
