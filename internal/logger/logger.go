// Package logger builds the service's zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

type stackTracer interface{ StackTrace() pkgerrors.StackTrace }

var stacksOnce sync.Once

// configureStacks makes .Stack() on error events render pkg/errors stacks,
// attaching one when the error has none.
func configureStacks() {
	stacksOnce.Do(func() {
		zerolog.ErrorStackMarshaler = func(err error) interface{} {
			if _, ok := err.(stackTracer); !ok {
				err = pkgerrors.WithStack(err)
			}
			return zpkgerrors.MarshalStack(err)
		}
	})
}

// Options controls where and how much the logger writes.
type Options struct {
	Service string
	// Level is a zerolog level name; empty or unknown means info.
	Level string
	// Console switches to human-readable output for local runs.
	Console bool
	Out     io.Writer
}

// New returns a JSON logger tagged with the service name.
func New(opts Options) zerolog.Logger {
	configureStacks()

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out}
	}
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(level).With().
		Str("service", opts.Service).
		Timestamp().
		Logger()
}
