// Package logger provides JSON structured logging using zerolog.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var globalLogger zerolog.Logger

func init() {
	globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.TimeFieldFormat = time.RFC3339
}

// Init configures the global logger. In debug mode the level drops to debug
// and output switches to a human-readable console writer.
func Init(level string, debug bool) error {
	var output io.Writer = os.Stderr

	lvl := zerolog.InfoLevel
	if debug {
		lvl = zerolog.DebugLevel
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	} else if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(level)
		if err != nil {
			return err
		}
	}

	globalLogger = zerolog.New(output).Level(lvl).With().Timestamp().Logger()
	log.Logger = globalLogger
	return nil
}

// With returns a child logger with the given component field.
func With(component string) zerolog.Logger {
	return globalLogger.With().Str("component", component).Logger()
}

func Debug() *zerolog.Event { return globalLogger.Debug() }
func Info() *zerolog.Event  { return globalLogger.Info() }
func Warn() *zerolog.Event  { return globalLogger.Warn() }
func Error() *zerolog.Event { return globalLogger.Error() }
