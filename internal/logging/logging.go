// Package logging configures the zerolog logger shared by nsevent commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger. Human-readable output goes to w; when
// logFile is set the same records are also appended to it as JSON.
// The returned closer releases the log file and is never nil.
func Setup(level zerolog.Level, w io.Writer, logFile string) (io.Closer, error) {
	zerolog.SetGlobalLevel(level)

	consoleWriter := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
	}

	writers := []io.Writer{consoleWriter}
	var closer io.Closer = nopCloser{}

	if logFile != "" {
		f, err := openLogFile(logFile)
		if err != nil {
			return closer, err
		}
		writers = append(writers, f)
		closer = f
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()

	// Add caller information for debug and trace levels
	if level <= zerolog.DebugLevel {
		log.Logger = log.Logger.With().Caller().Logger()
	}

	log.Debug().Str("level", level.String()).Str("logFile", logFile).Msg("Logger initialized")
	return closer, nil
}

// LevelForVerbosity raises base by the number of -v flags: one for info, two
// for debug, three or more for trace. It never lowers base.
func LevelForVerbosity(base zerolog.Level, verbosity int) zerolog.Level {
	var lvl zerolog.Level
	switch {
	case verbosity <= 0:
		return base
	case verbosity == 1:
		lvl = zerolog.InfoLevel
	case verbosity == 2:
		lvl = zerolog.DebugLevel
	default:
		lvl = zerolog.TraceLevel
	}
	if lvl < base {
		return lvl
	}
	return base
}

// GetLogger returns a contextualized logger with the given name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// LogOperationStart logs the start of an operation and returns a function to log its completion
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().
		Str("operation", operation).
		Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}

// openLogFile creates the log file and its parent directories
func openLogFile(logPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
