// Package logging wraps github.com/rs/zerolog into the same small surface
// the teacher's logging package exposed (SetupLogger, DebugLog, LogError,
// LogWarning, LogInfo), so callers migrate call-for-call while the backing
// implementation gains structured fields and levels.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	logger  zerolog.Logger
	isSetup bool
	logFile *os.File
)

func init() {
	logger = zerolog.New(io.Discard).With().Timestamp().Logger()
}

// SetupLogger initializes the package logger to write structured JSON lines
// to logFilePath, additionally to stdout when tee is true.
func SetupLogger(logFilePath string, tee bool) error {
	mu.Lock()
	defer mu.Unlock()

	if isSetup {
		return nil
	}

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	logFile = f

	var w io.Writer = f
	if tee {
		w = io.MultiWriter(f, zerolog.ConsoleWriter{Out: os.Stdout})
	}
	logger = zerolog.New(w).With().Timestamp().Logger()
	logger.Info().Msg("tagmetry debug log started")

	isSetup = true
	return nil
}

// CloseLogger flushes and closes the underlying log file, if any.
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logger.Info().Msg("tagmetry debug log closed")
		logFile.Close()
		logFile = nil
		isSetup = false
	}
}

// Logger returns the shared structured logger for callers that want direct
// zerolog access (e.g. to attach request-scoped fields).
func Logger() *zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return &logger
}

// LogInfo logs an informational message.
func LogInfo(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	logger.Info().Msgf(format, args...)
}

// DebugLog logs a debug-level message.
func DebugLog(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	logger.Debug().Msgf(format, args...)
}

// LogError logs an error-level message.
func LogError(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	logger.Error().Msgf(format, args...)
}

// LogWarning logs a warn-level message.
func LogWarning(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	logger.Warn().Msgf(format, args...)
}

// LogImageProcessed logs the outcome of processing a single image, mirroring
// the teacher's per-image audit line but as a structured event.
func LogImageProcessed(path string, success bool, errMsg string) {
	mu.Lock()
	defer mu.Unlock()
	ev := logger.Info()
	if !success {
		ev = logger.Warn().Str("error", errMsg)
	}
	ev.Str("path", path).Bool("success", success).Msg("image processed")
}

// SinkWriter bridges a progress.Sink's messages into the structured logger,
// so warnings surfaced through the progress channel (spec.md §7's
// propagation policy) are also durably logged.
func SinkWriter(stage string, percent float64, message string) {
	mu.Lock()
	defer mu.Unlock()
	logger.Info().Str("stage", stage).Float64("percent", percent).Msg(message)
}
