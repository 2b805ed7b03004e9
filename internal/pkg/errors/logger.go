package errors

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/memix/memix/internal/pkg/security"
)

// Logger wraps a zerolog logger with verbose mode support.
type Logger struct {
	mu      sync.Mutex
	zl      zerolog.Logger
	verbose bool
}

var defaultLogger = NewLogger(os.Stderr, false)

// NewLogger creates a console logger writing to output. Verbose loggers emit
// debug records, others only errors.
func NewLogger(output io.Writer, verbose bool) *Logger {
	l := &Logger{verbose: verbose}
	l.zl = newZerolog(output, verbose)
	return l
}

func newZerolog(output io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.ErrorLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: "15:04:05",
		NoColor:    true,
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(verbose bool) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.verbose = verbose
	if verbose {
		defaultLogger.zl = defaultLogger.zl.Level(zerolog.DebugLevel)
	} else {
		defaultLogger.zl = defaultLogger.zl.Level(zerolog.ErrorLevel)
	}
}

// IsVerbose returns whether verbose logging is enabled.
func IsVerbose() bool {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	return defaultLogger.verbose
}

// SetOutput redirects the default logger, keeping its verbosity.
func SetOutput(w io.Writer) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.zl = newZerolog(w, defaultLogger.verbose)
}

func (l *Logger) event(level zerolog.Level) *zerolog.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zl.WithLevel(level)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.event(zerolog.ErrorLevel).Msg(security.MaskKeys(fmt.Sprintf(format, args...)))
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.event(zerolog.WarnLevel).Msg(security.MaskKeys(fmt.Sprintf(format, args...)))
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.event(zerolog.InfoLevel).Msg(security.MaskKeys(fmt.Sprintf(format, args...)))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.event(zerolog.DebugLevel).Msg(security.MaskKeys(fmt.Sprintf(format, args...)))
}

// LogAPIRequest logs an outbound chat-completion request.
func (l *Logger) LogAPIRequest(provider, endpoint, model string, promptLength int) {
	l.event(zerolog.DebugLevel).
		Str("provider", provider).
		Str("endpoint", endpoint).
		Str("model", model).
		Int("prompt_length", promptLength).
		Msg("API request")
}

// LogAPIResponse logs a chat-completion response.
func (l *Logger) LogAPIResponse(provider string, statusCode int, responseLength int, duration time.Duration) {
	l.event(zerolog.DebugLevel).
		Str("provider", provider).
		Int("status", statusCode).
		Int("response_length", responseLength).
		Dur("duration", duration).
		Msg("API response")
}

// LogStateTransition logs a pipeline state change.
func (l *Logger) LogStateTransition(from, to string) {
	l.event(zerolog.DebugLevel).
		Str("from", from).
		Str("to", to).
		Msg("state transition")
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	defaultLogger.Error(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	defaultLogger.Warn(format, args...)
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	defaultLogger.Info(format, args...)
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	defaultLogger.Debug(format, args...)
}

// LogAPIRequest logs an API request in verbose mode.
func LogAPIRequest(provider, endpoint, model string, promptLength int) {
	defaultLogger.LogAPIRequest(provider, endpoint, model, promptLength)
}

// LogAPIResponse logs an API response in verbose mode.
func LogAPIResponse(provider string, statusCode int, responseLength int, duration time.Duration) {
	defaultLogger.LogAPIResponse(provider, statusCode, responseLength, duration)
}

// LogStateTransition logs a pipeline state change in verbose mode.
func LogStateTransition(from, to string) {
	defaultLogger.LogStateTransition(from, to)
}
