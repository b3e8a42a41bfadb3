package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents the level of logging
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger writes leveled console lines through zerolog
type Logger struct {
	mu     sync.Mutex
	level  LogLevel
	prefix string
	zl     zerolog.Logger
}

// defaultLogger is the package-level logger instance
var defaultLogger *Logger

func init() {
	defaultLogger = New(LevelInfo, os.Stderr, "catfill")
}

// New creates a new logger instance
func New(level LogLevel, output io.Writer, prefix string) *Logger {
	l := &Logger{level: level, prefix: prefix}
	l.setOutput(output)
	return l
}

func (l *Logger) setOutput(output io.Writer) {
	l.zl = zerolog.New(zerolog.ConsoleWriter{
		Out:        output,
		NoColor:    true,
		TimeFormat: "2006-01-02T15:04:05",
	}).With().Timestamp().Str("component", l.prefix).Logger()
}

// SetLevel sets the logging level for the default logger
func SetLevel(level LogLevel) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.level = level
}

// SetOutput redirects the default logger
func SetOutput(output io.Writer) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.setOutput(output)
}

// SetVerbose enables verbose logging (DEBUG level) to stderr
func SetVerbose(verbose bool) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()

	if verbose {
		defaultLogger.level = LevelDebug
		// In verbose mode, also log to file for debugging
		if logFile := getDebugLogFile(); logFile != nil {
			defaultLogger.setOutput(io.MultiWriter(os.Stderr, logFile))
		}
	} else {
		defaultLogger.level = LevelInfo
		defaultLogger.setOutput(os.Stderr)
	}
}

// getDebugLogFile returns a file handle for debug logging
func getDebugLogFile() *os.File {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	logPath := filepath.Join(home, ".config", "catfill", "debug.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil
	}

	return file
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	message := fmt.Sprintf(format, args...)

	// Filter out secrets - never log tokens, passwords, or auth headers
	if containsSensitive(message) {
		message = "[REDACTED: contains sensitive data]"
	}

	l.zl.WithLevel(level.zerolog()).Msg(message)
}

// containsSensitive checks if a message contains sensitive information
func containsSensitive(message string) bool {
	lower := strings.ToLower(message)
	sensitiveWords := []string{
		"token", "password", "apikey", "api_key", "auth", "credential",
		"secret", "key=", "authorization:", "basic ", "bearer ",
	}

	for _, word := range sensitiveWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// Debug logs debug information (only shown with --verbose)
func Debug(format string, args ...interface{}) {
	defaultLogger.log(LevelDebug, format, args...)
}

// Info logs informational messages
func Info(format string, args ...interface{}) {
	defaultLogger.log(LevelInfo, format, args...)
}

// Warn logs warning messages
func Warn(format string, args ...interface{}) {
	defaultLogger.log(LevelWarn, format, args...)
}

// Error logs error messages
func Error(format string, args ...interface{}) {
	defaultLogger.log(LevelError, format, args...)
}

// HTTP logs HTTP request/response information (debug level)
func HTTP(method, url string) {
	Debug("HTTP %s %s", method, url)
}

// HTTPResponse logs HTTP response information (debug level)
func HTTPResponse(status int, duration time.Duration) {
	Debug("HTTP response: %d (%v)", status, duration)
}

// Config logs configuration-related information (debug level)
func Config(format string, args ...interface{}) {
	Debug("CONFIG: "+format, args...)
}

// TUI logs TUI-related information (debug level)
func TUI(format string, args ...interface{}) {
	Debug("TUI: "+format, args...)
}

// Rules logs rule sheet fetches, cache hits and matches (debug level)
func Rules(format string, args ...interface{}) {
	Debug("RULES: "+format, args...)
}

// Match logs comparison and extraction results (debug level)
func Match(format string, args ...interface{}) {
	Debug("MATCH: "+format, args...)
}
