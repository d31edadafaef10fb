package util

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// LogFormat represents the output format
type LogFormat string

const (
	FormatText LogFormat = "text"
	FormatJSON LogFormat = "json"
)

// Output represents a log output destination
type Output interface {
	Write(entry LogEntry) error
	Close() error
}

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger provides structured logging functionality
type Logger struct {
	level   LogLevel
	outputs []Output
	fields  map[string]interface{}
	mu      sync.RWMutex
}

// NewLogger creates a new logger. When debugToConsole is set, entries are
// mirrored to stderr; the interactive surface owns the terminal, so the file
// output is the default sink.
func NewLogger(levelStr string, logFile string, debugToConsole bool) *Logger {
	logger := &Logger{
		level:   parseLogLevel(levelStr),
		outputs: make([]Output, 0),
		fields:  make(map[string]interface{}),
	}

	if debugToConsole {
		logger.AddOutput(NewConsoleOutput(os.Stderr, FormatText))
	}

	if logFile != "" {
		fileOutput, err := NewFileOutput(logFile, FormatText)
		if err != nil {
			panic(fmt.Sprintf("Failed to create file output for %s: %v", logFile, err))
		}
		logger.AddOutput(fileOutput)
	}

	return logger
}

// parseLogLevel parses a log level string
func parseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// levelToString converts LogLevel to string
func levelToString(level LogLevel) string {
	switch level {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// log writes a log entry to all outputs
func (l *Logger) log(level LogLevel, msg string, fields ...Field) {
	if l.level > level {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     levelToString(level),
		Message:   msg,
		Fields:    make(map[string]interface{}),
	}

	for k, v := range l.fields {
		entry.Fields[k] = v
	}
	for _, field := range fields {
		entry.Fields[field.Key] = field.Value
	}

	for _, output := range l.outputs {
		if err := output.Write(entry); err != nil {
			log.Printf("Failed to write log entry: %v", err)
		}
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields...)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(LevelDebug, fmt.Sprintf(format, args...))
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields...)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields...)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(LevelWarn, fmt.Sprintf(format, args...))
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields...)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(LevelError, fmt.Sprintf(format, args...))
}

// Fatal logs a fatal error and exits
func (l *Logger) Fatal(msg string, fields ...Field) {
	l.log(LevelFatal, msg, fields...)
	os.Exit(1)
}

// With returns a new logger with additional fields
func (l *Logger) With(fields ...Field) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	newFields := make(map[string]interface{})
	for k, v := range l.fields {
		newFields[k] = v
	}
	for _, field := range fields {
		newFields[field.Key] = field.Value
	}

	return &Logger{
		level:   l.level,
		outputs: l.outputs,
		fields:  newFields,
	}
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// AddOutput adds a new output destination
func (l *Logger) AddOutput(output Output) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outputs = append(l.outputs, output)
}
