// Structured logging for the Ahmes Go migration
//
// Provides leveled, prefixed loggers with structured fields, text or
// JSON output and optional ANSI colors for terminal use.
//
// Copyright (C) 2026  Ahmes Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// DEBUG level for detailed debugging information
	DEBUG LogLevel = iota

	// INFO level for general informational messages
	INFO

	// WARN level for warning messages
	WARN

	// ERROR level for error messages
	ERROR
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a LogLevel
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// OutputFormat specifies the output format for log messages
type OutputFormat int

const (
	// FormatText outputs human-readable text format
	FormatText OutputFormat = iota
	// FormatJSON outputs machine-readable JSON format
	FormatJSON
)

// Fields is a map of structured logging fields
type Fields map[string]interface{}

// ANSI color codes for terminal output
var ansiColors = map[LogLevel]string{
	DEBUG: "\x1b[36m", // Cyan
	INFO:  "\x1b[32m", // Green
	WARN:  "\x1b[33m", // Yellow
	ERROR: "\x1b[31m", // Red
}

const ansiReset = "\x1b[0m"

// Logger is the main logging type
type Logger struct {
	mu         sync.Mutex
	prefix     string
	writer     io.Writer
	level      LogLevel
	timeFormat string
	colorize   bool
	outFormat  OutputFormat
	fields     Fields // Persistent fields attached to this logger
}

// New creates a logger writing text to stderr at INFO level
func New(prefix string) *Logger {
	return &Logger{
		prefix:     prefix,
		writer:     os.Stderr,
		level:      INFO,
		timeFormat: time.RFC3339,
	}
}

// SetLevel sets the minimum level that will be emitted
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// SetWriter redirects output
func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	l.writer = w
	l.mu.Unlock()
}

// SetColorize enables ANSI colors on the text format
func (l *Logger) SetColorize(enable bool) {
	l.mu.Lock()
	l.colorize = enable
	l.mu.Unlock()
}

// SetFormat selects text or JSON output
func (l *Logger) SetFormat(format OutputFormat) {
	l.mu.Lock()
	l.outFormat = format
	l.mu.Unlock()
}

// WithPrefix returns a child logger with an extended prefix sharing
// this logger's settings
func (l *Logger) WithPrefix(prefix string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.prefix != "" {
		prefix = l.prefix + "." + prefix
	}
	return &Logger{
		prefix:     prefix,
		writer:     l.writer,
		level:      l.level,
		timeFormat: l.timeFormat,
		colorize:   l.colorize,
		outFormat:  l.outFormat,
		fields:     l.fields,
	}
}

// WithField returns an Entry carrying one structured field
func (l *Logger) WithField(key string, value interface{}) *Entry {
	return &Entry{logger: l, fields: Fields{key: value}}
}

// WithFields returns an Entry carrying the given fields
func (l *Logger) WithFields(fields Fields) *Entry {
	f := make(Fields, len(fields))
	for k, v := range fields {
		f[k] = v
	}
	return &Entry{logger: l, fields: f}
}

// WithError returns an Entry carrying the error as a field
func (l *Logger) WithError(err error) *Entry {
	return l.WithField("error", err)
}

// Debug logs at DEBUG level with Printf-style formatting
func (l *Logger) Debug(msg string, args ...interface{}) { l.log(DEBUG, msg, args, nil) }

// Info logs at INFO level with Printf-style formatting
func (l *Logger) Info(msg string, args ...interface{}) { l.log(INFO, msg, args, nil) }

// Warn logs at WARN level with Printf-style formatting
func (l *Logger) Warn(msg string, args ...interface{}) { l.log(WARN, msg, args, nil) }

// Error logs at ERROR level with Printf-style formatting
func (l *Logger) Error(msg string, args ...interface{}) { l.log(ERROR, msg, args, nil) }

func (l *Logger) log(level LogLevel, msg string, args []interface{}, fields Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	merged := fields
	if len(l.fields) > 0 {
		merged = make(Fields, len(l.fields)+len(fields))
		for k, v := range l.fields {
			merged[k] = v
		}
		for k, v := range fields {
			merged[k] = v
		}
	}

	var line string
	if l.outFormat == FormatJSON {
		line = l.formatJSON(level, msg, merged)
	} else {
		line = l.formatText(level, msg, merged)
	}
	fmt.Fprintln(l.writer, line)
}

// formatText renders "time [LEVEL] prefix: message key=value ..."
func (l *Logger) formatText(level LogLevel, msg string, fields Fields) string {
	var b strings.Builder
	b.WriteString(time.Now().Format(l.timeFormat))
	b.WriteString(" [")
	if l.colorize {
		b.WriteString(ansiColors[level])
		b.WriteString(level.String())
		b.WriteString(ansiReset)
	} else {
		b.WriteString(level.String())
	}
	b.WriteString("] ")
	if l.prefix != "" {
		b.WriteString(l.prefix)
		b.WriteString(": ")
	}
	b.WriteString(msg)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
	}
	return b.String()
}

// formatJSON renders one JSON object per line
func (l *Logger) formatJSON(level LogLevel, msg string, fields Fields) string {
	obj := map[string]interface{}{
		"time":    time.Now().Format(l.timeFormat),
		"level":   level.String(),
		"message": msg,
	}
	if l.prefix != "" {
		obj["component"] = l.prefix
	}
	for k, v := range fields {
		if err, ok := v.(error); ok {
			obj[k] = err.Error()
			continue
		}
		obj[k] = v
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Sprintf(`{"level":"ERROR","message":"log marshal failed: %v"}`, err)
	}
	return string(data)
}

// Entry represents a single log entry with fields
type Entry struct {
	logger *Logger
	fields Fields
}

// WithField adds one field to the entry
func (e *Entry) WithField(key string, value interface{}) *Entry {
	e.fields[key] = value
	return e
}

// WithFields adds several fields to the entry
func (e *Entry) WithFields(fields Fields) *Entry {
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// WithError adds the error as a field
func (e *Entry) WithError(err error) *Entry {
	e.fields["error"] = err
	return e
}

// Debug emits the entry at DEBUG level
func (e *Entry) Debug(msg string, args ...interface{}) { e.logger.log(DEBUG, msg, args, e.fields) }

// Info emits the entry at INFO level
func (e *Entry) Info(msg string, args ...interface{}) { e.logger.log(INFO, msg, args, e.fields) }

// Warn emits the entry at WARN level
func (e *Entry) Warn(msg string, args ...interface{}) { e.logger.log(WARN, msg, args, e.fields) }

// Error emits the entry at ERROR level
func (e *Entry) Error(msg string, args ...interface{}) { e.logger.log(ERROR, msg, args, e.fields) }

var (
	defaultOnce   sync.Once
	defaultLogger *Logger
)

// Default returns the process-wide logger
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = New("")
	})
	return defaultLogger
}
