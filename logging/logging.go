package logging

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

// Level orders log severities; loggers drop entries below their level
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if l < DebugLevel || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel reads a level name such as "debug" or "WARN". An empty name
// means info.
func ParseLevel(name string) (Level, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	switch upper {
	case "":
		return InfoLevel, nil
	case "WARNING":
		return WarnLevel, nil
	}
	for i, n := range levelNames {
		if n == upper {
			return Level(i), nil
		}
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", name)
}

// Fields are structured key/value pairs attached to an entry
type Fields map[string]any

// Logger is the logging surface used across the module
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	Fatal(err error, msg string, fields ...Fields)

	WithFields(fields Fields) Logger
	// WithContext returns a logger carrying the fields stored in ctx
	WithContext(ctx context.Context) Logger
	SetLevel(level Level)
}

type fieldsKey struct{}

// ContextWithFields stores fields for loggers derived with WithContext
func ContextWithFields(ctx context.Context, fields Fields) context.Context {
	return context.WithValue(ctx, fieldsKey{}, fields)
}

// FieldsFromContext returns the fields stored by ContextWithFields
func FieldsFromContext(ctx context.Context) (Fields, bool) {
	if ctx == nil {
		return nil, false
	}
	fields, ok := ctx.Value(fieldsKey{}).(Fields)
	return fields, ok
}

// holder lets atomic.Value store loggers of different concrete types
type holder struct{ Logger }

var global atomic.Value

func init() {
	global.Store(holder{NewDefaultLogger()})
}

// SetGlobalLogger replaces the package logger. nil discards all output.
func SetGlobalLogger(logger Logger) {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	global.Store(holder{logger})
}

// GetGlobalLogger returns the package logger
func GetGlobalLogger() Logger {
	return global.Load().(holder).Logger
}

func Debug(msg string, fields ...Fields) {
	GetGlobalLogger().Debug(msg, fields...)
}

func Info(msg string, fields ...Fields) {
	GetGlobalLogger().Info(msg, fields...)
}

func Warn(msg string, fields ...Fields) {
	GetGlobalLogger().Warn(msg, fields...)
}

func Error(err error, msg string, fields ...Fields) {
	GetGlobalLogger().Error(err, msg, fields...)
}

func Fatal(err error, msg string, fields ...Fields) {
	GetGlobalLogger().Fatal(err, msg, fields...)
}

// WithFields derives a scoped logger from the package logger
func WithFields(fields Fields) Logger {
	return GetGlobalLogger().WithFields(fields)
}

func WithContext(ctx context.Context) Logger {
	return GetGlobalLogger().WithContext(ctx)
}

func SetLevel(level Level) {
	GetGlobalLogger().SetLevel(level)
}
