package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
)

const colorReset = "\033[0m"

// levelColors wraps warnings and errors on terminals; debug and info stay plain
var levelColors = map[Level]string{
	WarnLevel:  "\033[33m",
	ErrorLevel: "\033[31m",
	FatalLevel: "\033[1m\033[31m",
}

// DefaultLogger writes "[LEVEL] message key=value" lines through the
// standard log package. Debug and info go to the first stream, everything
// else to the second.
type DefaultLogger struct {
	out    *log.Logger
	errOut *log.Logger
	level  Level
	fields Fields
	color  bool
}

// NewDefaultLogger logs to stdout and stderr, colored when stdout is a terminal
func NewDefaultLogger() *DefaultLogger {
	logger := NewDefaultLoggerWithWriters(os.Stdout, os.Stderr)
	if info, err := os.Stdout.Stat(); err == nil {
		logger.color = info.Mode()&os.ModeCharDevice != 0
	}
	return logger
}

// NewDefaultLoggerWithWriters creates an uncolored logger at info level
func NewDefaultLoggerWithWriters(stdout, stderr io.Writer) *DefaultLogger {
	return &DefaultLogger{
		out:    log.New(stdout, "", log.LstdFlags),
		errOut: log.New(stderr, "", log.LstdFlags),
		level:  InfoLevel,
		fields: Fields{},
	}
}

func (d *DefaultLogger) line(level Level, err error, msg string, extra []Fields) string {
	fields := Fields{}
	maps.Copy(fields, d.fields)
	for _, f := range extra {
		maps.Copy(fields, f)
	}

	var b strings.Builder
	if d.color {
		b.WriteString(levelColors[level])
	}
	fmt.Fprintf(&b, "[%s] %s", level, msg)
	if err != nil {
		fmt.Fprintf(&b, ": %v", err)
	}
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	if d.color && levelColors[level] != "" {
		b.WriteString(colorReset)
	}
	return b.String()
}

func (d *DefaultLogger) log(level Level, err error, msg string, fields []Fields) {
	if level < d.level {
		return
	}
	target := d.out
	if level >= WarnLevel {
		target = d.errOut
	}
	target.Println(d.line(level, err, msg, fields))
	if level == FatalLevel {
		os.Exit(1)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.log(DebugLevel, nil, msg, fields)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.log(InfoLevel, nil, msg, fields)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.log(WarnLevel, nil, msg, fields)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.log(ErrorLevel, err, msg, fields)
}

func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.log(FatalLevel, err, msg, fields)
}

func (d *DefaultLogger) WithFields(fields Fields) Logger {
	scoped := *d
	scoped.fields = Fields{}
	maps.Copy(scoped.fields, d.fields)
	maps.Copy(scoped.fields, fields)
	return &scoped
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := FieldsFromContext(ctx); ok {
		return d.WithFields(fields)
	}
	return d
}

func (d *DefaultLogger) SetLevel(level Level) {
	d.level = level
}

// NoOpLogger discards everything
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) Fatal(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}
