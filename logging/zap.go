package logging

import (
	"context"
	"maps"
	"slices"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap logger to the Logger interface
type ZapLogger struct {
	logger *zap.Logger
	level  Level
	atom   *zap.AtomicLevel // nil when the core's level is not ours to change
}

// NewZapLogger builds a zap logger; development mode writes console output
func NewZapLogger(development bool) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return fromZapLevel(logger, cfg.Level), nil
}

// fromZapLevel wraps a logger whose core filters on atom, so SetLevel can
// lower the core's threshold as well
func fromZapLevel(logger *zap.Logger, atom zap.AtomicLevel) *ZapLogger {
	z := FromZap(logger)
	z.level = levelFromZap(atom.Level())
	z.atom = &atom
	return z
}

var zapLevels = map[Level]zapcore.Level{
	DebugLevel: zapcore.DebugLevel,
	InfoLevel:  zapcore.InfoLevel,
	WarnLevel:  zapcore.WarnLevel,
	ErrorLevel: zapcore.ErrorLevel,
	FatalLevel: zapcore.FatalLevel,
}

func levelFromZap(level zapcore.Level) Level {
	for l, zl := range zapLevels {
		if zl == level {
			return l
		}
	}
	return DebugLevel
}

// FromZap wraps an existing zap logger. The wrapper's level starts at Debug so
// filtering is left to the zap core until SetLevel is called.
func FromZap(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger, level: DebugLevel}
}

// Zap returns the underlying zap logger
func (z *ZapLogger) Zap() *zap.Logger {
	return z.logger
}

// Sync flushes buffered entries
func (z *ZapLogger) Sync() error {
	return z.logger.Sync()
}

func zapFields(err error, fields []Fields) []zap.Field {
	merged := make(Fields)
	for _, f := range fields {
		maps.Copy(merged, f)
	}
	out := make([]zap.Field, 0, len(merged)+1)
	if err != nil {
		out = append(out, zap.Error(err))
	}
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		out = append(out, zap.Any(k, merged[k]))
	}
	return out
}

func (z *ZapLogger) Debug(msg string, fields ...Fields) {
	if z.level <= DebugLevel {
		z.logger.Debug(msg, zapFields(nil, fields)...)
	}
}

func (z *ZapLogger) Info(msg string, fields ...Fields) {
	if z.level <= InfoLevel {
		z.logger.Info(msg, zapFields(nil, fields)...)
	}
}

func (z *ZapLogger) Warn(msg string, fields ...Fields) {
	if z.level <= WarnLevel {
		z.logger.Warn(msg, zapFields(nil, fields)...)
	}
}

func (z *ZapLogger) Error(err error, msg string, fields ...Fields) {
	if z.level <= ErrorLevel {
		z.logger.Error(msg, zapFields(err, fields)...)
	}
}

func (z *ZapLogger) Fatal(err error, msg string, fields ...Fields) {
	z.logger.Fatal(msg, zapFields(err, fields)...)
}

func (z *ZapLogger) WithFields(fields Fields) Logger {
	return &ZapLogger{
		logger: z.logger.With(zapFields(nil, []Fields{fields})...),
		level:  z.level,
		atom:   z.atom,
	}
}

func (z *ZapLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := FieldsFromContext(ctx); ok {
		return z.WithFields(fields)
	}
	return z
}

func (z *ZapLogger) SetLevel(level Level) {
	z.level = level
	if zl, ok := zapLevels[level]; ok && z.atom != nil {
		z.atom.SetLevel(zl)
	}
}
