package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is the structured logging surface handed to workers. Fields are
// loose maps so callers never import zap directly.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
}

// Options selects level, encoding and the service tags stamped on every entry.
type Options struct {
	Level       string
	Format      string
	Service     string
	Version     string
	Environment string
}

// New builds the process zap logger. Format "json" picks the production
// encoder; anything else the console one. Unknown levels fall back to info.
func New(opts Options) *zap.Logger {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	cfg := zap.NewDevelopmentConfig()
	if opts.Format == "json" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	built, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}

	var tags []zap.Field
	if opts.Service != "" {
		tags = append(tags, zap.String("service", opts.Service))
	}
	if opts.Version != "" {
		tags = append(tags, zap.String("version", opts.Version))
	}
	if opts.Environment != "" {
		tags = append(tags, zap.String("environment", opts.Environment))
	}
	return built.With(tags...)
}

// Wrap adapts a *zap.Logger to Logger.
func Wrap(l *zap.Logger) Logger {
	return &zapLogger{base: l}
}

// NewTestLogger routes output through t.Log.
func NewTestLogger(t testing.TB) Logger {
	return Wrap(zaptest.NewLogger(t))
}

// NewNop discards everything.
func NewNop() Logger {
	return Wrap(zap.NewNop())
}

type zapLogger struct {
	base *zap.Logger
}

func (z *zapLogger) Debug(msg string, fields map[string]interface{}) {
	z.base.Debug(msg, toZap(fields)...)
}

func (z *zapLogger) Info(msg string, fields map[string]interface{}) {
	z.base.Info(msg, toZap(fields)...)
}

func (z *zapLogger) Warn(msg string, fields map[string]interface{}) {
	z.base.Warn(msg, toZap(fields)...)
}

func (z *zapLogger) Error(msg string, fields map[string]interface{}) {
	z.base.Error(msg, toZap(fields)...)
}

func (z *zapLogger) WithFields(fields map[string]interface{}) Logger {
	return &zapLogger{base: z.base.With(toZap(fields)...)}
}

func (z *zapLogger) WithError(err error) Logger {
	return &zapLogger{base: z.base.With(zap.Error(err))}
}

// toZap keeps error values as named errors so they render with errorVerbose.
func toZap(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
