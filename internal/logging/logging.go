// Package logging wraps a zap logger with the helpers used across the service.
//
// Handlers and storage log through Info and Error with a Data map; the logger itself is
// either the one carried on the context (see WithLogger) or the zap global.
package logging

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Data holds structured fields attached to a log entry.
type Data map[string]interface{}

type ctxKey struct{}

func init() {
	if l, err := New("info"); err == nil {
		zap.ReplaceGlobals(l)
	}
}

// New builds a JSON zap.Logger at the given level (debug, info, warn, error) and
// replaces the zap globals with it.
func New(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	if level == "" {
		level = "info"
	}
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored on ctx, or the global logger.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return zap.L()
}

func Info(ctx context.Context, data Data, msg string) {
	FromContext(ctx).Info(msg, fields(data)...)
}

func Warn(ctx context.Context, err error, data Data, msg string) {
	FromContext(ctx).Warn(msg, append(fields(data), zap.Error(err))...)
}

func Error(ctx context.Context, err error, data Data, msg string) {
	FromContext(ctx).Error(msg, append(fields(data), zap.Error(err))...)
}

// FatalNoCtx logs with the global logger and exits the process.
func FatalNoCtx(err error, data Data, msg string) {
	zap.L().Fatal(msg, append(fields(data), zap.Error(err))...)
}

func fields(data Data) []zap.Field {
	if len(data) == 0 {
		return nil
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(keys)+1)
	for _, k := range keys {
		out = append(out, zap.Any(k, data[k]))
	}
	return out
}
