// Package logctx logs through the root logger with key/value pairs carried
// by the context, such as the request id.
package logctx

import (
	"context"

	"github.com/nguyentranbao-ct/swipe-preview/pkg/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type fieldsKey struct{}

// With returns a context whose log lines carry the given key/value pairs in
// addition to the ones already attached.
func With(ctx context.Context, keysAndValues ...any) context.Context {
	if len(keysAndValues) == 0 {
		return ctx
	}
	prev := Fields(ctx)
	merged := make([]any, 0, len(prev)+len(keysAndValues))
	merged = append(merged, prev...)
	merged = append(merged, keysAndValues...)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// Fields returns the key/value pairs attached to ctx.
func Fields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	kv, _ := ctx.Value(fieldsKey{}).([]any)
	return kv
}

func sugar(ctx context.Context) *zap.SugaredLogger {
	l := logger.Root().WithOptions(zap.AddCallerSkip(1)).Sugar()
	if kv := Fields(ctx); len(kv) > 0 {
		l = l.With(kv...)
	}
	return l
}

func Logw(ctx context.Context, level zapcore.Level, msg string, keysAndValues ...any) {
	sugar(ctx).Logw(level, msg, keysAndValues...)
}

func Debugw(ctx context.Context, msg string, keysAndValues ...any) {
	sugar(ctx).Debugw(msg, keysAndValues...)
}

func Infow(ctx context.Context, msg string, keysAndValues ...any) {
	sugar(ctx).Infow(msg, keysAndValues...)
}

func Warnw(ctx context.Context, msg string, keysAndValues ...any) {
	sugar(ctx).Warnw(msg, keysAndValues...)
}

func Errorw(ctx context.Context, msg string, keysAndValues ...any) {
	sugar(ctx).Errorw(msg, keysAndValues...)
}

func Info(ctx context.Context, args ...any) {
	sugar(ctx).Info(args...)
}

func Debugf(ctx context.Context, template string, args ...any) {
	sugar(ctx).Debugf(template, args...)
}

func Infof(ctx context.Context, template string, args ...any) {
	sugar(ctx).Infof(template, args...)
}

func Warnf(ctx context.Context, template string, args ...any) {
	sugar(ctx).Warnf(template, args...)
}

func Errorf(ctx context.Context, template string, args ...any) {
	sugar(ctx).Errorf(template, args...)
}
