package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

var global = zap.Must(zap.NewProduction(zap.AddCallerSkip(1)))

// Init replaces the process logger. Dev mode switches to the human-readable
// console encoder with debug level enabled.
func Init(dev bool) {
	if dev {
		global = zap.Must(zap.NewDevelopment(zap.AddCallerSkip(1)))
		return
	}
	global = zap.Must(zap.NewProduction(zap.AddCallerSkip(1)))
}

// With returns a context whose log calls carry the given fields. Fields
// accumulate across nested calls.
func With(ctx context.Context, fields ...zap.Field) context.Context {
	return context.WithValue(ctx, ctxKey{}, from(ctx).With(fields...))
}

func from(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
			return l
		}
	}
	return global
}

func Debugf(ctx context.Context, format string, args ...interface{}) {
	from(ctx).Sugar().Debugf(format, args...)
}

func Infof(ctx context.Context, format string, args ...interface{}) {
	from(ctx).Sugar().Infof(format, args...)
}

func Warnf(ctx context.Context, format string, args ...interface{}) {
	from(ctx).Sugar().Warnf(format, args...)
}

func Errorf(ctx context.Context, format string, args ...interface{}) {
	from(ctx).Sugar().Errorf(format, args...)
}

func Error(ctx context.Context, msg string) {
	from(ctx).Error(msg)
}

// Fatal logs err and exits. Nil err is a no-op so it can wrap server Start
// calls that return nil on clean shutdown.
func Fatal(ctx context.Context, err error) {
	if err == nil {
		return
	}
	from(ctx).Fatal(err.Error())
}

// Sync flushes buffered log entries. Called on shutdown.
func Sync() {
	_ = global.Sync()
}
