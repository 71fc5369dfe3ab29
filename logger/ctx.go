package logger

import (
	"context"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
)

func FromCtx(ctx context.Context) logger.Logger {
	return logger.FromCtx(ctx)
}

func CtxWithLogger(ctx context.Context, l logger.Logger) context.Context {
	return logger.CtxWithLogger(ctx, l)
}

// CtxWithInstance tags every message logged through ctx with the scaler
// instance identifier.
func CtxWithInstance(ctx context.Context, instanceID uint32) context.Context {
	return belt.WithField(ctx, "mcsc_instance", instanceID)
}

// CtxWithChannel tags every message logged through ctx with the output
// channel index.
func CtxWithChannel(ctx context.Context, channel int) context.Context {
	return belt.WithField(ctx, "mcsc_channel", channel)
}
