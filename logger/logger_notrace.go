//go:build !debug_trace
// +build !debug_trace

package logger

import (
	"context"
)

// Tracef is compiled out unless built with the debug_trace tag: the shot
// path calls it for every register group.
func Tracef(ctx context.Context, format string, args ...any) {}

func Trace(ctx context.Context, values ...any) {}
