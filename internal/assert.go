package internal

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/mcscaler/logger"
)

// Assertf panics through the logger of ctx (so the context fields are
// reported) when an internal invariant is broken. External input must never
// be able to trigger it.
func Assertf(
	ctx context.Context,
	mustBeTrue bool,
	format string,
	args ...any,
) {
	if mustBeTrue {
		return
	}
	logger.Panicf(ctx, "invariant violated: %s", fmt.Sprintf(format, args...))
}
