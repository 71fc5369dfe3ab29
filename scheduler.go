// scheduler.go defines the completion interface of the frames.

package mcscaler

import (
	"context"

	"github.com/xaionaro-go/mcscaler/irq"
	"github.com/xaionaro-go/mcscaler/logger"
	"github.com/xaionaro-go/mcscaler/types"
)

// Scheduler is the upstream pipeline scheduler. It is called from the
// interrupt context; FrameDone is called exactly once per shot frame.
// Close and RecoverOverflow complete the frame in flight while holding the
// device, so FrameDone must not call the device synchronously.
type Scheduler interface {
	FrameStarted(ctx context.Context, req *types.FrameRequest)
	FrameDone(ctx context.Context, req *types.FrameRequest, err error)
}

type frameNotifier struct {
	*Device
}

var _ irq.FrameNotifier = frameNotifier{}

func (n frameNotifier) FrameStarted(ctx context.Context) {
	req := n.inFlight.Load()
	if req == nil {
		return
	}
	if n.scheduler != nil {
		n.scheduler.FrameStarted(ctx, req)
	}
}

func (n frameNotifier) FrameDone(ctx context.Context, err error) {
	n.completeFrame(ctx, err)
}

// completeFrame hands the in-flight request back to the scheduler, unless
// it was already handed back.
func (d *Device) completeFrame(ctx context.Context, err error) {
	req := d.inFlight.Swap(nil)
	if req == nil {
		return
	}
	if err != nil {
		logger.Warnf(ctx, "%s failed: %v", req, err)
	}
	if d.scheduler != nil {
		d.scheduler.FrameDone(ctx, req, err)
	}
}
