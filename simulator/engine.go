// Package simulator is a software model of the scaler engine: a register
// file which reacts to the reset and start triggers like the hardware does.
package simulator

import (
	"context"
	"time"

	"github.com/xaionaro-go/mcscaler/irq"
	"github.com/xaionaro-go/mcscaler/logger"
	"github.com/xaionaro-go/mcscaler/regs"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/xcontext"
	"go.uber.org/atomic"
)

// InterruptFunc is the interrupt line of the engine.
type InterruptFunc func(ctx context.Context)

type Engine struct {
	*regs.File

	interrupt InterruptFunc

	// StuckReset makes the software reset never complete.
	StuckReset atomic.Bool

	// FailNextFrame raises the given error bits with the next frame start.
	FailNextFrame atomic.Uint32

	// DropFrameEnd makes the engine never report the end of the frames.
	DropFrameEnd atomic.Bool

	// FrameDuration is the delay between the frame start and end
	// interrupts, in nanoseconds.
	FrameDuration atomic.Int64

	Frames atomic.Uint64
}

var _ regs.Accessor = (*Engine)(nil)
var _ regs.Committer = (*Engine)(nil)

func New(interrupt InterruptFunc) *Engine {
	e := &Engine{
		File:      regs.NewFile(),
		interrupt: interrupt,
	}
	e.File.OnWrite = e.onWrite
	return e
}

// SetInterrupt replaces the interrupt line. It must be called before the
// first frame is triggered.
func (e *Engine) SetInterrupt(fn InterruptFunc) {
	e.interrupt = fn
}

func (e *Engine) onWrite(ctx context.Context, f regs.Field, value uint32) {
	switch f.ID {
	case regs.FieldSwReset:
		if value == 0 {
			return
		}
		if e.StuckReset.Load() {
			e.File.Set(ctx, regs.G(regs.FieldSwResetStatus), 1)
			return
		}
		e.File.Set(ctx, regs.G(regs.FieldSwResetStatus), 0)
		e.File.Set(ctx, regs.G(regs.FieldIntStatus), 0)
	case regs.FieldIntClear:
		e.File.Update(ctx, regs.G(regs.FieldIntStatus), func(status uint32) uint32 {
			return status &^ value
		})
	case regs.FieldStartTrigger:
		if value == 0 {
			return
		}
		e.File.Set(ctx, regs.G(regs.FieldStartTrigger), 0)
		e.startFrame(ctx)
	}
}

func (e *Engine) startFrame(ctx context.Context) {
	frame := e.Frames.Inc()
	errBits := irq.Status(e.FailNextFrame.Swap(0))
	duration := time.Duration(e.FrameDuration.Load())
	dropEnd := e.DropFrameEnd.Load()
	ctx = xcontext.DetachDone(ctx)
	observability.Go(ctx, func(ctx context.Context) {
		logger.Tracef(ctx, "frame %d started", frame)
		e.raise(ctx, irq.StatusSettingDone|irq.StatusFrameStart|errBits)
		if duration > 0 {
			time.Sleep(duration)
		}
		if dropEnd {
			logger.Debugf(ctx, "frame %d: dropping the end interrupt", frame)
			return
		}
		e.raise(ctx, irq.StatusFrameEnd|irq.StatusDMAEnd)
		logger.Tracef(ctx, "frame %d ended", frame)
	})
}

func (e *Engine) raise(ctx context.Context, status irq.Status) {
	e.File.Update(ctx, regs.G(regs.FieldIntStatus), func(old uint32) uint32 {
		return old | uint32(status)
	})
	if e.interrupt != nil {
		e.interrupt(ctx)
	}
}
