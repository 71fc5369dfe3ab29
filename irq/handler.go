package irq

import (
	"context"
	"strings"

	"github.com/go-ng/xatomic"
	"github.com/xaionaro-go/mcscaler/logger"
	"github.com/xaionaro-go/mcscaler/metrics"
	"github.com/xaionaro-go/mcscaler/regs"
	"go.uber.org/atomic"
)

const (
	DefaultMaxSkew = 2
)

// Gate reports (as a non-nil error) that interrupts must be ignored, for
// example because the device is closed or recovering from an overflow.
type Gate interface {
	InterruptGate() error
}

// FrameNotifier receives the frame boundaries. It is called from the
// interrupt context.
type FrameNotifier interface {
	FrameStarted(ctx context.Context)
	FrameDone(ctx context.Context, err error)
}

type Handler struct {
	Accessor    regs.Accessor
	NumChannels int
	Gate        Gate
	Notifier    FrameNotifier
	Metrics     *metrics.Instance

	// MaxSkew is how far the start counter may run ahead of the end
	// counter before it is reported.
	MaxSkew uint64

	Counters Counters

	// inFlight is the sequence number of the frame in flight, zero if idle.
	inFlight     atomic.Uint64
	sequence     atomic.Uint64
	idleChan     *chan struct{}
	failedStatus atomic.Uint32
}

func NewHandler(
	accessor regs.Accessor,
	numChannels int,
	gate Gate,
	notifier FrameNotifier,
	m *metrics.Instance,
) *Handler {
	return &Handler{
		Accessor:    accessor,
		NumChannels: numChannels,
		Gate:        gate,
		Notifier:    notifier,
		Metrics:     m,
		MaxSkew:     DefaultMaxSkew,
		idleChan:    ptr(make(chan struct{})),
	}
}

// Handle processes one interrupt.
func (h *Handler) Handle(ctx context.Context) (_ret Status, _err error) {
	logger.Tracef(ctx, "Handle")
	defer func() { logger.Tracef(ctx, "/Handle: %s %v", _ret, _err) }()

	if h.Gate != nil {
		if err := h.Gate.InterruptGate(); err != nil {
			logger.Warnf(ctx, "ignoring the interrupt: %v", err)
			h.Metrics.RejectedInterrupt()
			h.Metrics.ConsistencyError("invalid_state")
			return 0, ErrRejected{Reason: err}
		}
	}

	status := Status(h.Accessor.Read(ctx, regs.G(regs.FieldIntStatus)))
	h.Accessor.Write(ctx, regs.G(regs.FieldIntClear), uint32(status))
	if status == 0 {
		logger.Debugf(ctx, "spurious interrupt")
		return 0, nil
	}

	if status.Has(StatusSettingDone) {
		logger.Tracef(ctx, "setting done")
	}
	if errs := status.Errors(); errs != 0 {
		h.onError(ctx, errs)
	}
	if status.Has(StatusFrameStart) && status.Has(StatusFrameEnd) {
		// the start is handled first, so a single frame still pairs up
		logger.Warnf(ctx, "the frame start and end were raised in one interrupt (start:%d end:%d)", h.Counters.Start.Load(), h.Counters.End.Load())
		h.Metrics.ConsistencyError("overlap")
	}
	if status.Has(StatusFrameStart) {
		h.onFrameStart(ctx)
	}
	if status.Has(StatusFrameEnd) {
		h.onFrameEnd(ctx)
	}
	if status.Has(StatusDMAEnd) {
		h.Counters.DMA.Inc()
		h.Metrics.Event(metrics.EventDMAEnd)
	}
	return status, nil
}

func (h *Handler) onError(ctx context.Context, errs Status) {
	h.Counters.Errors.Inc()
	h.Metrics.HardwareError()
	for {
		old := h.failedStatus.Load()
		if h.failedStatus.CompareAndSwap(old, old|uint32(errs)) {
			break
		}
	}

	var dump strings.Builder
	if err := regs.Dump(ctx, &dump, h.Accessor, h.NumChannels); err != nil {
		logger.Errorf(ctx, "unable to dump the registers: %v", err)
	}
	logger.Errorf(ctx, "the engine reported errors %s; registers:\n%s", errs, dump.String())
}

func (h *Handler) onFrameStart(ctx context.Context) {
	start := h.Counters.Start.Inc()
	end := h.Counters.End.Load()
	h.Metrics.Event(metrics.EventFrameStart)
	if start > end+1 {
		logger.Warnf(ctx, "a frame started while %d frame(s) are still in progress (start:%d end:%d)", start-end-1, start, end)
	}
	if start > end+h.MaxSkew {
		logger.Errorf(ctx, "the frame counters diverged beyond the skew %d: start:%d end:%d", h.MaxSkew, start, end)
		h.Metrics.ConsistencyError("skew")
	}
	if h.Notifier != nil {
		h.Notifier.FrameStarted(ctx)
	}
}

func (h *Handler) onFrameEnd(ctx context.Context) {
	end := h.Counters.End.Inc()
	start := h.Counters.Start.Load()
	h.Metrics.Event(metrics.EventFrameEnd)
	if end > start {
		logger.Errorf(ctx, "a frame ended before it started: start:%d end:%d", start, end)
		h.Metrics.ConsistencyError("end_ahead_of_start")
	}

	var err error
	if failed := Status(h.failedStatus.Swap(0)); failed != 0 {
		err = ErrFrameFailed{Status: failed}
		h.Metrics.FrameFailure()
	}
	seq := h.inFlight.Load()
	if h.Notifier != nil {
		h.Notifier.FrameDone(ctx, err)
	}
	// the notifier may have triggered the next frame already
	h.markIdle(ctx, seq)
}

// MarkInFlight is called by the shot path right before triggering the
// engine.
func (h *Handler) MarkInFlight(ctx context.Context) {
	logger.Tracef(ctx, "MarkInFlight")
	h.inFlight.Store(h.sequence.Inc())
}

func (h *Handler) IsInFlight() bool {
	return h.inFlight.Load() != 0
}

func (h *Handler) markIdle(ctx context.Context, seq uint64) {
	if seq == 0 || !h.inFlight.CompareAndSwap(seq, 0) {
		return
	}
	logger.Tracef(ctx, "markIdle")
	close(*xatomic.SwapPointer(&h.idleChan, ptr(make(chan struct{}))))
}

// ForceIdle drops the in-flight state without a frame end (used after
// the engine is reset).
func (h *Handler) ForceIdle(ctx context.Context) {
	h.failedStatus.Store(0)
	h.markIdle(ctx, h.inFlight.Load())
}

// GetChangeChanIdle returns a channel closed on the next transition to idle.
func (h *Handler) GetChangeChanIdle() <-chan struct{} {
	return *xatomic.LoadPointer(&h.idleChan)
}

// WaitIdle blocks until no frame is in flight, or until the context is
// done.
func (h *Handler) WaitIdle(ctx context.Context) (_err error) {
	logger.Tracef(ctx, "WaitIdle")
	defer func() { logger.Tracef(ctx, "/WaitIdle: %v", _err) }()
	for {
		ch := h.GetChangeChanIdle()
		if !h.IsInFlight() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
