// Package mcscaler drives a multi-channel scaler engine: one input stream
// scaled, cropped and converted into up to six outputs per shot.
package mcscaler

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/xaionaro-go/mcscaler/capability"
	"github.com/xaionaro-go/mcscaler/config"
	"github.com/xaionaro-go/mcscaler/dma"
	"github.com/xaionaro-go/mcscaler/format"
	"github.com/xaionaro-go/mcscaler/hfconfig"
	"github.com/xaionaro-go/mcscaler/irq"
	"github.com/xaionaro-go/mcscaler/logger"
	"github.com/xaionaro-go/mcscaler/metrics"
	"github.com/xaionaro-go/mcscaler/regs"
	"github.com/xaionaro-go/mcscaler/setfile"
	"github.com/xaionaro-go/mcscaler/staging"
	"github.com/xaionaro-go/mcscaler/stripe"
	"github.com/xaionaro-go/mcscaler/types"
	"github.com/xaionaro-go/xsync"
	"go.uber.org/atomic"
)

const (
	numStagingRegions = 2
	resetPollInterval = 10 * time.Microsecond
)

// Device is one scaler instance. The configuration and shot operations are
// serialized; HandleInterrupt may be called concurrently with any of them.
type Device struct {
	locker xsync.Mutex

	id         uint32
	variant    capability.Variant
	capability capability.Capability
	accessor   regs.Accessor
	cfg        config.Config
	allocator  staging.Allocator
	factory    dma.DescriptorFactory
	scheduler  Scheduler
	metrics    *metrics.Instance
	setfiles   *setfile.Selector
	stream     setfile.StreamID

	// Debug toggles may be changed at any moment.
	Debug *config.Debug

	state            atomic.Uint32
	overflowRecovery atomic.Bool
	initComplete     bool

	staging     [numStagingRegions]staging.Region
	nextStaging int
	commandList *regs.CommandList
	descriptors []*dma.Descriptor
	enableMask  uint32

	formats     *format.Applier
	inputFormat *format.Applier
	partitioner *stripe.Partitioner
	hf          *hfconfig.Configurer
	irq         *irq.Handler
	inFlight    atomic.Pointer[types.FrameRequest]

	// stripeChannels is the progress of the striped frame in the works.
	stripeChannels [types.NumOutputChannels]types.StripeChannelState
}

func New(
	ctx context.Context,
	variant capability.Variant,
	accessor regs.Accessor,
	opts ...Option,
) (*Device, error) {
	cfg := Options(opts).config()
	if err := cfg.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if variant == nil {
		return nil, fmt.Errorf("the variant is not set")
	}
	if accessor == nil {
		return nil, fmt.Errorf("the register accessor is not set")
	}

	d := &Device{
		id:          cfg.InstanceID,
		variant:     variant,
		capability:  variant.Capability(),
		accessor:    accessor,
		cfg:         cfg.Config,
		allocator:   cfg.Allocator,
		factory:     cfg.DescriptorFactory,
		scheduler:   cfg.Scheduler,
		metrics:     cfg.Metrics.Instance(cfg.InstanceID),
		setfiles:    cfg.Setfiles,
		stream:      cfg.Stream,
		Debug:       config.NewDebug(cfg.Config.Debug),
		formats:     format.NewApplier(types.NumOutputChannels),
		inputFormat: format.NewApplier(1),
		partitioner: stripe.NewPartitioner(cfg.Config.Stripe.MinOutputWidth),
		hf:          hfconfig.NewConfigurer(),
	}
	d.irq = irq.NewHandler(accessor, d.capability.NumOutputs(), d, frameNotifier{d}, d.metrics)
	d.irq.MaxSkew = cfg.Config.Interrupts.MaxSkew
	d.setState(StateClosed)
	logger.Debugf(d.ctx(ctx), "created a %s scaler instance %d", variant, d.id)
	return d, nil
}

func (d *Device) String() string {
	return fmt.Sprintf("mcsc%d(%s)", d.id, d.variant)
}

func (d *Device) ctx(ctx context.Context) context.Context {
	return logger.CtxWithInstance(ctx, d.id)
}

func (d *Device) State() State {
	return State(d.state.Load())
}

func (d *Device) setState(s State) {
	d.state.Store(uint32(s))
}

// Capability is the snapshot of the capability taken at Open.
func (d *Device) Capability() capability.Capability {
	return d.capability
}

func (d *Device) Counters() irq.CountersSnapshot {
	return d.irq.Counters.Snapshot()
}

// InterruptGate rejects the interrupts which cannot be handled in the
// current state: the device is not open, or it is recovering from an
// overflow.
func (d *Device) InterruptGate() error {
	if s := d.State(); s == StateClosed {
		return ErrInvalidState{Op: "interrupt", State: s}
	}
	if d.overflowRecovery.Load() {
		return ErrOverflowRecovery{}
	}
	return nil
}

// HandleInterrupt is the entry point of the interrupt context.
func (d *Device) HandleInterrupt(ctx context.Context) (irq.Status, error) {
	return d.irq.Handle(d.ctx(ctx))
}

// WaitIdle blocks until no frame is in flight.
func (d *Device) WaitIdle(ctx context.Context) error {
	return d.irq.WaitIdle(ctx)
}

func (d *Device) Open(ctx context.Context) (_err error) {
	ctx = d.ctx(ctx)
	logger.Tracef(ctx, "Open")
	defer func() { logger.Tracef(ctx, "/Open: %v", _err) }()
	return xsync.DoA1R1(ctx, &d.locker, d.openLocked, ctx)
}

func (d *Device) openLocked(ctx context.Context) error {
	if err := operationOpen.check(d.State()); err != nil {
		return err
	}

	d.capability = d.variant.Capability()
	size := d.capability.StagingBufferSize
	for idx := range d.staging {
		region, err := d.allocator.Alloc(size)
		if err != nil {
			d.releaseStaging(ctx)
			return ErrAllocation{Err: err}
		}
		d.staging[idx] = region
	}
	d.nextStaging = 0
	d.commandList = nil
	if committer, ok := d.accessor.(regs.Committer); ok {
		d.commandList = regs.NewCommandList(d.staging[0].Bytes(), committer)
	}

	d.enableMask = 0
	d.accessor.Write(ctx, regs.G(regs.FieldEnableMask), 0)
	d.formats.Reset()
	d.inputFormat.Reset()
	d.hf.Reset()
	d.setState(StateOpen)
	logger.Debugf(ctx, "opened: %d outputs, 2x%s of command staging", d.capability.NumOutputs(), humanize.IBytes(uint64(size)))
	return nil
}

func (d *Device) releaseStaging(ctx context.Context) {
	for idx, region := range d.staging {
		if region == nil {
			continue
		}
		if err := region.Close(); err != nil {
			logger.Errorf(ctx, "unable to release the staging region #%d: %v", idx, err)
		}
		d.staging[idx] = nil
	}
	d.commandList = nil
}

func (d *Device) Init(ctx context.Context) (_err error) {
	ctx = d.ctx(ctx)
	logger.Tracef(ctx, "Init")
	defer func() { logger.Tracef(ctx, "/Init: %v", _err) }()
	return xsync.DoA1R1(ctx, &d.locker, d.initLocked, ctx)
}

func (d *Device) initLocked(ctx context.Context) error {
	if err := operationInit.check(d.State()); err != nil {
		return err
	}
	d.initComplete = false
	d.descriptors = d.descriptors[:0]

	type request struct {
		Kind    dma.Kind
		Channel int
	}
	requests := []request{{Kind: dma.KindInput}}
	for ch, c := range d.capability.Channels {
		if c.Present {
			requests = append(requests, request{Kind: dma.KindOutput, Channel: ch})
		}
	}
	if d.capability.HF {
		requests = append(requests, request{Kind: dma.KindHF})
	}
	if len(requests) > d.capability.MaxDMAChannels {
		return ErrResource{Err: fmt.Errorf("%d DMA channels are required, but only %d are available", len(requests), d.capability.MaxDMAChannels)}
	}

	for id, r := range requests {
		desc, err := d.factory.NewDescriptor(id, r.Kind, r.Channel)
		if err != nil {
			return ErrResource{Err: fmt.Errorf("unable to create the %s DMA descriptor #%d: %w", r.Kind, id, err)}
		}
		d.descriptors = append(d.descriptors, desc)
	}

	d.initComplete = true
	d.setState(StateInitialized)
	logger.Debugf(ctx, "initialized %d DMA descriptors", len(d.descriptors))
	return nil
}

// Descriptors returns the DMA descriptors created by Init.
func (d *Device) Descriptors(ctx context.Context) []*dma.Descriptor {
	return xsync.DoR1(ctx, &d.locker, func() []*dma.Descriptor {
		return append([]*dma.Descriptor{}, d.descriptors...)
	})
}

func (d *Device) Enable(ctx context.Context) (_err error) {
	ctx = d.ctx(ctx)
	logger.Tracef(ctx, "Enable")
	defer func() { logger.Tracef(ctx, "/Enable: %v", _err) }()
	return xsync.DoA1R1(ctx, &d.locker, d.enableLocked, ctx)
}

func (d *Device) enableLocked(ctx context.Context) error {
	if err := operationEnable.check(d.State()); err != nil {
		return err
	}
	if !d.initComplete {
		return ErrInvalidState{Op: string(operationEnable), State: d.State()}
	}
	if err := d.resetEngine(ctx); err != nil {
		return err
	}
	d.setState(StateRunning)
	return nil
}

// resetEngine resets the engine and arms the interrupts.
func (d *Device) resetEngine(ctx context.Context) error {
	d.accessor.Write(ctx, regs.G(regs.FieldSwReset), 1)
	if err := d.waitReset(ctx); err != nil {
		return err
	}

	status := d.accessor.Read(ctx, regs.G(regs.FieldIntStatus))
	if status != 0 {
		logger.Debugf(ctx, "clearing the pending interrupts %s", irq.Status(status))
		d.accessor.Write(ctx, regs.G(regs.FieldIntClear), status)
	}
	d.accessor.Write(ctx, regs.G(regs.FieldIntMask), d.variant.InterruptMask())
	if d.capability.CacheMode {
		d.accessor.Write(ctx, regs.G(regs.FieldCacheMode), 1)
	}
	return nil
}

func (d *Device) waitReset(ctx context.Context) error {
	timeout := d.cfg.Timeouts.Reset
	deadline := time.Now().Add(timeout)
	for poll := 0; poll < d.variant.ResetPollLimit(); poll++ {
		if d.accessor.Read(ctx, regs.G(regs.FieldSwResetStatus)) == 0 {
			logger.Tracef(ctx, "the reset completed after %d polls", poll)
			return nil
		}
		if time.Now().After(deadline) {
			break
		}
		time.Sleep(resetPollInterval)
	}
	logger.Errorf(ctx, "the software reset did not complete")
	return ErrTimeout{Op: "reset", Timeout: timeout}
}

func (d *Device) Disable(ctx context.Context) (_err error) {
	ctx = d.ctx(ctx)
	logger.Tracef(ctx, "Disable")
	defer func() { logger.Tracef(ctx, "/Disable: %v", _err) }()
	return xsync.DoA1R1(ctx, &d.locker, d.disableLocked, ctx)
}

func (d *Device) disableLocked(ctx context.Context) error {
	if err := operationDisable.check(d.State()); err != nil {
		return err
	}

	timeout := d.cfg.Timeouts.Disable
	waitCtx, cancelFn := context.WithTimeout(ctx, timeout)
	defer cancelFn()
	if err := d.irq.WaitIdle(waitCtx); err != nil {
		logger.Errorf(ctx, "the frame in flight did not complete in %v: %v", timeout, err)
		return ErrTimeout{Op: string(operationDisable), Timeout: timeout}
	}

	for ch, c := range d.capability.Channels {
		if !c.Present {
			continue
		}
		d.accessor.Write(ctx, regs.Ch(regs.FieldOutputEnable, ch), 0)
		d.accessor.Write(ctx, regs.Ch(regs.FieldDMAEnable, ch), 0)
	}
	regs.WriteBool(ctx, d.accessor, regs.G(regs.FieldHFEnable), false)
	d.enableMask = 0
	d.accessor.Write(ctx, regs.G(regs.FieldEnableMask), 0)
	d.accessor.Write(ctx, regs.G(regs.FieldIntMask), 0)
	d.hf.Reset()
	d.setState(StateDisabled)
	return nil
}

func (d *Device) Close(ctx context.Context) (_err error) {
	ctx = d.ctx(ctx)
	logger.Tracef(ctx, "Close")
	defer func() { logger.Tracef(ctx, "/Close: %v", _err) }()
	return xsync.DoA1R1(ctx, &d.locker, d.closeLocked, ctx)
}

func (d *Device) closeLocked(ctx context.Context) error {
	s := d.State()
	if s == StateClosed {
		return nil
	}
	if err := operationClose.check(s); err != nil {
		return err
	}

	d.releaseStaging(ctx)
	d.descriptors = nil
	d.initComplete = false
	if d.setfiles != nil {
		d.setfiles.Delete(ctx, d.stream)
	}
	d.formats.Reset()
	d.inputFormat.Reset()
	d.completeFrame(ctx, ErrInvalidState{Op: string(operationClose), State: s})
	d.irq.ForceIdle(ctx)
	d.setState(StateClosed)
	return nil
}

// RecoverOverflow resets the engine after an overflow. The frame in flight
// (if any) is completed as failed; the interrupts are rejected until the
// recovery is over.
func (d *Device) RecoverOverflow(ctx context.Context) (_err error) {
	ctx = d.ctx(ctx)
	logger.Tracef(ctx, "RecoverOverflow")
	defer func() { logger.Tracef(ctx, "/RecoverOverflow: %v", _err) }()
	return xsync.DoA1R1(ctx, &d.locker, d.recoverOverflowLocked, ctx)
}

func (d *Device) recoverOverflowLocked(ctx context.Context) error {
	if err := operationRecover.check(d.State()); err != nil {
		return err
	}
	d.overflowRecovery.Store(true)
	defer d.overflowRecovery.Store(false)

	logger.Warnf(ctx, "recovering from an overflow")
	d.completeFrame(ctx, ErrOverflowRecovery{})
	d.irq.ForceIdle(ctx)
	d.hf.Reset()
	if err := d.resetEngine(ctx); err != nil {
		return fmt.Errorf("unable to reset the engine: %w", err)
	}
	return nil
}

// Dump writes the diagnostic dump of the device registers.
func (d *Device) Dump(ctx context.Context, w io.Writer) error {
	ctx = d.ctx(ctx)
	if _, err := fmt.Fprintf(w, "%s: state %s, %s\n", d, d.State(), d.Counters()); err != nil {
		return err
	}
	return regs.Dump(ctx, w, d.accessor, d.capability.NumOutputs())
}
