// Package metrics exposes the frame and error counters of the scaler
// instances to Prometheus.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	DefaultNamespace = "mcscaler"

	EventFrameStart = "frame_start"
	EventFrameEnd   = "frame_end"
	EventDMAEnd     = "dma_end"
)

// Collector owns a dedicated registry, so that several collectors (e.g.
// in tests) never conflict.
type Collector struct {
	registry *prometheus.Registry

	events             *prometheus.CounterVec
	frameFailures      *prometheus.CounterVec
	consistencyErrors  *prometheus.CounterVec
	hardwareErrors     *prometheus.CounterVec
	rejectedInterrupts *prometheus.CounterVec
	channelsDisabled   *prometheus.CounterVec
	shotDuration       *prometheus.HistogramVec
}

func NewCollector(namespace string) (*Collector, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Interrupt events by kind",
		}, []string{"instance", "event"}),
		frameFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_failures_total",
			Help:      "Frames completed with a failure",
		}, []string{"instance"}),
		consistencyErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consistency_errors_total",
			Help:      "Counter divergences and interrupts in an invalid state",
		}, []string{"instance", "kind"}),
		hardwareErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hardware_errors_total",
			Help:      "Error bits reported by the engine",
		}, []string{"instance"}),
		rejectedInterrupts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_interrupts_total",
			Help:      "Interrupts ignored because of the device state",
		}, []string{"instance"}),
		channelsDisabled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channels_disabled_total",
			Help:      "Output channels disabled for a shot because of a configuration error",
		}, []string{"instance", "channel", "reason"}),
		shotDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "shot_duration_seconds",
			Help:      "Time spent programming one shot",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"instance"}),
	}

	for _, collector := range []prometheus.Collector{
		c.events,
		c.frameFailures,
		c.consistencyErrors,
		c.hardwareErrors,
		c.rejectedInterrupts,
		c.channelsDisabled,
		c.shotDuration,
	} {
		if err := c.registry.Register(collector); err != nil {
			return nil, fmt.Errorf("unable to register a collector: %w", err)
		}
	}
	return c, nil
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Instance binds the collector to a scaler instance. A nil collector
// returns a nil instance, every method of which is a no-op.
func (c *Collector) Instance(id uint32) *Instance {
	if c == nil {
		return nil
	}
	return &Instance{
		collector: c,
		label:     strconv.FormatUint(uint64(id), 10),
	}
}

type Instance struct {
	collector *Collector
	label     string
}

func (i *Instance) Event(event string) {
	if i == nil {
		return
	}
	i.collector.events.WithLabelValues(i.label, event).Inc()
}

func (i *Instance) FrameFailure() {
	if i == nil {
		return
	}
	i.collector.frameFailures.WithLabelValues(i.label).Inc()
}

func (i *Instance) ConsistencyError(kind string) {
	if i == nil {
		return
	}
	i.collector.consistencyErrors.WithLabelValues(i.label, kind).Inc()
}

func (i *Instance) HardwareError() {
	if i == nil {
		return
	}
	i.collector.hardwareErrors.WithLabelValues(i.label).Inc()
}

func (i *Instance) RejectedInterrupt() {
	if i == nil {
		return
	}
	i.collector.rejectedInterrupts.WithLabelValues(i.label).Inc()
}

func (i *Instance) ChannelDisabled(channel int, reason string) {
	if i == nil {
		return
	}
	i.collector.channelsDisabled.WithLabelValues(i.label, strconv.Itoa(channel), reason).Inc()
}

func (i *Instance) ShotDuration(d time.Duration) {
	if i == nil {
		return
	}
	i.collector.shotDuration.WithLabelValues(i.label).Observe(d.Seconds())
}
