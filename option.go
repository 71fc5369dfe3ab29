// option.go defines the options of a device.

package mcscaler

import (
	"github.com/xaionaro-go/mcscaler/config"
	"github.com/xaionaro-go/mcscaler/dma"
	"github.com/xaionaro-go/mcscaler/metrics"
	"github.com/xaionaro-go/mcscaler/setfile"
	"github.com/xaionaro-go/mcscaler/staging"
)

type Config struct {
	InstanceID        uint32
	Config            config.Config
	Allocator         staging.Allocator
	DescriptorFactory dma.DescriptorFactory
	Scheduler         Scheduler
	Metrics           *metrics.Collector
	Setfiles          *setfile.Selector
	Stream            setfile.StreamID
}

func defaultConfig() Config {
	return Config{
		Config:            config.Default(),
		Allocator:         staging.Default,
		DescriptorFactory: dma.DefaultFactory,
	}
}

type Option interface {
	apply(*Config)
}

type Options []Option

func (opts Options) apply(cfg *Config) {
	for _, opt := range opts {
		opt.apply(cfg)
	}
}

func (opts Options) config() Config {
	cfg := defaultConfig()
	opts.apply(&cfg)
	return cfg
}

type OptionInstanceID uint32

func (opt OptionInstanceID) apply(cfg *Config) {
	cfg.InstanceID = uint32(opt)
}

type OptionConfig config.Config

func (opt OptionConfig) apply(cfg *Config) {
	cfg.Config = config.Config(opt)
}

type OptionAllocatorValue struct {
	staging.Allocator
}

func (opt OptionAllocatorValue) apply(cfg *Config) {
	cfg.Allocator = opt.Allocator
}

func OptionAllocator(allocator staging.Allocator) OptionAllocatorValue {
	return OptionAllocatorValue{allocator}
}

type OptionDescriptorFactoryValue struct {
	dma.DescriptorFactory
}

func (opt OptionDescriptorFactoryValue) apply(cfg *Config) {
	cfg.DescriptorFactory = opt.DescriptorFactory
}

func OptionDescriptorFactory(factory dma.DescriptorFactory) OptionDescriptorFactoryValue {
	return OptionDescriptorFactoryValue{factory}
}

type OptionSchedulerValue struct {
	Scheduler
}

func (opt OptionSchedulerValue) apply(cfg *Config) {
	cfg.Scheduler = opt.Scheduler
}

func OptionScheduler(scheduler Scheduler) OptionSchedulerValue {
	return OptionSchedulerValue{scheduler}
}

type OptionMetrics struct {
	*metrics.Collector
}

func (opt OptionMetrics) apply(cfg *Config) {
	cfg.Metrics = opt.Collector
}

// OptionSetfiles associates the device with the stream of a selector; the
// currently selected entry of the stream is applied on every shot.
type OptionSetfiles struct {
	Selector *setfile.Selector
	Stream   setfile.StreamID
}

func (opt OptionSetfiles) apply(cfg *Config) {
	cfg.Setfiles = opt.Selector
	cfg.Stream = opt.Stream
}
