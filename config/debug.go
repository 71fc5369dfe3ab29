package config

import (
	"go.uber.org/atomic"
)

// Debug is the set of debug toggles of one instance. Every toggle skips or
// forces one optional step of the shot, and may be flipped at any time from
// another goroutine.
type Debug struct {
	TestPatternDMA atomic.Bool
	DumpRegsOnShot atomic.Bool
	SkipSetfile    atomic.Bool
	SkipSizeCheck  atomic.Bool
}

func NewDebug(cfg DebugConfig) *Debug {
	d := &Debug{}
	d.Set(cfg)
	return d
}

func (d *Debug) Set(cfg DebugConfig) {
	d.TestPatternDMA.Store(cfg.TestPatternDMA)
	d.DumpRegsOnShot.Store(cfg.DumpRegsOnShot)
	d.SkipSetfile.Store(cfg.SkipSetfile)
	d.SkipSizeCheck.Store(cfg.SkipSizeCheck)
}

func (d *Debug) Get() DebugConfig {
	return DebugConfig{
		TestPatternDMA: d.TestPatternDMA.Load(),
		DumpRegsOnShot: d.DumpRegsOnShot.Load(),
		SkipSetfile:    d.SkipSetfile.Load(),
		SkipSizeCheck:  d.SkipSizeCheck.Load(),
	}
}
