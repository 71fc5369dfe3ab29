// Package irq handles the interrupts of the scaler engine: it keeps the
// frame counters and the "frame in flight" state shared with the shot path.
package irq

import (
	"fmt"
	"strings"
)

type Status uint32

const (
	StatusSettingDone = Status(1 << 0)
	StatusFrameStart  = Status(1 << 1)
	StatusFrameEnd    = Status(1 << 2)
	StatusDMAEnd      = Status(1 << 3)

	// StatusErrorMask covers the error bits: overflows, DMA errors and
	// setting violations.
	StatusErrorMask = Status(0xff00)
)

func (s Status) Has(flag Status) bool {
	return s&flag != 0
}

// Errors returns the error bits only.
func (s Status) Errors() Status {
	return s & StatusErrorMask
}

func (s Status) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	for _, item := range []struct {
		Flag Status
		Name string
	}{
		{StatusSettingDone, "setting_done"},
		{StatusFrameStart, "frame_start"},
		{StatusFrameEnd, "frame_end"},
		{StatusDMAEnd, "dma_end"},
	} {
		if s.Has(item.Flag) {
			parts = append(parts, item.Name)
		}
	}
	if errs := s.Errors(); errs != 0 {
		parts = append(parts, fmt.Sprintf("errors(0x%04x)", uint32(errs)))
	}
	if rest := s &^ (StatusSettingDone | StatusFrameStart | StatusFrameEnd | StatusDMAEnd | StatusErrorMask); rest != 0 {
		parts = append(parts, fmt.Sprintf("unknown(0x%x)", uint32(rest)))
	}
	return strings.Join(parts, "|")
}
