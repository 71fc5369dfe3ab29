// stripe_context.go defines the state shared between the stripes of one
// logical frame.

package types

import (
	"fmt"
)

// StripeChannelState is the progress of one output channel through the
// stripes of the current frame.
type StripeChannelState struct {
	Started bool

	// NextDstX is where the destination region of the next stripe starts.
	NextDstX uint32
}

// StripeContext describes the stripe being shot. It is rebuilt for every
// frame and updated by every stripe shot of that frame.
type StripeContext struct {
	Index uint32
	Count uint32

	LeftMargin  uint32
	RightMargin uint32

	// RegionX and RegionWidth define the effective (margin-less) region of
	// this stripe in full-image coordinates.
	RegionX     uint32
	RegionWidth uint32

	Full Size

	Channels [NumOutputChannels]StripeChannelState
}

// IsActive reports if the shot is a part of a striped frame.
func (s *StripeContext) IsActive() bool {
	return s != nil && s.Count > 1
}

func (s *StripeContext) Validate() error {
	if s.Count == 0 {
		return fmt.Errorf("stripe count is zero")
	}
	if s.Index >= s.Count {
		return fmt.Errorf("stripe index %d is out of range [0, %d)", s.Index, s.Count)
	}
	if s.RegionX+s.RegionWidth > s.Full.Width {
		return fmt.Errorf("stripe region [%d, %d) exceeds the full width %d", s.RegionX, s.RegionX+s.RegionWidth, s.Full.Width)
	}
	return nil
}

// InputStart is the left edge of the input stripe buffer in full-image
// coordinates (the effective region extended by the left margin).
func (s *StripeContext) InputStart() uint32 {
	if s.LeftMargin > s.RegionX {
		return 0
	}
	return s.RegionX - s.LeftMargin
}

// InputEnd is the exclusive right edge of the input stripe buffer in
// full-image coordinates.
func (s *StripeContext) InputEnd() uint32 {
	end := s.RegionX + s.RegionWidth + s.RightMargin
	if end > s.Full.Width {
		return s.Full.Width
	}
	return end
}

// NewFrameStripes splits an image of the given size into count stripes of
// equal width (the last one takes the remainder), each extended by margin
// on the interior sides.
func NewFrameStripes(full Size, count, margin, align uint32) []StripeContext {
	if count == 0 {
		return nil
	}
	width := full.Width / count
	if align > 1 {
		width = width / align * align
	}
	result := make([]StripeContext, count)
	for idx := range result {
		s := StripeContext{
			Index:       uint32(idx),
			Count:       count,
			RegionX:     uint32(idx) * width,
			RegionWidth: width,
			Full:        full,
		}
		if idx > 0 {
			s.LeftMargin = margin
		}
		if uint32(idx) < count-1 {
			s.RightMargin = margin
		} else {
			s.RegionWidth = full.Width - s.RegionX
		}
		result[idx] = s
	}
	return result
}
