// frame_request.go defines the in-flight buffer set of one shot.

package types

import (
	"fmt"
)

// Buffer is one sub-buffer of a channel: the device addresses of its planes.
type Buffer struct {
	Planes []uint64
}

// BufferSet is the array of sub-buffers of one channel. A set has more than
// one buffer in batch mode.
type BufferSet struct {
	Buffers []Buffer
}

func (s BufferSet) IsEmpty() bool {
	return len(s.Buffers) == 0
}

// FrameRequest is a handle to the buffers and the configuration of one shot.
type FrameRequest struct {
	ID uint64

	Input   InputConfig
	Outputs [NumOutputChannels]OutputConfig
	HF      HFConfig

	Source       Buffer
	Destinations [NumOutputChannels]BufferSet
	HFBuffers    BufferSet

	// NumBuffers is the amount of sub-buffers per destination (batch mode);
	// zero is treated as one.
	NumBuffers uint32

	// NoiseIndex is the externally measured sensor noise level of this frame.
	NoiseIndex uint32

	// Stripe is nil when the frame is not striped.
	Stripe *StripeContext
}

func (r *FrameRequest) String() string {
	if r == nil {
		return "FrameRequest(nil)"
	}
	return fmt.Sprintf("FrameRequest(%d)", r.ID)
}

func (r *FrameRequest) BatchSize() uint32 {
	if r.NumBuffers == 0 {
		return 1
	}
	return r.NumBuffers
}
