// Package capability describes what a particular revision of the scaler
// engine can do.
package capability

import (
	"fmt"

	"github.com/xaionaro-go/mcscaler/types"
)

// Channel is the capability of one output channel.
type Channel struct {
	Present bool

	// HasPostChain reports if the channel has the secondary (post-chain)
	// down-scaler after the poly-phase one.
	HasPostChain bool

	// WideDownRatio allows the poly-phase scaler of a channel without the
	// post-chain to go beyond the quality down-scale bound.
	WideDownRatio bool

	Compression bool
	HandOff     bool
}

type Capability struct {
	Version uint32

	MaxInput  types.Size
	MaxOutput types.Size

	// PostChainMaxWidth is the line buffer width of the post-chain scaler.
	PostChainMaxWidth uint32

	Channels [types.NumOutputChannels]Channel

	HF bool

	// CacheMode is supported by revisions with the AXI cache hint.
	CacheMode bool

	// MaxDMAChannels limits the amount of DMA descriptors (input, outputs
	// and the HF sub-path together).
	MaxDMAChannels int

	MaxBatch uint32

	// StagingBufferSize is the size of each of the two command staging
	// regions.
	StagingBufferSize int
}

// NumOutputs is the amount of present output channels.
func (c Capability) NumOutputs() int {
	n := 0
	for _, ch := range c.Channels {
		if ch.Present {
			n++
		}
	}
	return n
}

func (c Capability) Channel(idx int) (Channel, error) {
	if idx < 0 || idx >= len(c.Channels) {
		return Channel{}, fmt.Errorf("channel index %d is out of range [0, %d)", idx, len(c.Channels))
	}
	return c.Channels[idx], nil
}
