// channel_config.go defines the per-channel configuration block set.

package types

const (
	// NumOutputChannels is the maximal amount of output channels of the engine.
	NumOutputChannels = 6
)

type InputConfig struct {
	Size   Size
	Crop   Rect
	Format ImageFormat
}

// OutputConfig is the configuration of one output channel for one shot.
type OutputConfig struct {
	Enabled bool

	// Crop is the region of the input image (in full-image coordinates when
	// striping) this channel scales from.
	Crop Rect

	Target      Size
	Format      ImageFormat
	Flip        Flip
	Compression Compression

	// HandOff makes the output consumable directly by the downstream
	// encoder, without a memory round-trip.
	HandOff bool
}

// Reset brings the config to the disabled state.
func (c *OutputConfig) Reset() {
	*c = OutputConfig{}
}

// HFConfig requests the high-frequency (detail enhancement) sub-path.
type HFConfig struct {
	Enabled bool
	Size    Size
}
