package capability

import (
	"fmt"
	"sort"

	"github.com/xaionaro-go/mcscaler/types"
)

// Variant is the set of properties and behaviors specific to a hardware
// revision. Callers never switch on the revision number, they ask the Variant.
type Variant interface {
	fmt.Stringer
	Capability() Capability

	// InterruptMask is the set of interrupt sources enabled on this revision.
	InterruptMask() uint32

	// ResetPollLimit is the amount of status polls to wait for a software
	// reset to complete.
	ResetPollLimit() int
}

var variants = map[string]Variant{}

// Register makes a Variant available to Lookup. It panics on duplicates.
func Register(name string, v Variant) {
	if _, ok := variants[name]; ok {
		panic(fmt.Sprintf("variant %q is already registered", name))
	}
	variants[name] = v
}

func Lookup(name string) (Variant, error) {
	v, ok := variants[name]
	if !ok {
		return nil, ErrUnknownVariant{Name: name}
	}
	return v, nil
}

// Names lists the registered variants in a stable order.
func Names() []string {
	result := make([]string, 0, len(variants))
	for name := range variants {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

type ErrUnknownVariant struct {
	Name string
}

func (e ErrUnknownVariant) Error() string {
	return fmt.Sprintf("unknown scaler variant %q", e.Name)
}

type staticVariant struct {
	name           string
	capability     Capability
	interruptMask  uint32
	resetPollLimit int
}

func (v *staticVariant) String() string        { return v.name }
func (v *staticVariant) Capability() Capability { return v.capability }
func (v *staticVariant) InterruptMask() uint32  { return v.interruptMask }
func (v *staticVariant) ResetPollLimit() int    { return v.resetPollLimit }

const (
	// the interrupt bit layout is common for all the revisions, see package irq
	interruptMaskV3     = 0x0000_ff0f
	interruptMaskV5Lite = 0x0000_0f0f
)

func init() {
	Register("v3", &staticVariant{
		name: "v3",
		capability: Capability{
			Version:           0x0300_0000,
			MaxInput:          types.Size{Width: 8192, Height: 8192},
			MaxOutput:         types.Size{Width: 8192, Height: 8192},
			PostChainMaxWidth: 1472,
			Channels: [types.NumOutputChannels]Channel{
				{Present: true, HasPostChain: true, Compression: true, HandOff: true},
				{Present: true, HasPostChain: true, Compression: true, HandOff: true},
				{Present: true, HasPostChain: true},
				{Present: true, HasPostChain: true},
				{Present: true, HasPostChain: true},
				{Present: true, WideDownRatio: true},
			},
			HF:                true,
			CacheMode:         true,
			MaxDMAChannels:    8,
			MaxBatch:          8,
			StagingBufferSize: 16 << 10,
		},
		interruptMask:  interruptMaskV3,
		resetPollLimit: 1000,
	})
	Register("v5lite", &staticVariant{
		name: "v5lite",
		capability: Capability{
			Version:           0x0500_0000,
			MaxInput:          types.Size{Width: 4096, Height: 4096},
			MaxOutput:         types.Size{Width: 4096, Height: 4096},
			PostChainMaxWidth: 1280,
			Channels: [types.NumOutputChannels]Channel{
				{Present: true, HasPostChain: true, Compression: true},
				{Present: true},
				{Present: true, WideDownRatio: true},
			},
			MaxDMAChannels:    4,
			MaxBatch:          4,
			StagingBufferSize: 8 << 10,
		},
		interruptMask:  interruptMaskV5Lite,
		resetPollLimit: 200,
	})
}
