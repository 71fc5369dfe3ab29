// Package dma builds the DMA descriptors and per-shot buffer addresses.
package dma

import (
	"fmt"
)

type Kind uint8

const (
	KindUndefined = Kind(iota)
	KindInput
	KindOutput
	KindHF
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindInput:
		return "input"
	case KindOutput:
		return "output"
	case KindHF:
		return "hf"
	default:
		return fmt.Sprintf("unknown_kind_%d", uint8(k))
	}
}

// Descriptor is the static description of one DMA channel of the engine.
type Descriptor struct {
	ID      int
	Kind    Kind
	Channel int
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("dma%d(%s:%d)", d.ID, d.Kind, d.Channel)
}

// DescriptorFactory creates descriptors while initializing a device.
type DescriptorFactory interface {
	NewDescriptor(id int, kind Kind, channel int) (*Descriptor, error)
}

type defaultFactory struct{}

// DefaultFactory validates the arguments and creates the descriptor.
var DefaultFactory DescriptorFactory = defaultFactory{}

func (defaultFactory) NewDescriptor(id int, kind Kind, channel int) (*Descriptor, error) {
	switch kind {
	case KindInput, KindOutput, KindHF:
	default:
		return nil, fmt.Errorf("invalid DMA kind %s", kind)
	}
	if id < 0 || channel < 0 {
		return nil, fmt.Errorf("invalid DMA descriptor id %d / channel %d", id, channel)
	}
	return &Descriptor{ID: id, Kind: kind, Channel: channel}, nil
}
