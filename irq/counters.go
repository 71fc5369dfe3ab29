package irq

import (
	"fmt"

	"go.uber.org/atomic"
)

// Counters are written by the interrupt handler only.
type Counters struct {
	Start  atomic.Uint64
	End    atomic.Uint64
	DMA    atomic.Uint64
	Errors atomic.Uint64
}

type CountersSnapshot struct {
	Start  uint64
	End    uint64
	DMA    uint64
	Errors uint64
}

func (c *Counters) Snapshot() CountersSnapshot {
	// end first: a concurrent frame may only make start look ahead
	end := c.End.Load()
	return CountersSnapshot{
		Start:  c.Start.Load(),
		End:    end,
		DMA:    c.DMA.Load(),
		Errors: c.Errors.Load(),
	}
}

func (s CountersSnapshot) String() string {
	return fmt.Sprintf("start:%d end:%d dma:%d errors:%d", s.Start, s.End, s.DMA, s.Errors)
}
