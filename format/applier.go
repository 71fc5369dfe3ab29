package format

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/mcscaler/logger"
	"github.com/xaionaro-go/mcscaler/types"
	"github.com/xaionaro-go/typing"
)

// Applied is a resolved format: the image format as requested together with
// the code it resolves to.
type Applied struct {
	Format types.ImageFormat
	Device DeviceFormat
}

func (a Applied) String() string {
	return fmt.Sprintf("%s:%s", a.Format, a.Device)
}

// Applier resolves formats for a fixed set of channels and remembers the
// last successfully resolved format of each, so that an invalid combination
// keeps the channel on the previously applied one.
type Applier struct {
	last []typing.Optional[Applied]
}

func NewApplier(numChannels int) *Applier {
	return &Applier{
		last: make([]typing.Optional[Applied], numChannels),
	}
}

// Apply returns the format to program for the channel. On invalid input it
// returns the previous format and ErrInvalidFormat; ok reports whether there
// is any format to program at all. The returned image format is always a
// valid one, everything derived from the layout must use it instead of f.
func (a *Applier) Apply(
	ctx context.Context,
	channel int,
	f types.ImageFormat,
) (_ret Applied, ok bool, _err error) {
	df, err := Resolve(f)
	if err == nil {
		applied := Applied{Format: f, Device: df}
		a.last[channel].Set(applied)
		return applied, true, nil
	}

	prev := a.last[channel]
	if !prev.IsSet() {
		logger.Warnf(ctx, "channel %d: %v, and no previous format to fall back to", channel, err)
		return Applied{}, false, err
	}
	logger.Warnf(ctx, "channel %d: %v, keeping %s", channel, err, prev.Get())
	return prev.Get(), true, err
}

// Last returns the last applied format of the channel.
func (a *Applier) Last(channel int) (Applied, bool) {
	if !a.last[channel].IsSet() {
		return Applied{}, false
	}
	return a.last[channel].Get(), true
}

func (a *Applier) Reset() {
	for idx := range a.last {
		a.last[idx].Unset()
	}
}
