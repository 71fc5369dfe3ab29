package setfile

import (
	"context"

	"github.com/xaionaro-go/mcscaler/logger"
	"github.com/xaionaro-go/xsync"
)

type Position uint32
type StreamID uint32

// Selection is the entry currently associated with a stream.
type Selection struct {
	Position Position
	Scenario uint32
	Entry    *Entry
}

// Selector holds the loaded tables per sensor position and the currently
// selected entry of every stream.
type Selector struct {
	locker  xsync.Mutex
	tables  map[Position]*Table
	current map[StreamID]Selection
}

func NewSelector() *Selector {
	return &Selector{
		tables:  map[Position]*Table{},
		current: map[StreamID]Selection{},
	}
}

// Load parses the setfile and replaces the table of the sensor position.
// On failure the previously loaded table stays in effect.
func (s *Selector) Load(
	ctx context.Context,
	pos Position,
	data []byte,
) (_err error) {
	logger.Tracef(ctx, "Load: pos %d, %d bytes", pos, len(data))
	defer func() { logger.Tracef(ctx, "/Load: pos %d: %v", pos, _err) }()

	t, err := Parse(data)
	if err != nil {
		logger.Errorf(ctx, "unable to load the setfile of sensor position %d: %v", pos, err)
		return err
	}
	s.LoadTable(ctx, pos, t)
	return nil
}

// LoadTable sets an already parsed table. The streams keep their selected
// entries until the next Apply.
func (s *Selector) LoadTable(
	ctx context.Context,
	pos Position,
	t *Table,
) {
	s.locker.Do(ctx, func() {
		s.tables[pos] = t
	})
	logger.Debugf(ctx, "sensor position %d: loaded %d setfile entries", pos, len(t.Entries))
}

func (s *Selector) Apply(
	ctx context.Context,
	stream StreamID,
	pos Position,
	scenario uint32,
) (*Entry, error) {
	return xsync.DoR2(ctx, &s.locker, func() (*Entry, error) {
		t, ok := s.tables[pos]
		if !ok {
			return nil, ErrNoTable{Position: pos}
		}
		e, ok := t.Entry(scenario)
		if !ok {
			return nil, ErrNoScenario{Position: pos, Scenario: scenario, Count: len(t.Entries)}
		}
		s.current[stream] = Selection{
			Position: pos,
			Scenario: scenario,
			Entry:    e,
		}
		return e, nil
	})
}

func (s *Selector) Delete(
	ctx context.Context,
	stream StreamID,
) {
	s.locker.Do(ctx, func() {
		delete(s.current, stream)
	})
}

// Current returns the selected entry of the stream, or nil.
func (s *Selector) Current(
	ctx context.Context,
	stream StreamID,
) *Entry {
	return s.Selection(ctx, stream).Entry
}

func (s *Selector) Selection(
	ctx context.Context,
	stream StreamID,
) Selection {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &s.locker, func() Selection {
		return s.current[stream]
	})
}
