// Package setfile loads the tuning tables and tracks which entry is active
// for every logical stream.
package setfile

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/xaionaro-go/mcscaler/scaling"
)

const (
	// Magic is "MCSC" read as a little-endian uint32.
	Magic = uint32(0x4353434D)

	Version = uint32(1)

	MaxBreakpoints = 8

	NumHTaps = 8
	NumVTaps = 4
)

// Coefficients is one filter set of the poly-phase or post-chain scaler.
type Coefficients struct {
	H [NumHTaps]int16
	V [NumVTaps]int16
}

// CoefficientSets is indexed by scaling.CoefficientIndex.
type CoefficientSets [scaling.NumCoefficientSets]Coefficients

type ClampRange struct {
	YMin uint16
	YMax uint16
	CMin uint16
	CMax uint16
}

// IsZero reports the clamp is not configured.
func (c ClampRange) IsZero() bool {
	return c == ClampRange{}
}

// HFTuning is the breakpoint list of the high-frequency (detail) path.
// NoiseIndex must be ascending within the first NumBreakpoints items.
type HFTuning struct {
	NumBreakpoints uint32
	NoiseIndex     [MaxBreakpoints]uint32
	Weight         [MaxBreakpoints]int32
}

// Entry is the tuning of one scenario.
type Entry struct {
	Poly  CoefficientSets
	Post  CoefficientSets
	Clamp ClampRange
	HF    HFTuning
}

type header struct {
	Magic      uint32
	Version    uint32
	NumEntries uint32
	EntrySize  uint32
}

var (
	headerSize = binary.Size(header{})
	entrySize  = binary.Size(Entry{})
)

// Table is the parsed content of one setfile: the entries are indexed by
// the scenario.
type Table struct {
	Entries []Entry
}

func (t *Table) Entry(scenario uint32) (*Entry, bool) {
	if t == nil || int(scenario) >= len(t.Entries) {
		return nil, false
	}
	return &t.Entries[scenario], true
}

// Parse decodes and validates a binary setfile.
func Parse(data []byte) (*Table, error) {
	if len(data) < headerSize {
		return nil, ErrSize{Expected: headerSize, Actual: len(data)}
	}
	var h header
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("unable to read the header: %w", err)
	}
	if h.Magic != Magic {
		return nil, ErrBadMagic{Magic: h.Magic}
	}
	if h.Version != Version {
		return nil, ErrVersion{Version: h.Version}
	}
	if int(h.EntrySize) != entrySize {
		return nil, ErrSize{Expected: entrySize, Actual: int(h.EntrySize)}
	}
	expected := headerSize + int(h.NumEntries)*entrySize
	if len(data) != expected {
		return nil, ErrSize{Expected: expected, Actual: len(data)}
	}

	t := &Table{Entries: make([]Entry, h.NumEntries)}
	if err := binary.Read(bytes.NewReader(data[headerSize:]), binary.LittleEndian, t.Entries); err != nil {
		return nil, fmt.Errorf("unable to read the entries: %w", err)
	}
	for idx := range t.Entries {
		if err := t.Entries[idx].HF.Validate(); err != nil {
			return nil, fmt.Errorf("entry #%d is invalid: %w", idx, err)
		}
	}
	return t, nil
}

// Bytes encodes the table into the binary setfile form.
func (t *Table) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(headerSize + len(t.Entries)*entrySize)
	h := header{
		Magic:      Magic,
		Version:    Version,
		NumEntries: uint32(len(t.Entries)),
		EntrySize:  uint32(entrySize),
	}
	// writing fixed-size values into a bytes.Buffer never fails
	_ = binary.Write(&buf, binary.LittleEndian, h)
	_ = binary.Write(&buf, binary.LittleEndian, t.Entries)
	return buf.Bytes()
}

func (hf HFTuning) Validate() error {
	if hf.NumBreakpoints > MaxBreakpoints {
		return fmt.Errorf("too many breakpoints: %d > %d", hf.NumBreakpoints, MaxBreakpoints)
	}
	for idx := uint32(1); idx < hf.NumBreakpoints; idx++ {
		if hf.NoiseIndex[idx] <= hf.NoiseIndex[idx-1] {
			return fmt.Errorf("the noise index breakpoints are not ascending at #%d: %d <= %d", idx, hf.NoiseIndex[idx], hf.NoiseIndex[idx-1])
		}
	}
	return nil
}
