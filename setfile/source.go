package setfile

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/xaionaro-go/mcscaler/scaling"
)

// Source is the human-authored (TOML) description of a setfile, for example:
//
//	[[entry]]
//	name = "preview"
//	clamp = { y_min = 16, y_max = 235, c_min = 16, c_max = 240 }
//	hf = [
//	  { noise_index = 100, weight = 10 },
//	  { noise_index = 200, weight = 20 },
//	]
//	[entry.poly]
//	h = [[0, 0, 0, 512, 0, 0, 0, 0], ...]
//	v = [[0, 512, 0, 0], ...]
type Source struct {
	Entries []SourceEntry `toml:"entry"`
}

type SourceEntry struct {
	Name  string             `toml:"name"`
	Poly  SourceCoefficients `toml:"poly"`
	Post  SourceCoefficients `toml:"post"`
	Clamp SourceClamp        `toml:"clamp"`
	HF    []SourceBreakpoint `toml:"hf"`
}

// SourceCoefficients lists one row of taps per coefficient set. An empty
// list selects DefaultCoefficients.
type SourceCoefficients struct {
	H [][]int16 `toml:"h"`
	V [][]int16 `toml:"v"`
}

type SourceClamp struct {
	YMin uint16 `toml:"y_min"`
	YMax uint16 `toml:"y_max"`
	CMin uint16 `toml:"c_min"`
	CMax uint16 `toml:"c_max"`
}

type SourceBreakpoint struct {
	NoiseIndex uint32 `toml:"noise_index"`
	Weight     int32  `toml:"weight"`
}

// DefaultCoefficients is the pass-through filter: all the weight is on the
// central tap.
func DefaultCoefficients() CoefficientSets {
	var result CoefficientSets
	for idx := range result {
		result[idx].H[NumHTaps/2-1] = 512
		result[idx].V[NumVTaps/2-1] = 512
	}
	return result
}

func DecodeSource(r io.Reader) (*Source, error) {
	var src Source
	if _, err := toml.NewDecoder(r).Decode(&src); err != nil {
		return nil, fmt.Errorf("unable to decode the setfile source: %w", err)
	}
	return &src, nil
}

func DecodeSourceFile(path string) (*Source, error) {
	var src Source
	if _, err := toml.DecodeFile(path, &src); err != nil {
		return nil, fmt.Errorf("unable to decode the setfile source '%s': %w", path, err)
	}
	return &src, nil
}

// Compile converts the source into a table.
func (src *Source) Compile() (*Table, error) {
	t := &Table{Entries: make([]Entry, len(src.Entries))}
	for idx, in := range src.Entries {
		e, err := in.compile()
		if err != nil {
			return nil, fmt.Errorf("entry #%d ('%s'): %w", idx, in.Name, err)
		}
		t.Entries[idx] = e
	}
	return t, nil
}

func (in SourceEntry) compile() (Entry, error) {
	var (
		e   Entry
		err error
	)
	e.Poly, err = in.Poly.compile()
	if err != nil {
		return Entry{}, fmt.Errorf("poly: %w", err)
	}
	e.Post, err = in.Post.compile()
	if err != nil {
		return Entry{}, fmt.Errorf("post: %w", err)
	}
	e.Clamp = ClampRange(in.Clamp)
	if len(in.HF) > MaxBreakpoints {
		return Entry{}, fmt.Errorf("too many hf breakpoints: %d > %d", len(in.HF), MaxBreakpoints)
	}
	e.HF.NumBreakpoints = uint32(len(in.HF))
	for idx, bp := range in.HF {
		e.HF.NoiseIndex[idx] = bp.NoiseIndex
		e.HF.Weight[idx] = bp.Weight
	}
	if err := e.HF.Validate(); err != nil {
		return Entry{}, fmt.Errorf("hf: %w", err)
	}
	return e, nil
}

func (in SourceCoefficients) compile() (CoefficientSets, error) {
	result := DefaultCoefficients()
	if len(in.H) != 0 {
		if len(in.H) != scaling.NumCoefficientSets {
			return result, fmt.Errorf("expected %d horizontal sets, received %d", scaling.NumCoefficientSets, len(in.H))
		}
		for idx, row := range in.H {
			if len(row) != NumHTaps {
				return result, fmt.Errorf("horizontal set #%d: expected %d taps, received %d", idx, NumHTaps, len(row))
			}
			copy(result[idx].H[:], row)
		}
	}
	if len(in.V) != 0 {
		if len(in.V) != scaling.NumCoefficientSets {
			return result, fmt.Errorf("expected %d vertical sets, received %d", scaling.NumCoefficientSets, len(in.V))
		}
		for idx, row := range in.V {
			if len(row) != NumVTaps {
				return result, fmt.Errorf("vertical set #%d: expected %d taps, received %d", idx, NumVTaps, len(row))
			}
			copy(result[idx].V[:], row)
		}
	}
	return result, nil
}
