package setfile

import (
	"context"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSource = `
[[entry]]
name = "preview"
clamp = { y_min = 16, y_max = 235, c_min = 16, c_max = 240 }
hf = [
  { noise_index = 100, weight = 10 },
  { noise_index = 200, weight = 30 },
]

[[entry]]
name = "capture"
[entry.poly]
v = [
  [0, 512, 0, 0],
  [1, 510, 1, 0],
  [2, 508, 2, 0],
  [3, 506, 3, 0],
  [4, 504, 4, 0],
  [5, 502, 5, 0],
  [6, 500, 6, 0],
]
`

func compileTestSource(t *testing.T) *Table {
	src, err := DecodeSource(strings.NewReader(testSource))
	require.NoError(t, err)
	table, err := src.Compile()
	require.NoError(t, err)
	return table
}

func TestCompileAndParse(t *testing.T) {
	table := compileTestSource(t)
	require.Len(t, table.Entries, 2)
	require.Equal(t, ClampRange{YMin: 16, YMax: 235, CMin: 16, CMax: 240}, table.Entries[0].Clamp)
	require.Equal(t, uint32(2), table.Entries[0].HF.NumBreakpoints)
	require.Equal(t, DefaultCoefficients(), table.Entries[0].Poly)
	require.Equal(t, int16(500), table.Entries[1].Poly[6].V[1])
	require.Equal(t, DefaultCoefficients()[3].H, table.Entries[1].Poly[3].H)

	parsed, err := Parse(table.Bytes())
	require.NoError(t, err)
	require.Equal(t, table, parsed)
}

func TestParseErrors(t *testing.T) {
	good := compileTestSource(t).Bytes()

	_, err := Parse(good[:3])
	require.ErrorAs(t, err, &ErrSize{})

	bad := append([]byte{}, good...)
	binary.LittleEndian.PutUint32(bad, 0xdeadbeef)
	_, err = Parse(bad)
	require.ErrorAs(t, err, &ErrBadMagic{})

	bad = append([]byte{}, good...)
	binary.LittleEndian.PutUint32(bad[4:], Version+1)
	_, err = Parse(bad)
	require.ErrorAs(t, err, &ErrVersion{})

	_, err = Parse(good[:len(good)-1])
	require.ErrorAs(t, err, &ErrSize{})
}

func TestCompileRejectsBadShapes(t *testing.T) {
	src, err := DecodeSource(strings.NewReader(`
[[entry]]
[entry.post]
h = [[1, 2, 3]]
`))
	require.NoError(t, err)
	_, err = src.Compile()
	require.Error(t, err)

	src, err = DecodeSource(strings.NewReader(`
[[entry]]
hf = [
  { noise_index = 200, weight = 1 },
  { noise_index = 100, weight = 2 },
]
`))
	require.NoError(t, err)
	_, err = src.Compile()
	require.Error(t, err)
}

func TestSelector(t *testing.T) {
	ctx := context.Background()
	data := compileTestSource(t).Bytes()
	s := NewSelector()

	_, err := s.Apply(ctx, 1, 0, 0)
	require.ErrorAs(t, err, &ErrNoTable{})

	require.NoError(t, s.Load(ctx, 0, data))
	e, err := s.Apply(ctx, 1, 0, 1)
	require.NoError(t, err)
	require.Same(t, e, s.Current(ctx, 1))
	require.Equal(t, uint32(1), s.Selection(ctx, 1).Scenario)

	_, err = s.Apply(ctx, 1, 0, 2)
	require.ErrorAs(t, err, &ErrNoScenario{})
	require.Same(t, e, s.Current(ctx, 1), "a failed apply must not change the selection")

	// a failed load keeps the previous table
	require.Error(t, s.Load(ctx, 0, data[:len(data)-2]))
	_, err = s.Apply(ctx, 2, 0, 0)
	require.NoError(t, err)

	s.Delete(ctx, 1)
	require.Nil(t, s.Current(ctx, 1))
	require.NotNil(t, s.Current(ctx, 2))
}
