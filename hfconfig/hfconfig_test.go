package hfconfig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/mcscaler/regs"
	"github.com/xaionaro-go/mcscaler/setfile"
	"github.com/xaionaro-go/mcscaler/types"
)

func testTuning() *setfile.HFTuning {
	return &setfile.HFTuning{
		NumBreakpoints: 3,
		NoiseIndex:     [setfile.MaxBreakpoints]uint32{100, 200, 400},
		Weight:         [setfile.MaxBreakpoints]int32{10, 30, -10},
	}
}

func TestFindBracket(t *testing.T) {
	tuning := *testTuning()
	for _, tc := range []struct {
		noiseIndex uint32
		bracket    Bracket
		weight     int32
	}{
		{noiseIndex: 50, bracket: Bracket{Kind: BracketKindBeforeFirst}, weight: 10},
		{noiseIndex: 100, bracket: Bracket{Kind: BracketKindExact}, weight: 10},
		{noiseIndex: 150, bracket: Bracket{Kind: BracketKindBetween, Min: 0, Max: 1}, weight: 20},
		{noiseIndex: 200, bracket: Bracket{Kind: BracketKindExact, Min: 1, Max: 1}, weight: 30},
		{noiseIndex: 300, bracket: Bracket{Kind: BracketKindBetween, Min: 1, Max: 2}, weight: 10},
		{noiseIndex: 400, bracket: Bracket{Kind: BracketKindExact, Min: 2, Max: 2}, weight: -10},
		{noiseIndex: 1000, bracket: Bracket{Kind: BracketKindAfterLast, Min: 2, Max: 2}, weight: -10},
	} {
		b, ok := FindBracket(tuning, tc.noiseIndex)
		require.True(t, ok)
		require.Equal(t, tc.bracket, b, "ni %d", tc.noiseIndex)
		require.Equal(t, tc.weight, Interpolate(tuning, b, tc.noiseIndex), "ni %d", tc.noiseIndex)
	}

	_, ok := FindBracket(setfile.HFTuning{}, 100)
	require.False(t, ok)
}

func TestExactBreakpointIsNotInterpolated(t *testing.T) {
	b, ok := FindBracket(*testTuning(), 200)
	require.True(t, ok)
	require.Equal(t, b.Min, b.Max)
	require.Equal(t, BracketKindExact, b.Kind)
}

func testRequest(noiseIndex uint32, tuning *setfile.HFTuning) Request {
	return Request{
		Config: types.HFConfig{
			Enabled: true,
			Size:    types.Size{Width: 1000, Height: 750},
		},
		Buffers: types.BufferSet{Buffers: []types.Buffer{
			{Planes: []uint64{0x1_0000_1000}},
		}},
		NoiseIndex: noiseIndex,
		Tuning:     tuning,
	}
}

func TestConfigureReappliesOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	file := regs.NewFile()
	c := NewConfigurer()
	tuning := testTuning()

	r := c.Configure(ctx, file, testRequest(150, tuning))
	require.True(t, r.Enabled)
	require.True(t, r.Reapplied)
	require.Equal(t, int32(20), r.Params.Weight)
	require.Equal(t, uint32(20), file.Read(ctx, regs.G(regs.FieldHFWeight)))
	require.Equal(t, uint32(1008), file.Read(ctx, regs.G(regs.FieldHFStride)))
	require.Equal(t, uint64(0x1_0000_1000), regs.ReadAddr(ctx, file,
		regs.Buf(regs.FieldHFAddrLo, 0, 0, 0),
		regs.Buf(regs.FieldHFAddrHi, 0, 0, 0),
	))

	r = c.Configure(ctx, file, testRequest(150, tuning))
	require.True(t, r.Enabled)
	require.False(t, r.Reapplied)
	require.Equal(t, int32(20), r.Params.Weight)

	r = c.Configure(ctx, file, testRequest(300, tuning))
	require.True(t, r.Reapplied)
	require.Equal(t, int32(10), r.Params.Weight)

	// another entry with the same noise index
	r = c.Configure(ctx, file, testRequest(300, testTuning()))
	require.True(t, r.Reapplied)

	c.Reset()
	r = c.Configure(ctx, file, testRequest(300, tuning))
	require.True(t, r.Reapplied)
}

func TestConfigureWithoutAddressDisablesTheSubPath(t *testing.T) {
	ctx := context.Background()
	file := regs.NewFile()
	c := NewConfigurer()

	req := testRequest(150, testTuning())
	req.Buffers.Buffers[0].Planes[0] = 0
	r := c.Configure(ctx, file, req)
	require.False(t, r.Enabled)
	require.Zero(t, file.Read(ctx, regs.G(regs.FieldHFEnable)))
	require.Zero(t, file.Read(ctx, regs.G(regs.FieldHFDMAEnable)))

	req = testRequest(150, testTuning())
	req.Buffers = types.BufferSet{}
	r = c.Configure(ctx, file, req)
	require.False(t, r.Enabled)

	// the tuning was never applied, the next valid shot applies it
	r = c.Configure(ctx, file, testRequest(150, testTuning()))
	require.True(t, r.Enabled)
	require.True(t, r.Reapplied)
	require.Equal(t, uint32(1), file.Read(ctx, regs.G(regs.FieldHFEnable)))
}
