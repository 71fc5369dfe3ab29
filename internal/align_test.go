package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlign(t *testing.T) {
	require.Equal(t, uint32(1024), AlignUp(uint32(1008), 32))
	require.Equal(t, uint32(1008), AlignUp(uint32(1008), 2))
	require.Equal(t, uint32(1009), AlignUp(uint32(1009), 0))
	require.Equal(t, uint32(992), AlignDown(uint32(1008), 32))
	require.Equal(t, uint32(960), AlignDown(uint32(961), 2))
	require.Equal(t, uint32(3), DivRoundUp(uint32(9), 4))
	require.Equal(t, uint32(2), DivRoundUp(uint32(8), 4))
}

func TestGCDLCM(t *testing.T) {
	require.Equal(t, uint32(8), GCD(uint32(1080), 256))
	require.Equal(t, uint32(270), LCM(uint32(135), 2))
	require.Equal(t, uint32(0), LCM(uint32(0), 2))
	require.Equal(t, 5, Clamp(7, 1, 5))
	require.Equal(t, 1, Clamp(-1, 1, 5))
}
