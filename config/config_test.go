package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
variant: v5lite
timeouts:
  disable: 250ms
stripe:
  min_output_width: 32
debug:
  dump_regs_on_shot: true
`))
	require.NoError(t, err)
	require.Equal(t, "v5lite", cfg.Variant)
	require.Equal(t, 250*time.Millisecond, cfg.Timeouts.Disable)
	require.Equal(t, Default().Timeouts.Reset, cfg.Timeouts.Reset)
	require.Equal(t, uint32(32), cfg.Stripe.MinOutputWidth)
	require.True(t, cfg.Debug.DumpRegsOnShot)
	require.False(t, cfg.Debug.SkipSetfile)

	_, err = Parse([]byte("stripe:\n  min_output_width: 15\n"))
	require.Error(t, err)

	_, err = Parse([]byte("unknown_field: 1\n"))
	require.Error(t, err)
}

func TestRoundTripThroughFile(t *testing.T) {
	cfg := Default()
	cfg.Metrics.Enabled = true
	path := filepath.Join(t.TempDir(), "mcscaler.yaml")
	require.NoError(t, os.WriteFile(path, cfg.Bytes(), 0644))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestDebug(t *testing.T) {
	d := NewDebug(DebugConfig{SkipSizeCheck: true})
	require.True(t, d.SkipSizeCheck.Load())
	d.TestPatternDMA.Store(true)
	require.Equal(t, DebugConfig{TestPatternDMA: true, SkipSizeCheck: true}, d.Get())
}
