package capability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	v, err := Lookup("v3")
	require.NoError(t, err)
	require.Equal(t, "v3", v.String())
	require.Equal(t, 6, v.Capability().NumOutputs())
	require.True(t, v.Capability().Channels[0].HasPostChain)
	require.False(t, v.Capability().Channels[5].HasPostChain)

	v, err = Lookup("v5lite")
	require.NoError(t, err)
	require.Equal(t, 3, v.Capability().NumOutputs())

	_, err = Lookup("v0")
	require.ErrorAs(t, err, &ErrUnknownVariant{})

	require.Equal(t, []string{"v3", "v5lite"}, Names())
}

func TestCapabilityChannel(t *testing.T) {
	v, err := Lookup("v3")
	require.NoError(t, err)
	_, err = v.Capability().Channel(6)
	require.Error(t, err)
	ch, err := v.Capability().Channel(1)
	require.NoError(t, err)
	require.True(t, ch.Present)
}

func TestRegisterDuplicate(t *testing.T) {
	require.Panics(t, func() {
		Register("v3", &staticVariant{name: "v3"})
	})
}
