package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNilInstanceIsNoop(t *testing.T) {
	var c *Collector
	i := c.Instance(1)
	require.Nil(t, i)
	i.Event(EventFrameStart)
	i.FrameFailure()
	i.ConsistencyError("skew")
	i.HardwareError()
	i.RejectedInterrupt()
	i.ChannelDisabled(0, "null_address")
	i.ShotDuration(time.Millisecond)
}

func TestCollector(t *testing.T) {
	c, err := NewCollector("")
	require.NoError(t, err)

	i := c.Instance(3)
	i.Event(EventFrameStart)
	i.Event(EventFrameStart)
	i.Event(EventFrameEnd)
	i.ChannelDisabled(2, "null_address")
	i.ShotDuration(time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(c.events.WithLabelValues("3", EventFrameStart)))
	require.Equal(t, 1.0, testutil.ToFloat64(c.events.WithLabelValues("3", EventFrameEnd)))
	require.Equal(t, 1.0, testutil.ToFloat64(c.channelsDisabled.WithLabelValues("3", "2", "null_address")))

	// another collector has its own registry
	_, err = NewCollector("")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "mcscaler_events_total"))
}
