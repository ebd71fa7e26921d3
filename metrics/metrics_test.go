package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveTransition("disconnected", "connecting")
	c.ObserveTransition("connecting", "connected")
	c.IncReconnectAttempt()
	c.IncReconnectFailure()
	c.ObserveHeartbeatRtt(0.150)
	c.SetQueueDepth(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.stateTransitions.WithLabelValues("disconnected", "connecting")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.reconnectAttempts))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.reconnectFailures))
	assert.Equal(t, float64(3), testutil.ToFloat64(c.queueDepth))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestCollectorNilSafe(t *testing.T) {
	var c *Collector

	//a session without metric wiring must not blow up
	c.ObserveTransition("a", "b")
	c.IncReconnectAttempt()
	c.IncReconnectFailure()
	c.ObserveHeartbeatRtt(0.1)
	c.SetQueueDepth(1)
}
