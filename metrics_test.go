package rtos

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMetricsTracksSwitchLatencyAndQueueDepth exercises the metrics path
// end-to-end: WithMetrics(true) must cause Scheduler.jump to sample
// context-switch latency and Queue's ring-buffer ops to sample occupancy,
// neither of which any other test in this package enables.
func TestMetricsTracksSwitchLatencyAndQueueDepth(t *testing.T) {
	sched, err := NewScheduler(WithPriorities(4), WithMetrics(true))
	require.NoError(t, err)
	require.NotNil(t, sched.Metrics())

	q := NewQueue(sched, make([]byte, 1))
	require.NotNil(t, q.Metrics())

	_, err = sched.Add(0, func(th *Thread) {
		require.NoError(t, q.Put(th, 1))
		require.NoError(t, q.Put(th, 2)) // queue full at 1/1, blocks then retries
	}, WithName("producer"))
	require.NoError(t, err)

	_, err = sched.Add(1, func(th *Thread) {
		b, err := q.Get(th)
		require.NoError(t, err)
		require.Equal(t, byte(1), b)
	}, WithName("consumer"))
	require.NoError(t, err)

	require.NoError(t, sched.Run())

	m := sched.Metrics()
	// at least: the initial dispatch to producer, producer blocking on the
	// full queue, and consumer's notify preempting back to producer.
	require.GreaterOrEqual(t, m.ContextSwitches(), 2)
	require.GreaterOrEqual(t, m.SwitchLatencyP50(), 0.0)
	require.GreaterOrEqual(t, m.SwitchLatencyP99(), 0.0)
	require.GreaterOrEqual(t, m.SwitchLatencyMax(), 0.0)

	qm := q.Metrics()
	// depth samples recorded in order [1, 0, 1] (first Put, the Get that
	// frees a slot, the retried second Put); both percentiles land on 1.
	require.Equal(t, 1.0, qm.DepthP50())
	require.Equal(t, 1.0, qm.DepthP99())
}

// TestMetricsDisabledByDefault checks that a Scheduler/Queue constructed
// without WithMetrics leaves both collectors nil, so the percentile
// accessors' nil-receiver zero-value behavior is reachable.
func TestMetricsDisabledByDefault(t *testing.T) {
	sched, err := NewScheduler(WithPriorities(2))
	require.NoError(t, err)
	require.Nil(t, sched.Metrics())

	q := NewQueue(sched, make([]byte, 1))
	require.Nil(t, q.Metrics())
}
