package rtos

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTickIsOverWrapSafe(t *testing.T) {
	require.True(t, tickIsOver(10, 10))
	require.True(t, tickIsOver(11, 10))
	require.False(t, tickIsOver(9, 10))

	// a deadline set just before the counter wraps must still compare as
	// "over" once the counter has wrapped past it, not as a huge negative gap
	var max Tick = 0
	max--
	require.True(t, tickIsOver(max, max))
	require.True(t, tickIsOver(0, max))  // wrapped around: 0 is "after" max
	require.False(t, tickIsOver(max, 0)) // max is one tick before a deadline of 0, not past it
}

// TestTimerDelayBlocksExactDuration exercises Timer.Delay end-to-end: the
// calling thread is parked until exactly d ticks have elapsed. Run returns
// once the thread parks (the system goes idle); TickISR/Dispatch are then
// driven directly, standing in for the hardware timer interrupt and its
// forced context switch.
func TestTimerDelayBlocksExactDuration(t *testing.T) {
	sched, err := NewScheduler(WithPriorities(4))
	require.NoError(t, err)

	timer := NewTimer(sched)
	var startTick, endTick Tick

	_, err = sched.Add(1, func(th *Thread) {
		startTick = sched.Tick()
		timer.Delay(th, 5)
		endTick = sched.Tick()
	})
	require.NoError(t, err)

	require.NoError(t, sched.Run())
	for i := 0; i < 5; i++ {
		sched.TickISR()
		sched.Dispatch()
	}

	require.Equal(t, startTick+5, endTick)
}

// TestTimerPeriodIsDriftFree checks that Period computes each deadline from
// the previous one rather than from the actual wake time, so wake-latency
// jitter never accumulates across iterations.
func TestTimerPeriodIsDriftFree(t *testing.T) {
	sched, err := NewScheduler(WithPriorities(4))
	require.NoError(t, err)

	timer := NewTimer(sched)
	const period Tick = 4
	const iterations = 3
	var deadlines []Tick

	_, err = sched.Add(1, func(th *Thread) {
		next := sched.Tick() + period // seed the first deadline in the future
		for i := 0; i < iterations; i++ {
			timer.Period(th, &next, period)
			deadlines = append(deadlines, sched.Tick())
		}
	})
	require.NoError(t, err)

	require.NoError(t, sched.Run())
	for i := 0; i < iterations; i++ {
		for j := Tick(0); j < period; j++ {
			sched.TickISR()
			sched.Dispatch()
		}
	}

	require.Len(t, deadlines, iterations)
	for i := 1; i < len(deadlines); i++ {
		require.Equal(t, period, deadlines[i]-deadlines[i-1])
	}
}

func TestTimerAbortResumesImmediately(t *testing.T) {
	sched, err := NewScheduler(WithPriorities(4))
	require.NoError(t, err)

	timer := NewTimer(sched)
	var aborted *Thread
	var completed bool

	// Higher priority than aborter, so by the time aborter runs, victim has
	// already recorded itself and parked.
	_, err = sched.Add(1, func(th *Thread) {
		aborted = th
		timer.Wait(th, 1000) // would block far longer than the test runs
		completed = true
	}, WithName("victim"))
	require.NoError(t, err)

	_, err = sched.Add(2, func(th *Thread) {
		timer.Abort(th, aborted)
	}, WithName("aborter"))
	require.NoError(t, err)

	require.NoError(t, sched.Run())
	require.True(t, completed)
}
