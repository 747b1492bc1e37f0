package rtos

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventNotifyWakesSingleWaiter(t *testing.T) {
	sched, err := NewScheduler(WithPriorities(4))
	require.NoError(t, err)

	ev := NewEvent(sched)
	var woken []int

	for i := 0; i < 3; i++ {
		i := i
		_, err := sched.Add(1, func(th *Thread) {
			ev.Wait(th)
			woken = append(woken, i)
		}, WithName("waiter"))
		require.NoError(t, err)
	}

	// Lower priority than the waiters, so by the time this runs every
	// waiter above it has already had the chance to park.
	_, err = sched.Add(2, func(th *Thread) {
		ev.Notify(th)
	}, WithName("notifier"))
	require.NoError(t, err)

	require.NoError(t, sched.Run())
	require.Equal(t, []int{0}, woken)
}

func TestEventNotifyAllWakesEveryWaiter(t *testing.T) {
	sched, err := NewScheduler(WithPriorities(4))
	require.NoError(t, err)

	ev := NewEvent(sched)
	var woken []int

	for i := 0; i < 3; i++ {
		i := i
		_, err := sched.Add(1, func(th *Thread) {
			ev.Wait(th)
			woken = append(woken, i)
		}, WithName("waiter"))
		require.NoError(t, err)
	}

	_, err = sched.Add(2, func(th *Thread) {
		ev.NotifyAll(th)
	}, WithName("notifier"))
	require.NoError(t, err)

	require.NoError(t, sched.Run())
	require.ElementsMatch(t, []int{0, 1, 2}, woken)
}

// TestEventNotifyWithNoWaitersIsLost drives ticks directly once Run returns
// (the waiter parking is exactly what brings the system to idle), standing
// in for a timer interrupt and its forced context switch via Dispatch.
func TestEventNotifyWithNoWaitersIsLost(t *testing.T) {
	sched, err := NewScheduler(WithPriorities(4))
	require.NoError(t, err)

	ev := NewEvent(sched)
	var waited bool

	_, err = sched.Add(1, func(th *Thread) {
		ev.Notify(th) // nobody waiting yet; this notification is simply lost
	}, WithName("early-notifier"))
	require.NoError(t, err)

	_, err = sched.Add(2, func(th *Thread) {
		waited = ev.WaitTimer(th, 2)
	}, WithName("waiter"))
	require.NoError(t, err)

	require.NoError(t, sched.Run())
	for i := 0; i < 2; i++ {
		sched.TickISR()
		sched.Dispatch()
	}

	require.False(t, waited)
}

func TestEventWaitDeadlineWins(t *testing.T) {
	sched, err := NewScheduler(WithPriorities(4))
	require.NoError(t, err)

	ev := NewEvent(sched)
	var woken bool

	_, err = sched.Add(2, func(th *Thread) {
		ev.Notify(th)
	}, WithName("notifier"))
	require.NoError(t, err)

	_, err = sched.Add(1, func(th *Thread) {
		woken = ev.WaitTimer(th, 1000)
	}, WithName("waiter"))
	require.NoError(t, err)

	require.NoError(t, sched.Run())
	require.True(t, woken)
}
