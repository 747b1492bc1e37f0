package rtos

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSemaphoreInitiallyGreen(t *testing.T) {
	sched, err := NewScheduler(WithPriorities(4))
	require.NoError(t, err)

	sem := NewSemaphore(sched)
	var busyBefore, busyAfter bool

	_, err = sched.Add(1, func(th *Thread) {
		busyBefore = sem.Busy(th)
		sem.Wait(th) // should not block: semaphore starts green
		busyAfter = sem.Busy(th)
	})
	require.NoError(t, err)

	require.NoError(t, sched.Run())
	require.False(t, busyBefore)
	require.True(t, busyAfter)
}

func TestSemaphoreSignalCollapsesToOneRelease(t *testing.T) {
	sched, err := NewScheduler(WithPriorities(4))
	require.NoError(t, err)

	sem := NewSemaphore(sched)

	_, err = sched.Add(1, func(th *Thread) {
		sem.Wait(th) // consume the initial green state
		sem.Signal(th)
		sem.Signal(th) // three signals before any consumer Wait still collapse to one
		sem.Signal(th)
	}, WithName("signaler"))
	require.NoError(t, err)

	woken := 0
	for i := 0; i < 2; i++ {
		_, err := sched.Add(2, func(th *Thread) {
			sem.Wait(th)
			woken++
		}, WithName("consumer"))
		require.NoError(t, err)
	}

	require.NoError(t, sched.Run())
	require.Equal(t, 1, woken)
}

func TestSemaphoreWaitTimerExpires(t *testing.T) {
	sched, err := NewScheduler(WithPriorities(4))
	require.NoError(t, err)

	sem := NewSemaphore(sched)
	var acquired bool

	_, err = sched.Add(1, func(th *Thread) {
		sem.Wait(th) // consume the initial green state, leaving it red
	}, WithName("drainer"))
	require.NoError(t, err)

	_, err = sched.Add(1, func(th *Thread) {
		acquired = sem.WaitTimer(th, 3)
	}, WithName("waiter"))
	require.NoError(t, err)

	require.NoError(t, sched.Run())
	for i := 0; i < 3; i++ {
		sched.TickISR()
		sched.Dispatch()
	}

	require.False(t, acquired)
}
