package rtos

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMutexMutualExclusion(t *testing.T) {
	sched, err := NewScheduler(WithPriorities(4))
	require.NoError(t, err)

	mu := NewMutex(sched)
	counter := 0
	const n = 20

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		_, err := sched.Add(1, func(th *Thread) {
			defer wg.Done()
			mu.Enter(th)
			old := counter
			sched.crit.Enter(th) // yield, like jump, runs inside the critical section
			sched.yield(th)      // give another waiter a chance to race in if exclusion is broken
			sched.crit.Exit(th)
			counter = old + 1
			mu.Exit(th)
		})
		require.NoError(t, err)
	}

	require.NoError(t, sched.Run())
	require.Equal(t, n, counter)
}

func TestMutexFIFOHandoff(t *testing.T) {
	sched, err := NewScheduler(WithPriorities(4))
	require.NoError(t, err)

	mu := NewMutex(sched)

	var mu2 sync.Mutex
	var order []int

	holder, err := sched.Add(2, func(th *Thread) {
		mu.Enter(th)
		// hold the mutex until every waiter below has queued up
		for mu.list.isEmpty() {
			sched.crit.Enter(th)
			sched.yield(th)
			sched.crit.Exit(th)
		}
		mu.Exit(th)
	}, WithName("holder"))
	require.NoError(t, err)
	_ = holder

	for i := 0; i < 3; i++ {
		i := i
		_, err := sched.Add(2, func(th *Thread) {
			mu.Enter(th)
			mu2.Lock()
			order = append(order, i)
			mu2.Unlock()
			mu.Exit(th)
		}, WithName("waiter"))
		require.NoError(t, err)
	}

	require.NoError(t, sched.Run())
	require.Equal(t, []int{0, 1, 2}, order)
}

// TestMutexTimerExpires checks that EnterTimer gives up once its deadline
// passes. Run returns as soon as the waiter parks (the system has gone
// idle); TickISR/Dispatch are then driven directly by the test, standing
// in for the hardware timer interrupt and its forced context switch.
func TestMutexTimerExpires(t *testing.T) {
	sched, err := NewScheduler(WithPriorities(4))
	require.NoError(t, err)

	mu := NewMutex(sched)
	var acquired bool

	_, err = sched.Add(1, func(th *Thread) {
		mu.Enter(th) // never released within this test
	}, WithName("holder"))
	require.NoError(t, err)

	_, err = sched.Add(1, func(th *Thread) {
		acquired = mu.EnterTimer(th, 3)
	}, WithName("waiter"))
	require.NoError(t, err)

	require.NoError(t, sched.Run())
	for i := 0; i < 3; i++ {
		sched.TickISR()
		sched.Dispatch()
	}

	require.False(t, acquired)
}
