package rtos

// Tick is a monotonically advancing counter driven by Scheduler.TickISR
// (or a test harness standing in for a hardware tick interrupt). It wraps
// at the width of the underlying type; comparisons must always go through
// tickIsOver, never raw arithmetic, since a wrapped tick can be numerically
// smaller than a deadline set before the wrap.
type Tick uint32

// tickIsOver reports whether tick a is at or past deadline b, using
// modular ("wrap-safe") comparison: the difference a-b, taken modulo 2^32,
// is at most 2^31. This is the direct translation of the original's
// tick_isOver macro — ((a-b) mod 2^n) <= 2^(n-1) — expressed with Go's
// defined wraparound unsigned arithmetic instead of a macro.
func tickIsOver(a, b Tick) bool {
	return a-b <= 1<<31
}

// Timer is a tick-driven wait source: threads park on it directly
// (Wait/Delay/Period/Shift) or combine it with another wait list for a
// bounded wait (see event.go's WaitTimer, mutex.go's EnterTimer,
// semaphore.go's WaitTimer, queue.go's *Timer variants). A Timer's
// identity is distinct from the scheduler's global tick list in the
// original design only insofar as it tracks its own comparison mutex; in
// this reimplementation every timed wait shares the scheduler's single
// tickList, so Timer is a thin handle around a deadline computation plus
// Abort bookkeeping.
type Timer struct {
	s *Scheduler
}

// NewTimer constructs a Timer bound to the given scheduler.
func NewTimer(s *Scheduler) *Timer { return &Timer{s: s} }

// Tick returns the scheduler's current tick counter.
func (s *Scheduler) Tick() Tick { return s.tick }

// TickISR advances the scheduler's tick counter by one and wakes every
// thread whose deadline has now passed, in deadline order. It reports
// whether a yield is now suggested (some woken thread outranks the
// currently running one). Safe to call from any goroutine standing in for
// a timer interrupt; never yields internally.
func (s *Scheduler) TickISR() bool {
	s.crit.mu.Lock()
	defer s.crit.mu.Unlock()

	s.tick++
	yield := false
	for {
		th := s.tickList.popExpired(s.tick)
		if th == nil {
			break
		}
		s.ready[th.priority].put(th)
		if th.priority < s.running.priority {
			yield = true
		}
		s.diag.debug("timer expired", func(b *logifaceBuilder) *logifaceBuilder {
			return b.Uint64("thread", th.id).Uint64("tick", uint64(s.tick))
		})
	}
	return yield
}

// DeadlineAfter computes the tick at which a wait of d ticks from now
// expires, for use with the *Deadline methods of Event, Mutex, Semaphore
// and Queue.
func (th *Thread) DeadlineAfter(d Tick) Tick {
	return th.sched.tick + d
}

// Wait blocks the calling thread until d ticks have elapsed.
func (t *Timer) Wait(th *Thread, d Tick) {
	s := t.s
	s.crit.Enter(th)
	th.deadline = th.DeadlineAfter(d)
	th.wakeReason = wakeNone
	s.tickList.put(th)
	s.jump(th)
	s.crit.Exit(th)
}

// Delay is an alias of Wait kept for parity with the original's
// task_delay naming; both block for exactly d ticks.
func (t *Timer) Delay(th *Thread, d Tick) { t.Wait(th, d) }

// Period blocks the calling thread until the tick counter reaches
// *next, then advances *next by d, giving the caller a drift-free
// periodic wait: the next deadline is always computed from the previous
// one, not from the wake time, so jitter in wake latency never
// accumulates. *next should be initialized to the scheduler's current
// tick (or a value already in the future) before the first call.
func (t *Timer) Period(th *Thread, next *Tick, d Tick) {
	s := t.s
	s.crit.Enter(th)
	th.deadline = *next
	th.wakeReason = wakeNone
	s.tickList.put(th)
	s.jump(th)
	*next += d
	s.crit.Exit(th)
}

// Shift blocks the calling thread until the tick counter reaches
// deadline, a tick value computed by the caller (typically by a previous
// Shift or Period call), without the fixed-period increment Period
// applies.
func (t *Timer) Shift(th *Thread, deadline Tick) {
	s := t.s
	s.crit.Enter(th)
	th.deadline = deadline
	th.wakeReason = wakeNone
	s.tickList.put(th)
	s.jump(th)
	s.crit.Exit(th)
}

// Abort cancels a pending timed wait on th, removing it from the tick list
// (and, if it was also parked on a priority list as part of a combined
// wait, from that list too, tagged as a timeout) and making it ready to
// run immediately. It is a structural error to call Abort on a thread that
// is not currently in a timed wait.
func (t *Timer) Abort(runner, th *Thread) {
	s := t.s
	s.crit.Enter(runner)
	s.tickList.remove(th)
	s.resume(runner, th)
	s.crit.Exit(runner)
}
