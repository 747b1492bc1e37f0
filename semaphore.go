package rtos

type semState uint8

const (
	semGreen semState = iota // signaled, next Wait returns immediately
	semRed                   // consumed, next Wait blocks
)

// Semaphore is a binary turnstile: a single pending Signal is remembered
// (green) until the next Wait consumes it (turning red), unlike Event
// which drops a Notify with no one waiting. It is not a counting
// semaphore — multiple Signals before a Wait collapse to one release.
type Semaphore struct {
	s     *Scheduler
	list  priorList
	state semState
}

// NewSemaphore constructs a Semaphore bound to the given scheduler,
// initially green (an immediate Wait succeeds without blocking).
func NewSemaphore(s *Scheduler) *Semaphore { return &Semaphore{s: s, state: semGreen} }

// Busy reports whether the semaphore is currently red (consumed, no
// pending signal).
func (sem *Semaphore) Busy(th *Thread) bool {
	s := sem.s
	s.crit.Enter(th)
	busy := sem.state == semRed
	s.crit.Exit(th)
	return busy
}

// Wait consumes a pending signal, blocking the calling thread if none is
// pending.
func (sem *Semaphore) Wait(th *Thread) {
	s := sem.s
	s.crit.Enter(th)
	if sem.state == semRed {
		s.waitInPriorList(th, &sem.list)
	}
	sem.state = semRed
	s.crit.Exit(th)
}

// WaitDeadline attempts to consume a pending signal by the given absolute
// tick deadline. Reports true if it did, false if the deadline passed
// first.
func (sem *Semaphore) WaitDeadline(th *Thread, deadline Tick) bool {
	s := sem.s
	s.crit.Enter(th)
	var ok bool
	if sem.state == semGreen {
		ok = true
	} else {
		ok = s.waitInPriorAndTickList(th, &sem.list, deadline)
	}
	if ok {
		sem.state = semRed
	}
	s.crit.Exit(th)
	return ok
}

// WaitTimer attempts to consume a pending signal within d ticks. Reports
// true if it did, false if the timer expired first.
func (sem *Semaphore) WaitTimer(th *Thread, d Tick) bool {
	return sem.WaitDeadline(th, th.DeadlineAfter(d))
}

// Signal sets the semaphore green and releases the single highest-priority
// waiter, if any, yielding the calling thread immediately if the released
// waiter now outranks it.
func (sem *Semaphore) Signal(th *Thread) {
	s := sem.s
	s.crit.Enter(th)
	sem.state = semGreen
	if waiter := sem.list.get(); waiter != nil {
		s.resume(th, waiter)
	}
	s.crit.Exit(th)
}

// SignalISR is the ISR-safe counterpart of Signal: it never yields
// internally, instead reporting whether a yield is now suggested.
func (sem *Semaphore) SignalISR() bool {
	s := sem.s
	s.crit.mu.Lock()
	defer s.crit.mu.Unlock()
	sem.state = semGreen
	return s.resumeFirstISR(&sem.list)
}
