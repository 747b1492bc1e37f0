package rtos

// Event is a stateless rendezvous primitive: Notify/NotifyAll wake waiters
// but carry no memory of having fired (a Notify with no one waiting is
// lost, unlike a Mutex or Semaphore's latched state).
type Event struct {
	s    *Scheduler
	list priorList
}

// NewEvent constructs an Event bound to the given scheduler.
func NewEvent(s *Scheduler) *Event { return &Event{s: s} }

// Wait blocks the calling thread until Notify, NotifyAll, or their ISR
// counterparts release it.
func (e *Event) Wait(th *Thread) {
	s := e.s
	s.crit.Enter(th)
	s.waitInPriorList(th, &e.list)
	s.crit.Exit(th)
}

// WaitDeadline blocks the calling thread until either the event is
// notified or the tick counter reaches deadline, whichever comes first. It
// reports true if the event won the race, false if the deadline did. The
// deadline is an absolute tick value (see Scheduler.Tick, Thread
// .DeadlineAfter) rather than a relative duration, so that a caller
// retrying across several combined waits (as Queue's timed operations do)
// shares one fixed deadline instead of restarting the clock on each retry.
func (e *Event) WaitDeadline(th *Thread, deadline Tick) bool {
	s := e.s
	s.crit.Enter(th)
	woken := s.waitInPriorAndTickList(th, &e.list, deadline)
	s.crit.Exit(th)
	return woken
}

// WaitTimer blocks the calling thread until either the event is notified
// or d ticks elapse, whichever comes first. It reports true if the event
// won the race, false if the timer did.
func (e *Event) WaitTimer(th *Thread, d Tick) bool {
	return e.WaitDeadline(th, th.DeadlineAfter(d))
}

// Notify releases the single highest-priority (earliest-arrived, on ties)
// waiter, if any, yielding the calling thread immediately if the released
// waiter now outranks it.
func (e *Event) Notify(th *Thread) {
	s := e.s
	s.crit.Enter(th)
	if waiter := e.list.get(); waiter != nil {
		s.resume(th, waiter)
	}
	s.crit.Exit(th)
}

// NotifyAll releases every waiter, yielding the calling thread immediately
// if any released waiter now outranks it.
func (e *Event) NotifyAll(th *Thread) {
	s := e.s
	s.crit.Enter(th)
	s.resumeAll(th, &e.list)
	s.crit.Exit(th)
}

// NotifyISR is the ISR-safe counterpart of Notify: it never yields
// internally, instead reporting whether a yield is now suggested. Safe to
// call from any goroutine standing in for an interrupt service routine.
func (e *Event) NotifyISR() bool {
	s := e.s
	s.crit.mu.Lock()
	defer s.crit.mu.Unlock()
	return s.resumeFirstISR(&e.list)
}

// NotifyAllISR is the ISR-safe counterpart of NotifyAll.
func (e *Event) NotifyAllISR() bool {
	s := e.s
	s.crit.mu.Lock()
	defer s.crit.mu.Unlock()
	return s.resumeAllISR(&e.list)
}

// Waiting reports whether any thread is currently parked on this event.
func (e *Event) Waiting(th *Thread) bool {
	s := e.s
	s.crit.Enter(th)
	empty := e.list.isEmpty()
	s.crit.Exit(th)
	return !empty
}
