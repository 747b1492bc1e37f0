package rtos

// Mutex is a binary lock with ownership: only the thread currently holding
// it may release it. Unlike the original implementation, Exit wakes only
// the head of the wait list (the highest-priority, earliest-arrived
// waiter) rather than the entire list — the original author flagged this
// "FIXME: full?" themselves; waking the whole list on every release means
// every waiter but one immediately re-blocks, burning a context switch
// each for no benefit. The woken thread re-validates ownership itself
// (Enter's loop below), so waking only one is always sufficient and never
// loses a wakeup.
type Mutex struct {
	s     *Scheduler
	list  priorList
	owner *Thread
}

// NewMutex constructs an unheld Mutex bound to the given scheduler.
func NewMutex(s *Scheduler) *Mutex { return &Mutex{s: s} }

// Enter acquires the mutex, blocking while it is held by another thread.
// Acquiring a mutex already held by the calling thread deadlocks it
// against itself, exactly as with any non-reentrant lock — this kernel has
// no priority-inheritance or reentrant-mutex variant (see spec Non-goals).
func (m *Mutex) Enter(th *Thread) {
	s := m.s
	s.crit.Enter(th)
	if m.owner == nil {
		m.owner = th
		s.crit.Exit(th)
		return
	}
	s.diag.warn(m, "mutex contention", func(b *logifaceBuilder) *logifaceBuilder {
		return b.Uint64("thread", th.id).Uint64("owner", m.owner.id)
	})
	// Exit hands ownership directly to the thread it wakes, so once this
	// loop's wait returns, m.owner is already th; the loop guards against
	// nothing in the steady state but keeps the wait re-checkable, the
	// usual discipline around any condition wait.
	for m.owner != th {
		s.waitInPriorList(th, &m.list)
	}
	s.crit.Exit(th)
}

// EnterDeadline attempts to acquire the mutex by the given absolute tick
// deadline. Reports true if acquired, false if the deadline passed first.
func (m *Mutex) EnterDeadline(th *Thread, deadline Tick) bool {
	s := m.s
	s.crit.Enter(th)
	if m.owner == nil {
		m.owner = th
		s.crit.Exit(th)
		return true
	}
	for m.owner != th {
		if !s.waitInPriorAndTickList(th, &m.list, deadline) {
			s.crit.Exit(th)
			return false
		}
	}
	s.crit.Exit(th)
	return true
}

// EnterTimer attempts to acquire the mutex within d ticks. Reports true if
// acquired, false if the timer expired first.
func (m *Mutex) EnterTimer(th *Thread, d Tick) bool {
	return m.EnterDeadline(th, th.DeadlineAfter(d))
}

// Exit releases the mutex, which must currently be held by the calling
// thread, waking the single highest-priority waiter (if any) to take
// ownership next.
func (m *Mutex) Exit(th *Thread) {
	s := m.s
	s.crit.Enter(th)
	m.owner = nil
	if waiter := m.list.get(); waiter != nil {
		m.owner = waiter
		s.resume(th, waiter)
	}
	s.crit.Exit(th)
}

// Busy reports whether the mutex is currently held.
func (m *Mutex) Busy(th *Thread) bool {
	s := m.s
	s.crit.Enter(th)
	held := m.owner != nil
	s.crit.Exit(th)
	return held
}

// Owner returns the thread currently holding the mutex, or nil if it is
// free.
func (m *Mutex) Owner(th *Thread) *Thread {
	s := m.s
	s.crit.Enter(th)
	owner := m.owner
	s.crit.Exit(th)
	return owner
}
