package rtos

// readyFIFO is the per-priority ready queue: a plain FIFO of threads
// waiting for CPU time at one priority level. It reuses Thread.next, the
// same field backing priorList's linkage, since a thread is never on a
// ready queue and a wait list simultaneously.
type readyFIFO struct {
	first, last *Thread
}

func (q *readyFIFO) isEmpty() bool { return q.first == nil }

func (q *readyFIFO) put(th *Thread) {
	th.next = nil
	if q.last == nil {
		q.first = th
		q.last = th
		return
	}
	q.last.next = th
	q.last = th
}

func (q *readyFIFO) get() *Thread {
	th := q.first
	if th == nil {
		return nil
	}
	q.first = th.next
	if q.first == nil {
		q.last = nil
	}
	th.next = nil
	return th
}

// priorList is a priority-ordered intrusive wait list: ascending by
// Priority value (numerically smaller sorts first, i.e. highest priority
// first), ties broken by arrival order (FIFO among equal priorities, per
// the kernel's testable ordering invariant). Removal of any linked thread
// is O(1) via the prevPrior-points-to-predecessor's-slot technique, safe
// here because it is ordinary pointer indirection, not address arithmetic.
type priorList struct {
	first *Thread
}

func (l *priorList) isEmpty() bool { return l.first == nil }

// put inserts th in priority order. Equal-priority entries are always
// appended after every existing entry at that priority, regardless of how
// many already queued — a small, deliberate correction of the original
// C loop, which only preserves arrival order for the first two waiters at
// a given priority; see DESIGN.md.
func (l *priorList) put(th *Thread) {
	th.prevPrior = nil
	th.next = nil
	if l.first == nil || th.priority < l.first.priority {
		th.next = l.first
		th.prevPrior = &l.first
		if l.first != nil {
			l.first.prevPrior = &th.next
		}
		l.first = th
		return
	}
	i := l.first
	for i.next != nil && i.next.priority <= th.priority {
		i = i.next
	}
	th.next = i.next
	th.prevPrior = &i.next
	if th.next != nil {
		th.next.prevPrior = &th.next
	}
	i.next = th
}

// remove unlinks th from whichever priorList it is in (a no-op if it is
// not in one) and, if th was also parked on a tick list, unlinks it from
// that too and tags it wakeEvent — the two-list race resolution described
// in event.go's timed wait.
func (l *priorList) remove(th *Thread) {
	if th.prevPrior == nil {
		return
	}
	*th.prevPrior = th.next
	if th.next != nil {
		th.next.prevPrior = th.prevPrior
	}
	th.prevPrior = nil
	th.next = nil
	if th.prevTick != nil {
		removeFromTickList(th)
		th.wakeReason = wakeEvent
	}
}

// get dequeues and returns the head of the list (the highest-priority,
// earliest-arrived waiter), or nil if empty.
func (l *priorList) get() *Thread {
	th := l.first
	if th == nil {
		return nil
	}
	l.remove(th)
	return th
}

// tickList is a deadline-ordered intrusive wait list, sorted by wrap-safe
// tick comparison rather than raw numeric order (see tickIsOver in
// timer.go). Structurally identical in shape to priorList but keyed on
// Tick deadlines instead of Priority.
type tickList struct {
	first *Thread
}

func (l *tickList) isEmpty() bool { return l.first == nil }

func (l *tickList) put(th *Thread) {
	th.prevTick = nil
	th.nextTick = nil
	if l.first == nil || !tickIsOver(th.deadline, l.first.deadline) {
		th.nextTick = l.first
		th.prevTick = &l.first
		if l.first != nil {
			l.first.prevTick = &th.nextTick
		}
		l.first = th
		return
	}
	i := l.first
	for i.nextTick != nil && tickIsOver(th.deadline, i.nextTick.deadline) {
		i = i.nextTick
	}
	th.nextTick = i.nextTick
	th.prevTick = &i.nextTick
	if th.nextTick != nil {
		th.nextTick.prevTick = &th.nextTick
	}
	i.nextTick = th
}

// remove unlinks th from whichever tickList it is in, and if th was also
// parked on a priorList, unlinks that too and tags it wakeTimeout.
func (l *tickList) remove(th *Thread) {
	if th.prevTick == nil {
		return
	}
	*th.prevTick = th.nextTick
	if th.nextTick != nil {
		th.nextTick.prevTick = th.prevTick
	}
	th.prevTick = nil
	th.nextTick = nil
	if th.prevPrior != nil {
		removeFromPriorList(th)
		th.wakeReason = wakeTimeout
	}
}

// popExpired removes and returns the head of the list if its deadline has
// passed as of now, or nil if the list is empty or its head is not yet due.
func (l *tickList) popExpired(now Tick) *Thread {
	if l.first == nil || !tickIsOver(now, l.first.deadline) {
		return nil
	}
	th := l.first
	l.remove(th)
	return th
}

// removeFromTickList and removeFromPriorList perform the bare unlink used
// internally by priorList.remove/tickList.remove to clean up the other
// list a dual-parked thread is linked into, without recursing into the
// wakeReason bookkeeping (the caller already owns that).
func removeFromTickList(th *Thread) {
	if th.prevTick == nil {
		return
	}
	*th.prevTick = th.nextTick
	if th.nextTick != nil {
		th.nextTick.prevTick = th.prevTick
	}
	th.prevTick = nil
	th.nextTick = nil
}

func removeFromPriorList(th *Thread) {
	if th.prevPrior == nil {
		return
	}
	*th.prevPrior = th.next
	if th.next != nil {
		th.next.prevPrior = th.prevPrior
	}
	th.prevPrior = nil
	th.next = nil
}
