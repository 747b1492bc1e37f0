package rtos

// Priority identifies a scheduling level. Numerically smaller values are
// higher priority; priority 0 preempts everything. The idle/background
// thread always occupies the numerically largest level, one past the
// application-visible range configured via WithPriorities.
type Priority uint16

// wakeReason records which wait list actually released a thread parked on
// both a priority list and a tick list simultaneously (the timed-wait race
// described in event.go and timer.go). This replaces the original
// implementation's prevTick==1 sentinel with an explicit tag, since nothing
// here needs to economize on a struct field the way embedded C code does.
type wakeReason uint8

const (
	wakeNone wakeReason = iota
	wakeEvent
	wakeTimeout
)

// Thread is a unit of scheduling: a goroutine that has registered itself
// with a Scheduler via Scheduler.Add. Its exported accessors are safe to
// call only from the goroutine that owns it (the one passed this *Thread
// by Add's entry callback), mirroring the original kernel's assumption
// that a thread only ever inspects or mutates its own record while running.
type Thread struct {
	id       uint64
	name     string
	priority Priority
	sched    *Scheduler

	// wake is the single-slot baton channel used to hand execution to this
	// thread. Exactly one goroutine is ever not blocked receiving on its own
	// wake channel (the currently running thread); scheduling a thread means
	// sending to its wake channel, and descheduling the caller means
	// blocking on its own. See scheduler.go's jump.
	wake chan struct{}

	// next links this thread into whichever singly-linked structure
	// currently owns it: the ready FIFO for its priority level, or (via
	// prevPrior below) a priority-ordered wait list. A thread is never in
	// both at once, so the field is shared, exactly as the original reuses
	// thread_t.nextPr for both threadQueue_t and priorList_t.
	next      *Thread
	prevPrior **Thread

	// Tick-ordered wait list linkage, independent of the above: a thread
	// can be parked on a tick list and a priority list at the same time
	// (event_timer_wait's two-list race).
	nextTick *Thread
	prevTick **Thread
	deadline Tick

	wakeReason wakeReason

	// criticalDepth is this thread's nested critical-section counter. It
	// lives on the thread record, not on the scheduler, because a context
	// switch must carry the newly running thread's own masking depth with
	// it — see Scheduler.jump.
	criticalDepth int32

	suspended bool
}

// ID returns the thread's scheduler-assigned identity, stable for the life
// of the thread. IDs start at 1; 0 is never assigned, reserved as the null
// value for callers that store thread IDs in their own records.
func (th *Thread) ID() uint64 { return th.id }

// Name returns the thread's diagnostic name, set via the WithName Add
// option, or "" if none was given.
func (th *Thread) Name() string { return th.name }

// Priority returns the thread's current scheduling priority.
func (th *Thread) Priority() Priority {
	th.sched.crit.Enter(th)
	p := th.priority
	th.sched.crit.Exit(th)
	return p
}

// SetPriority changes the calling thread's own scheduling priority, taking
// effect the next time it yields or blocks. Like the original's
// task_setPriority, this only ever targets the running thread — a thread
// is never on any ready queue or wait list while it is the one calling
// SetPriority, so there is nothing to reposition immediately. Not named in
// the distilled kernel spec; carried over from the original's
// task_setPriority/task_getPriority pair (see DESIGN.md).
func (th *Thread) SetPriority(p Priority) {
	s := th.sched
	s.crit.Enter(th)
	th.priority = p
	s.crit.Exit(th)
}
