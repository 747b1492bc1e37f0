package rtos

import (
	"sync"
	"sync/atomic"
	"time"
)

// critSection is the kernel's single global lock, modeling the original's
// interrupt mask. It is a hand-rolled reentrant mutex: Enter/Exit nest for
// the thread that currently owns it, exactly mirroring the hardware
// contract where "interrupts masked" is a single flag whose nesting depth
// is tracked per logical owner. Reentrancy is keyed on owner identity
// rather than goroutine identity because ownership is explicitly handed
// off across goroutines at every context switch (see Scheduler.jump) —
// something a goroutine-bound reentrant lock could not express.
type critSection struct {
	mu    sync.Mutex
	owner *Thread
}

func (c *critSection) Enter(th *Thread) {
	if c.owner != th {
		c.mu.Lock()
		c.owner = th
	}
	th.criticalDepth++
}

func (c *critSection) Exit(th *Thread) {
	th.criticalDepth--
	if th.criticalDepth == 0 {
		c.owner = nil
		c.mu.Unlock()
	}
}

// Scheduler is a priority-preemptive, single-logical-CPU scheduler. Threads
// register with Add before Run; Run dispatches the highest-priority ready
// thread and blocks until the background/idle thread is itself resumed
// (i.e. until every registered thread is parked on some wait list),
// mirroring the original scheduler_run's "does not return in the caller's
// context" contract — the caller's goroutine becomes the idle thread.
type Scheduler struct {
	priorities int // count of application-visible priority levels
	idle       Priority
	ready      []readyFIFO

	running    *Thread
	background *Thread

	crit critSection

	tick      Tick
	tickList  tickList

	nextID uint64

	basicMode bool
	metrics   *Metrics
	diag      *diagnostics

	started atomic.Bool
}

// NewScheduler constructs a Scheduler with the given options. It does not
// start dispatching; call Add to register threads, then Run.
func NewScheduler(opts ...Option) (*Scheduler, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	s := &Scheduler{
		priorities: cfg.priorities,
		idle:       Priority(cfg.priorities),
		ready:      make([]readyFIFO, cfg.priorities+1),
		basicMode:  cfg.basicMode,
	}
	if cfg.metricsEnabled {
		s.metrics = NewMetrics()
	}
	s.diag = newDiagnostics(cfg.logger)

	s.background = &Thread{
		name:     "idle",
		priority: s.idle,
		sched:    s,
		wake:     make(chan struct{}, 1),
	}
	s.running = s.background
	return s, nil
}

// addOptions configures a thread registered via Add.
type addOptions struct {
	name string
}

// AddOption configures Scheduler.Add.
type AddOption interface{ applyAdd(*addOptions) }

type addOptionFunc func(*addOptions)

func (f addOptionFunc) applyAdd(o *addOptions) { f(o) }

// WithName assigns a diagnostic name to a thread registered via Add.
func WithName(name string) AddOption {
	return addOptionFunc(func(o *addOptions) { o.name = name })
}

// Add registers a new thread at the given priority, running entry once the
// scheduler first dispatches it. entry receives the *Thread the scheduler
// assigned so it can call blocking operations against it. Add must be
// called before Run; calling it afterward returns ErrAddAfterRun.
//
// Priority must be in [0, priorities); the idle level is reserved.
func (s *Scheduler) Add(priority Priority, entry func(th *Thread), opts ...AddOption) (*Thread, error) {
	if s.started.Load() {
		return nil, ErrAddAfterRun
	}
	var cfg addOptions
	for _, o := range opts {
		if o != nil {
			o.applyAdd(&cfg)
		}
	}
	th := &Thread{
		id:       atomic.AddUint64(&s.nextID, 1),
		name:     cfg.name,
		priority: priority,
		sched:    s,
		wake:     make(chan struct{}, 1),
	}
	s.ready[priority].put(th)
	s.diag.info("thread registered", func(b *logifaceBuilder) *logifaceBuilder {
		return b.Uint64("id", th.id).Str("name", th.name).Uint64("priority", uint64(th.priority))
	})
	go func() {
		<-th.wake
		entry(th)
		s.exit(th)
	}()
	return th, nil
}

// exit hands off control to the next ready thread on behalf of th, whose
// entry function has just returned. Unlike yield, th is not re-queued
// anywhere: it is finished, and its goroutine returns immediately after
// this call. Not part of the original's vocabulary (an embedded task's
// entry function never returns; it loops forever), but the natural
// counterpart of Go functions returning normally instead of looping.
func (s *Scheduler) exit(th *Thread) {
	s.crit.Enter(th)
	next := s.pickReady()
	if next == nil || next == th {
		s.crit.Exit(th)
		return
	}
	s.running = next
	s.crit.owner = next
	next.wake <- struct{}{}
}

// Run starts dispatch: it force-yields the calling goroutine (which
// becomes the background/idle thread) to the highest-priority ready
// thread, and blocks until the background thread is itself resumed — which
// happens once every other registered thread has parked on some wait list.
// Calling Run more than once returns ErrAlreadyRunning.
//
// Run itself only ever performs this one dispatch pass: once it returns,
// nothing re-enters thread context on its own. A real interrupt controller
// forces the next context switch as part of returning from the interrupt
// that preempted whatever was running; nothing here can manipulate a stack
// pointer the way hardware can, so whichever goroutine is standing in for
// an interrupt source must do the equivalent explicitly — call Dispatch
// immediately after any *ISR method (TickISR, NotifyISR, SignalISR,
// PutISR, GetISR) reports a suggested yield.
func (s *Scheduler) Run() error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	s.Dispatch()
	return nil
}

// Dispatch runs the scheduler forward from quiescence to the next point of
// quiescence: it hands control to the highest-priority ready thread (if
// any), and everything that thread in turn wakes, until nothing is ready
// anymore. It is a no-op if nothing is ready. See Run's doc comment for
// when to call this directly.
func (s *Scheduler) Dispatch() {
	s.crit.mu.Lock()
	s.crit.owner = s.background
	s.background.criticalDepth = 1
	s.ready[s.idle].put(s.background)
	s.jump(s.background)
	s.background.criticalDepth = 0
	s.crit.owner = nil
	s.crit.mu.Unlock()
}

// pickReady returns and removes the highest-priority non-empty ready
// thread. The background/idle thread occupies the last slot and is always
// re-queued there by Run/yield immediately before any jump that switches
// away from it, so in practice this only returns nil if called outside
// that invariant.
func (s *Scheduler) pickReady() *Thread {
	for p := range s.ready {
		if th := s.ready[p].get(); th != nil {
			return th
		}
	}
	return nil
}

// jump hands control to the highest-priority ready thread and blocks the
// calling thread (which must be the currently running one) until it is
// itself resumed by some future jump. This is the kernel's only
// context-switch primitive; every blocking wait and every yield funnels
// through it. Must be called with the critical section held by caller.
func (s *Scheduler) jump(caller *Thread) {
	var start time.Time
	if s.metrics != nil {
		start = time.Now()
	}

	next := s.pickReady()
	if next == nil || next == caller {
		return
	}
	s.running = next
	s.crit.owner = next
	next.wake <- struct{}{}

	if s.metrics != nil {
		s.metrics.recordSwitch(float64(time.Since(start).Nanoseconds()))
	}

	<-caller.wake
}

// yield re-queues the calling thread (including the background/idle
// thread, which occupies the lowest priority level) and switches to the
// next highest-priority ready thread. Equivalent to the original's
// task_yield/_yieldISR, which unconditionally re-queues whichever thread
// is currently running before jumping away from it.
func (s *Scheduler) yield(th *Thread) {
	s.ready[th.priority].put(th)
	s.jump(th)
}

// resume makes th ready to run; if th now outranks the calling thread,
// the caller yields immediately. Used by the non-ISR "resume one waiter"
// paths (mutex exit, semaphore signal, single-waiter event notify).
func (s *Scheduler) resume(caller, th *Thread) {
	s.ready[th.priority].put(th)
	if th.priority < caller.priority {
		s.yield(caller)
	}
}

// resumeAll makes every thread in list ready to run (in priority order),
// yielding the caller afterward if any of them outranks it. Used by
// event_notify_all.
func (s *Scheduler) resumeAll(caller *Thread, list *priorList) {
	if list.isEmpty() {
		return
	}
	top := list.first.priority
	for {
		th := list.get()
		if th == nil {
			break
		}
		s.ready[th.priority].put(th)
	}
	if top < caller.priority {
		s.yield(caller)
	}
}

// resumeFirstISR is the ISR-safe counterpart of resume: it makes the head
// of list ready and reports whether a yield is now suggested, without
// itself yielding (ISR context never yields internally). Returns false if
// list was empty.
func (s *Scheduler) resumeFirstISR(list *priorList) bool {
	th := list.get()
	if th == nil {
		return false
	}
	s.ready[th.priority].put(th)
	return th.priority < s.running.priority
}

// resumeAllISR is the ISR-safe counterpart of resumeAll.
func (s *Scheduler) resumeAllISR(list *priorList) bool {
	if list.isEmpty() {
		return false
	}
	top := list.first.priority
	for {
		th := list.get()
		if th == nil {
			break
		}
		s.ready[th.priority].put(th)
	}
	return top < s.running.priority
}

// waitInPriorList parks the calling thread on list in priority order and
// switches away. Returns once some other path has resumed it.
func (s *Scheduler) waitInPriorList(th *Thread, list *priorList) {
	list.put(th)
	s.jump(th)
}

// waitInPriorAndTickList parks the calling thread on both list and the
// scheduler's tick list simultaneously (the timed-wait race: whichever
// list removes the thread first wins), recording its deadline first. It
// returns true if the priority-list side won (an event/notify/signal
// arrived before the deadline), false if the deadline was reached first.
// In basic mode the deadline is ignored: the thread parks on list alone
// and the call reports true once it is resumed.
func (s *Scheduler) waitInPriorAndTickList(th *Thread, list *priorList, deadline Tick) bool {
	if s.basicMode {
		s.waitInPriorList(th, list)
		return true
	}
	th.deadline = deadline
	th.wakeReason = wakeNone
	list.put(th)
	s.tickList.put(th)
	s.jump(th)
	return th.wakeReason == wakeEvent
}

// Suspend removes the calling thread from scheduling entirely, without
// parking it on any primitive wait list. It only becomes ready again via
// an explicit Resume call naming it. Not part of the distilled kernel
// spec's primitive vocabulary; carried over from the original's
// task_suspend/task_resume pair (see DESIGN.md).
func (th *Thread) Suspend() {
	s := th.sched
	s.crit.Enter(th)
	th.suspended = true
	s.jump(th)
	s.crit.Exit(th)
}

// Resume makes a suspended thread ready again. It is a structural error
// (undefined behavior, per the kernel's misuse contract) to call this on a
// thread that is not currently suspended.
func (s *Scheduler) Resume(runner, th *Thread) {
	s.crit.Enter(runner)
	if th.suspended {
		th.suspended = false
		s.resume(runner, th)
	}
	s.crit.Exit(runner)
}

// Metrics returns the scheduler's metrics collector, or nil if
// WithMetrics(true) was not passed to NewScheduler.
func (s *Scheduler) Metrics() *Metrics { return s.metrics }

// Running returns the currently logically-running thread.
func (s *Scheduler) Running() *Thread { return s.running }
