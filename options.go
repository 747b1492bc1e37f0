package rtos

// schedulerOptions holds configuration resolved at Scheduler construction.
type schedulerOptions struct {
	priorities     int
	basicMode      bool
	metricsEnabled bool
	logger         *Logger
}

// Option configures a Scheduler instance.
type Option interface {
	applyScheduler(*schedulerOptions) error
}

// optionImpl implements Option, the same single-method-wrapper shape used
// throughout this module's configuration surface.
type optionImpl struct {
	applyFunc func(*schedulerOptions) error
}

func (o *optionImpl) applyScheduler(opts *schedulerOptions) error {
	return o.applyFunc(opts)
}

// WithPriorities sets the number of application-visible priority levels
// (the original's compile-time PRIORITIES_QTY). Levels are numbered
// 0..n-1, 0 highest; the idle/background thread occupies level n,
// reserved and not selectable by application threads. Defaults to 8.
func WithPriorities(n int) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.priorities = n
		return nil
	}}
}

// WithBasicMode selects the original's BASIC_MODE thread layout: threads
// never combine a timed wait with a priority-list wait. Event.WaitTimer,
// Mutex.EnterTimer, Semaphore.WaitTimer, the queue timer variants and their
// *Deadline forms ignore the deadline, block until released, and report
// success. The thread record's shape is identical either way in this
// implementation, since Go has no equivalent incentive to shrink a struct
// by dropping an unused pointer pair. Default false (full mode).
func WithBasicMode(enabled bool) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.basicMode = enabled
		return nil
	}}
}

// WithMetrics enables runtime metrics collection (context-switch latency
// and, per Queue, occupancy percentiles). Adds a small amount of overhead
// per jump and per queue put/get; disabled by default.
func WithMetrics(enabled bool) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

// WithStructuredLogger attaches a Logger for kernel diagnostics (thread
// registration, timer expiry, queue backpressure, mutex contention). Thread
// registration and queue-backpressure entries are written outside the
// kernel's critical section; mutex-contention and timer-expiry entries are
// written while it is held. A nil Logger (the default) disables logging
// entirely.
func WithStructuredLogger(l *Logger) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.logger = l
		return nil
	}}
}

const defaultPriorities = 8

func resolveOptions(opts []Option) (*schedulerOptions, error) {
	cfg := &schedulerOptions{
		priorities: defaultPriorities,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyScheduler(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.priorities < 1 {
		cfg.priorities = defaultPriorities
	}
	return cfg, nil
}
