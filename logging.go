package rtos

import (
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured-logging facade the kernel writes diagnostics
// through. It is exactly logiface.Logger[*stumpy.Event]; the alias exists
// so callers of this package never need to import logiface or stumpy
// themselves just to pass a Logger to WithStructuredLogger.
type Logger = logiface.Logger[*stumpy.Event]

// logifaceBuilder is the field-builder type passed into diagnostics
// callbacks (the "fields" parameter of warn/info/debug below).
type logifaceBuilder = logiface.Builder[*stumpy.Event]

// NewStumpyLogger builds a Logger backed by stumpy's zero-allocation JSON
// event writer, following the construction pattern used throughout the
// logiface-stumpy package's own examples: stumpy.L.New(stumpy.L.WithStumpy(...)).
func NewStumpyLogger(opts ...stumpy.Option) *Logger {
	return stumpy.L.New(stumpy.L.WithStumpy(opts...))
}

// diagRates throttles repeated WARN-level kernel diagnostics: a producer
// stuck on a full queue, or a thread starving on a contended mutex, ticks
// these events every scheduler tick, which would otherwise flood a log in
// seconds. One window is enough for diagnostics of this shape — at most 5
// of a given category per second.
var diagRates = map[time.Duration]int{
	time.Second: 5,
}

// diagnostics wraps a Logger with a shared catrate.Limiter so that kernel
// code can call warnf-style helpers freely without needing to reason about
// log volume itself.
type diagnostics struct {
	log     *Logger
	limiter *catrate.Limiter
}

func newDiagnostics(log *Logger) *diagnostics {
	if log == nil {
		return nil
	}
	return &diagnostics{
		log:     log,
		limiter: catrate.NewLimiter(diagRates),
	}
}

// warn emits a throttled WARN-level diagnostic for the given category
// (typically a primitive's address or name) if the logger is configured
// and the category's rate limit allows it.
func (d *diagnostics) warn(category any, msg string, fields func(b *logifaceBuilder) *logifaceBuilder) {
	if d == nil {
		return
	}
	if _, ok := d.limiter.Allow(category); !ok {
		return
	}
	b := d.log.Warning()
	if fields != nil {
		b = fields(b)
	}
	b.Log(msg)
}

// info emits an unthrottled INFO-level diagnostic, used for coarse
// lifecycle events (thread registration) that never repeat fast enough to
// need rate limiting.
func (d *diagnostics) info(msg string, fields func(b *logifaceBuilder) *logifaceBuilder) {
	if d == nil {
		return
	}
	b := d.log.Info()
	if fields != nil {
		b = fields(b)
	}
	b.Log(msg)
}

// debug emits an unthrottled DEBUG-level diagnostic for fine-grained
// transitions (timer expiry) useful when tracing a specific scheduling
// anomaly but too noisy for steady-state operation.
func (d *diagnostics) debug(msg string, fields func(b *logifaceBuilder) *logifaceBuilder) {
	if d == nil {
		return
	}
	b := d.log.Debug()
	if fields != nil {
		b = fields(b)
	}
	b.Log(msg)
}
