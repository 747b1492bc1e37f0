package rtos

import "errors"

// Sentinel errors for structural misuse the kernel can actually detect at
// runtime. Returned unwrapped, so callers compare them with errors.Is,
// following the teacher's errors.go convention of plain package-level Err*
// values.
var (
	// ErrAlreadyRunning is returned by Scheduler.Run if called more than
	// once on the same Scheduler.
	ErrAlreadyRunning = errors.New("rtos: scheduler already running")

	// ErrAddAfterRun is returned by Scheduler.Add once Run has started;
	// threads must be registered before the scheduler begins dispatching.
	ErrAddAfterRun = errors.New("rtos: cannot add thread after scheduler is running")

	// ErrQueueClosed is returned by Queue operations on a queue that has
	// been closed via Queue.Close.
	ErrQueueClosed = errors.New("rtos: queue closed")
)

// QueueCode is the ISR-context return value for Queue's *ISR byte
// operations: ISR code cannot be handed a Go error conventionally without
// tempting an ISR author into allocating or formatting one, so the kernel
// mirrors the original's three-way enum directly.
type QueueCode int8

const (
	// QueueError indicates the operation could not complete: the queue
	// was full (on a put) or empty (on a get).
	QueueError QueueCode = iota
	// QueueDoYield indicates success, and that a higher-priority thread
	// was unblocked as a result; the ISR epilogue should yield.
	QueueDoYield
	// QueueDoNotYield indicates success with no higher-priority thread
	// unblocked; no yield is necessary.
	QueueDoNotYield
)

func (c QueueCode) String() string {
	switch c {
	case QueueError:
		return "QueueError"
	case QueueDoYield:
		return "QueueDoYield"
	case QueueDoNotYield:
		return "QueueDoNotYield"
	default:
		return "QueueCode(?)"
	}
}
