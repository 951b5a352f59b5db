// Package werrors collects the sentinel errors shared across the
// scheduler core. None of these are recoverable by the runtime itself;
// they document the error taxonomy a caller needs to check for.
package werrors

import "errors"

var (
	// ErrInvalidWorkSize is returned by task.NewDataParallel when
	// work_size == 0. Callers must filter empty inputs themselves.
	ErrInvalidWorkSize = errors.New("workassisting: data-parallel task requires work_size > 0")

	// ErrDoubleFinish names the condition of a finish_fn observer
	// driving the active-thread count below zero. No code in this
	// module checks for that condition or returns this error, in any
	// build.
	ErrDoubleFinish = errors.New("workassisting: finish invoked more than once for a task")

	// ErrAffinityUnavailable is returned when RunOn is given fewer CPU
	// ids than the pool has workers. A CPU id that cannot be pinned is
	// logged by the pool, not returned.
	ErrAffinityUnavailable = errors.New("workassisting: requested CPU affinity is not available")

	// ErrKernelPanic wraps a recovered panic from a work_fn or
	// finish_fn. The pool that observed it is poisoned and must not be
	// reused.
	ErrKernelPanic = errors.New("workassisting: kernel function panicked")
)
