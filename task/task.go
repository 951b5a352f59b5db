// Package task implements the scheduler core's task descriptor and the
// per-worker work-loop protocol that claims chunks from it. A Task is
// either a single-function task (no work_fn, finish_fn runs once on
// adoption) or a data-parallel task whose work_size is striped across
// one or more atomic counters so several workers can claim chunks from
// it concurrently.
//
// Lifetime: a *Task is never copied and never deallocated explicitly.
// Go's GC retires the "manual lifetime" problem of the source this
// package is ported from, but the *correctness* protocol — finish_fn
// runs exactly once, only after every worker that entered the task has
// left — survives the port unchanged, because the GC does not
// serialize "last worker leaves" with "finish_fn runs" on its own.
package task

import (
	"sync"
	"sync/atomic"

	"github.com/workassisting/scheduler/internal/werrors"
)

// Kind distinguishes the two task shapes named in the spec.
type Kind int

const (
	KindSingle Kind = iota
	KindDataParallel
)

// Submitter is the narrow slice of the worker pool a work_fn/finish_fn
// needs: push a follow-up task, or signal global completion. Defined
// here (not in package pool) so this package never imports pool —
// pool.Pool satisfies this interface implicitly.
type Submitter interface {
	// PushTask pushes t onto the calling worker's local deque. A
	// data-parallel t is not published to the activities registry while
	// it waits there; it is published when a worker adopts it from the
	// deque, and other workers can assist from then on.
	PushTask(t *Task)
	// Finish signals that there is nothing more to do; the pool's Run
	// call returns once every worker observes this.
	Finish()
}

// WorkFn is invoked once per worker that enters a data-parallel task
// (whether as initiator or as an assist). It is expected to drive
// task.WorkLoop itself with the supplied LoopArguments.
type WorkFn func(sub Submitter, t *Task, args LoopArguments)

// FinishFn is invoked exactly once, after every worker that entered
// the task has left it. It takes conceptual ownership of the task: it
// must call sub.Finish() or sub.PushTask(next), exactly once.
type FinishFn func(sub Submitter, t *Task)

// StripingParams is the "scheduler parameter tuple" controlling how a
// data-parallel task's work_size is spread over atomics.
type StripingParams struct {
	// AtomicsMax caps the number of stripes (A_MAX in the spec).
	AtomicsMax int
	// MinChunksPerAtomic is the minimum stripe length (MIN_CHUNKS).
	MinChunksPerAtomic int
}

// Task is the heap-owned task descriptor. All fields are unexported;
// workers interact with it through the methods below (Data among them)
// and through WorkLoop.
type Task struct {
	kind     Kind
	workFn   WorkFn
	finishFn FinishFn

	workSize   uint32
	atomics    []atomic.Uint32
	stripeEnds []uint32
	rotor      atomic.Uint32

	// activeThreads counts live workers on this task. It is
	// initialized to 1 at construction time (the initiator is counted
	// as "started" before the task is ever published to a pool's
	// activities registry — see spec Open Questions). Every assist
	// increments it by one on entry; every departing worker decrements
	// it by one. finish_fn runs exactly once, driven by whichever
	// decrement returns zero.
	activeThreads atomic.Int32

	emptyOnce sync.Once
	onEmpty   func()

	data any
}

// distribute spreads x chunks over n stripes as evenly as possible:
// the first x mod n stripes get one extra chunk.
func distribute(x uint32, n int) []uint32 {
	result := make([]uint32, n)
	base := x / uint32(n)
	rem := int(x % uint32(n))
	for i := range result {
		result[i] = base
		if i < rem {
			result[i]++
		}
	}
	return result
}

// NewDataParallel builds a data-parallel task over work_size chunks,
// striped across clamp(1, min(params.AtomicsMax, work_size /
// params.MinChunksPerAtomic)) atomics — the "latest shape" the source's
// several revisions converge on. Chunk index 0 (stripe 0's first
// index) is reserved for whichever worker becomes this task's
// initiator, by pre-advancing atomics[0] past it.
func NewDataParallel(workFn WorkFn, finishFn FinishFn, data any, workSize uint32, params StripingParams) (*Task, error) {
	if workSize == 0 {
		return nil, werrors.ErrInvalidWorkSize
	}

	atomicsMax := params.AtomicsMax
	if atomicsMax < 1 {
		atomicsMax = 1
	}
	minChunks := params.MinChunksPerAtomic
	if minChunks < 1 {
		minChunks = 1
	}

	k := int(workSize) / minChunks
	if k > atomicsMax {
		k = atomicsMax
	}
	if k < 1 {
		k = 1
	}

	lengths := distribute(workSize, k)
	atomics := make([]atomic.Uint32, k)
	stripeEnds := make([]uint32, k)

	var idx uint32
	for i, length := range lengths {
		atomics[i].Store(idx)
		idx += length
		stripeEnds[i] = idx
	}
	atomics[0].Store(1)

	t := &Task{
		kind:       KindDataParallel,
		workFn:     workFn,
		finishFn:   finishFn,
		workSize:   workSize,
		atomics:    atomics,
		stripeEnds: stripeEnds,
		data:       data,
	}
	t.activeThreads.Store(1)
	return t, nil
}

// NewSingle builds a single-function task: no work_fn, finish_fn runs
// once by whichever worker adopts it from a deque.
func NewSingle(finishFn FinishFn, data any) *Task {
	return &Task{
		kind:     KindSingle,
		finishFn: finishFn,
		data:     data,
	}
}

func (t *Task) Kind() Kind         { return t.kind }
func (t *Task) WorkFn() WorkFn     { return t.workFn }
func (t *Task) FinishFn() FinishFn { return t.finishFn }
func (t *Task) WorkSize() uint32   { return t.workSize }
func (t *Task) Data() any          { return t.data }

// SetOnEmpty registers the callback the pool runs exactly once, the
// first time any worker observes this task's chunks fully claimed. It
// is used to remove the task from the pool's activities registry so no
// further assist can race with finish.
func (t *Task) SetOnEmpty(fn func()) { t.onEmpty = fn }

// MarkAssistStarted records one more worker entering this task via
// assist (as opposed to via local-deque adoption, which already
// accounts for the initiator in activeThreads' initial value of 1).
func (t *Task) MarkAssistStarted() { t.activeThreads.Add(1) }

// MarkWorkerLeft records a worker leaving this task's loop (empty
// signal observed or rotation exhausted) and returns the resulting
// live-worker count. The caller must run finish_fn exactly once, when
// this returns zero.
func (t *Task) MarkWorkerLeft() int32 { return t.activeThreads.Add(-1) }
