// Package pool implements the work-assisting worker pool: a fixed set
// of goroutines that each maintain a local LIFO deque of tasks, and
// that publish data-parallel tasks they are running to a shared
// activities registry so an idle worker can join in rather than sit
// parked while others still have chunks left.
//
// The registry departs from the source's lock-free tagged-pointer
// design: each slot is guarded by its own sync.Mutex rather than a CAS
// loop over a packed pointer+generation word, because the standard
// library has no equivalent primitive and Go's GC removes the need for
// one (there is no freed-task-pointer-reuse hazard to guard against
// with a generation tag). Locking a slot to claim-and-increment and
// locking the same slot to remove-on-empty makes "an assist starts"
// and "the task is retired" mutually exclusive per slot, which is the
// property the tagged pointer was protecting in the first place.
package pool

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/workassisting/scheduler/internal/obslog"
	"github.com/workassisting/scheduler/internal/werrors"
	"github.com/workassisting/scheduler/task"
)

// localDeque is one worker's private LIFO task queue. Only its owner
// pops from it, and only its owner's PushTask (when a finish_fn or
// work_fn chains a follow-up task) appends to it; Run seeds worker 0's
// deque with the initial task before any worker starts.
type localDeque struct {
	mu    sync.Mutex
	items []*task.Task
}

func (d *localDeque) push(t *task.Task) {
	d.mu.Lock()
	d.items = append(d.items, t)
	d.mu.Unlock()
}

func (d *localDeque) pop() (*task.Task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.items)
	if n == 0 {
		return nil, false
	}
	t := d.items[n-1]
	d.items = d.items[:n-1]
	return t, true
}

// activitySlot holds at most one currently-running data-parallel task
// that other workers may assist.
type activitySlot struct {
	mu   sync.Mutex
	task *task.Task
}

// Pool is a fixed-size work-assisting scheduler. The zero value is not
// usable; construct with NewPool.
type Pool struct {
	numWorkers int
	deques     []localDeque
	slots      []activitySlot

	finished atomic.Bool

	log *slog.Logger
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithLogger overrides the pool's structured logger (default: obslog.New()).
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) { p.log = l }
}

// NewPool builds a pool of numWorkers workers. numWorkers below 1 is
// clamped to 1 — a pool with no workers could never make progress.
func NewPool(numWorkers int, opts ...Option) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	p := &Pool{
		numWorkers: numWorkers,
		deques:     make([]localDeque, numWorkers),
		slots:      make([]activitySlot, numWorkers),
		log:        obslog.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run starts the pool's workers, seeds worker 0 with initial, and
// blocks until some task's finish_fn calls Finish. It returns a
// non-nil error wrapping werrors.ErrKernelPanic if any work_fn or
// finish_fn panicked during the run.
func (p *Pool) Run(initial *task.Task) error {
	return p.run(initial, nil)
}

// RunOn behaves like Run but additionally pins worker i to CPU cpus[i].
// It returns werrors.ErrAffinityUnavailable without starting any
// worker if fewer CPU ids are supplied than the pool has workers.
func (p *Pool) RunOn(initial *task.Task, cpus []int) error {
	if len(cpus) < p.numWorkers {
		return werrors.ErrAffinityUnavailable
	}
	return p.run(initial, cpus)
}

func (p *Pool) run(initial *task.Task, cpus []int) error {
	p.deques[0].push(initial)

	var g errgroup.Group
	for i := 0; i < p.numWorkers; i++ {
		idx := i
		g.Go(func() error {
			if cpus != nil {
				runtime.LockOSThread()
				defer runtime.UnlockOSThread()
				if err := setAffinity(cpus[idx]); err != nil {
					p.log.Warn("cpu affinity unavailable", "cpu", cpus[idx], "err", err)
				}
			}
			return p.workerLoop(idx)
		})
	}
	return g.Wait()
}

func (p *Pool) workerLoop(idx int) error {
	h := workerHandle{pool: p, idx: idx}
	var bo backoff
	for {
		if t, ok := p.deques[idx].pop(); ok {
			if err := p.adopt(h, t, true); err != nil {
				return err
			}
			bo.reset()
			continue
		}
		if t, ok := p.findAssist(idx); ok {
			if err := p.adopt(h, t, false); err != nil {
				return err
			}
			bo.reset()
			continue
		}
		if p.finished.Load() {
			return nil
		}
		bo.wait()
	}
}

// adopt runs t on behalf of worker h, recovering a panicking work_fn
// or finish_fn into a returned KernelPanic error and tearing the whole
// pool down rather than let one goroutine's panic crash the process
// silently while its siblings spin forever. errgroup.Group.Wait
// surfaces whichever worker's error arrives first.
func (p *Pool) adopt(h workerHandle, t *task.Task, initiator bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("kernel function panicked", "recovered", r, "worker", h.idx)
			err = fmt.Errorf("%w: %v", werrors.ErrKernelPanic, r)
			p.finished.Store(true)
		}
	}()

	switch t.Kind() {
	case task.KindSingle:
		t.FinishFn()(h, t)

	case task.KindDataParallel:
		var args task.LoopArguments
		if initiator {
			p.publish(t)
			args = t.InitiatorLoopArguments()
		} else {
			// findAssist already counted this worker in, under the slot lock.
			args = t.AssistantLoopArguments()
		}
		t.WorkFn()(h, t, args)
		if t.MarkWorkerLeft() == 0 {
			t.FinishFn()(h, t)
		}
	}
	return nil
}

// publish makes t visible to findAssist in the first free slot. If
// every slot is occupied, t simply runs un-assisted — with one slot
// per worker this only happens when every other worker is itself the
// initiator of a different data-parallel task.
func (p *Pool) publish(t *task.Task) {
	for i := range p.slots {
		s := &p.slots[i]
		s.mu.Lock()
		if s.task == nil {
			idx := i
			t.SetOnEmpty(func() { p.removeSlot(idx) })
			s.task = t
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
	}
}

func (p *Pool) removeSlot(i int) {
	s := &p.slots[i]
	s.mu.Lock()
	s.task = nil
	s.mu.Unlock()
}

// findAssist scans slots starting just past the caller's own index so
// workers fan out across distinct tasks instead of piling onto
// whichever task occupies slot 0.
func (p *Pool) findAssist(selfIdx int) (*task.Task, bool) {
	n := len(p.slots)
	for off := 0; off < n; off++ {
		i := (selfIdx + 1 + off) % n
		s := &p.slots[i]
		s.mu.Lock()
		if s.task != nil {
			t := s.task
			t.MarkAssistStarted()
			s.mu.Unlock()
			return t, true
		}
		s.mu.Unlock()
	}
	return nil, false
}

// workerHandle is the task.Submitter a work_fn/finish_fn sees: push
// onto the calling worker's own deque, or signal the whole run done.
type workerHandle struct {
	pool *Pool
	idx  int
}

func (h workerHandle) PushTask(t *task.Task) {
	h.pool.deques[h.idx].push(t)
}

func (h workerHandle) Finish() {
	h.pool.finished.Store(true)
}
