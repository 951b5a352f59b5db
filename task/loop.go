package task

import (
	"sync"
	"sync/atomic"
)

// noFirstIndex marks a LoopArguments that has not yet claimed an entry
// chunk — used by assists, which must claim their first chunk through
// the same rotation path used after a stripe drains.
const noFirstIndex = ^uint32(0)

// EmptySignal is the single-shot "no more chunks remain" notification.
// It must be raised exactly once per task; subsequent raises are
// no-ops. Raising it removes the task from the pool's activities
// registry (via the onEmpty callback); sync.Once's blocking semantics
// for concurrent callers guarantee that removal happens-before every
// caller's Raise returns, which is what lets a worker's subsequent
// MarkWorkerLeft decrement safely observe "removed, therefore safe to
// finish at zero".
type EmptySignal struct {
	once    *sync.Once
	onEmpty func()
}

// Raise signals task-drained. Safe to call from every worker that
// enters the task's loop; only the first call's effect runs.
func (e EmptySignal) Raise() {
	if e.once == nil {
		return
	}
	e.once.Do(func() {
		if e.onEmpty != nil {
			e.onEmpty()
		}
	})
}

// LoopArguments carries everything a worker needs to claim and migrate
// between a data-parallel task's stripes.
type LoopArguments struct {
	Atomics       []atomic.Uint32
	StripeEnds    []uint32
	Rotor         *atomic.Uint32
	Empty         EmptySignal
	FirstIndex    uint32
	CurrentStripe int
}

// InitiatorLoopArguments is handed to the worker that adopts this task
// straight from a local deque: it is entitled to the chunk index
// reserved at construction time (stripe 0, index 0).
func (t *Task) InitiatorLoopArguments() LoopArguments {
	return LoopArguments{
		Atomics:       t.atomics,
		StripeEnds:    t.stripeEnds,
		Rotor:         &t.rotor,
		Empty:         t.newEmptySignal(),
		FirstIndex:    0,
		CurrentStripe: 0,
	}
}

// AssistantLoopArguments is handed to a worker that entered this task
// via the activities registry: it has no reserved chunk and must claim
// its first one through the same rotation path as a post-drain
// migration.
func (t *Task) AssistantLoopArguments() LoopArguments {
	return LoopArguments{
		Atomics:       t.atomics,
		StripeEnds:    t.stripeEnds,
		Rotor:         &t.rotor,
		Empty:         t.newEmptySignal(),
		FirstIndex:    noFirstIndex,
		CurrentStripe: -1,
	}
}

func (t *Task) newEmptySignal() EmptySignal {
	return EmptySignal{once: &t.emptyOnce, onEmpty: t.onEmpty}
}

// WorkLoop is the per-chunk claim/migrate/drain protocol: execute body
// on the current chunk, fetch_add the owning stripe's atomic, continue
// while still in range, else rotate to the stripe the shared rotor
// picks next. After as many consecutive failed claims as there are
// stripes, raise Empty and return. All fetch_adds use relaxed ordering — correctness follows
// from each chunk being handed out at most once, not from any ordering
// between chunks.
func WorkLoop(args LoopArguments, body func(chunkIndex uint32)) {
	n := len(args.StripeEnds)

	stripe := args.CurrentStripe
	chunkIdx := args.FirstIndex
	if chunkIdx == noFirstIndex {
		stripe = int(args.Rotor.Add(1)-1) % n
		chunkIdx = args.Atomics[stripe].Add(1) - 1
	}

	emptyRotations := 0
	for {
		if chunkIdx < args.StripeEnds[stripe] {
			body(chunkIdx)
			chunkIdx = args.Atomics[stripe].Add(1) - 1
			emptyRotations = 0
			continue
		}

		emptyRotations++
		if emptyRotations >= n {
			break
		}
		stripe = int(args.Rotor.Add(1)-1) % n
		chunkIdx = args.Atomics[stripe].Add(1) - 1
	}

	args.Empty.Raise()
}
