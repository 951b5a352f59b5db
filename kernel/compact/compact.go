// Package compact implements block-partitioned stream compaction
// (filter-and-pack) using the same decoupled-lookback protocol as
// package scan: each block counts how many of its elements satisfy a
// predicate (or, once sequential, knows directly where to start
// writing from its predecessor's published prefix), and walks
// backwards for an aggregate write-offset when it cannot take the
// direct path. Where scan accumulates a reduced value, compact
// accumulates a write cursor: a block's prefix is the number of
// matches in that block and every block before it, doubling as the
// index the next block's matches start at in the shared output.
package compact

import (
	"errors"
	"sync/atomic"

	"github.com/workassisting/scheduler/lookback"
	"github.com/workassisting/scheduler/task"
)

var errEmptyPasses = errors.New("compact: at least one pass is required")

// BlockSize is the number of input elements one block covers.
const BlockSize = 4096

// Predicate selects which elements survive compaction.
type Predicate func(v uint64) bool

// MaskPredicate builds the predicate this package is grounded on: a
// cheap avalanche (xorshift-style) hash of v, gated against mask. It
// exists so kernel callers and tests can reproduce the same
// selectivity profile without depending on a specific data
// distribution.
func MaskPredicate(mask uint64) Predicate {
	return func(v uint64) bool {
		v ^= v >> 11
		v ^= v << 7
		v ^= v >> 5
		return v&mask == mask
	}
}

func countSequential(pred Predicate, input []uint64) uint64 {
	var n uint64
	for _, v := range input {
		if pred(v) {
			n++
		}
	}
	return n
}

// compactSequential writes every element of input satisfying pred
// into output, starting at index start, and returns the new cursor
// (start plus the number written).
func compactSequential(pred Predicate, input []uint64, output []uint64, start uint64) uint64 {
	cursor := start
	for _, v := range input {
		if pred(v) {
			output[cursor] = v
			cursor++
		}
	}
	return cursor
}

// Pass is one input/output array pair. Output must be at least as
// long as the number of elements in Input that satisfy the predicate.
type Pass struct {
	Input  []uint64
	Output []uint64
}

func numBlocks(n int) int { return (n + BlockSize - 1) / BlockSize }

type blockData struct {
	pred    Predicate
	input   []uint64
	output  []uint64
	temps   lookback.Blocks[uint64]
	pending *atomic.Int64
}

// createBlockTask builds the single-pass, block-partitioned compaction
// task for one Pass, sharing pending across every pass spawned from
// the same CreateInitialTask call so the whole fan-out finishes
// exactly once.
func createBlockTask(params task.StripingParams, pred Predicate, pass Pass, pending *atomic.Int64) (*task.Task, error) {
	temps := lookback.NewBlocks[uint64](numBlocks(len(pass.Input)))
	d := &blockData{pred: pred, input: pass.Input, output: pass.Output, temps: temps, pending: pending}
	return task.NewDataParallel(d.run, d.finish, d, uint32(numBlocks(len(pass.Input))), params)
}

func (d *blockData) run(sub task.Submitter, t *task.Task, args task.LoopArguments) {
	sequential := true

	task.WorkLoop(args, func(blockIndex uint32) {
		start := int(blockIndex) * BlockSize
		end := start + BlockSize
		if end > len(d.input) {
			end = len(d.input)
		}

		var aggregateStart uint64
		direct := false
		switch {
		case !sequential:
		case blockIndex == 0:
			aggregateStart, direct = 0, true
		case d.temps[blockIndex-1].State() == lookback.StatePrefixAvailable:
			aggregateStart, direct = d.temps[blockIndex-1].Prefix(), true
		}

		if direct {
			local := compactSequential(d.pred, d.input[start:end], d.output, aggregateStart)
			d.temps[blockIndex].PublishPrefix(local)
			return
		}

		sequential = false
		local := countSequential(d.pred, d.input[start:end])
		d.temps[blockIndex].PublishAggregate(local)

		aggregate := lookback.LookBack(d.temps, int(blockIndex), uint64(0), func(a, b uint64) uint64 { return a + b })
		d.temps[blockIndex].PublishPrefix(aggregate + local)
		compactSequential(d.pred, d.input[start:end], d.output, aggregate)
	})
}

func (d *blockData) finish(sub task.Submitter, t *task.Task) {
	if d.pending.Add(-1) == 0 {
		sub.Finish()
	}
}

// initialData is the fan-out task spawning one block-partitioned task
// per Pass. Its own finish contributes nothing beyond what spawning
// the leaves already accomplished — see CreateInitialTask's doc
// comment for the pending-count contract.
type initialData struct {
	params  task.StripingParams
	pred    Predicate
	passes  []Pass
	pending *atomic.Int64
}

// CreateInitialTask builds the entry task for compacting one or more
// independent passes. With a single pass it returns that pass's
// block-partitioned task directly — there is nothing to fan out. With
// several passes it returns a data-parallel fan-out task whose
// work_fn pushes one block-partitioned task per pass; that fan-out
// task's own finish_fn only decrements pending (mirroring the
// source's initial_finish), which here is seeded to len(passes)+1 by
// this function itself — in the source this seeding is the
// benchmark driver's responsibility (pending := array_count + 1,
// before the initial task is ever created); with no driver in this
// repo, CreateInitialTask performs that seeding itself so the
// fan-out's own finish_fn and each leaf's finish_fn can all decrement
// the same counter by exactly one, uniformly.
func CreateInitialTask(params task.StripingParams, pred Predicate, passes []Pass) (*task.Task, error) {
	if len(passes) == 0 {
		return nil, errEmptyPasses
	}
	if len(passes) == 1 {
		pending := &atomic.Int64{}
		pending.Store(1)
		return createBlockTask(params, pred, passes[0], pending)
	}

	pending := &atomic.Int64{}
	pending.Store(int64(len(passes) + 1))
	d := &initialData{params: params, pred: pred, passes: passes, pending: pending}
	return task.NewDataParallel(d.run, d.finish, d, uint32(len(passes)), params)
}

func (d *initialData) run(sub task.Submitter, t *task.Task, args task.LoopArguments) {
	task.WorkLoop(args, func(i uint32) {
		leaf, err := createBlockTask(d.params, d.pred, d.passes[i], d.pending)
		if err != nil {
			// Only reachable for an empty Pass.Input, a caller contract
			// violation CreateInitialTask cannot detect per-pass up front
			// without walking every pass before fanning out.
			panic(err)
		}
		sub.PushTask(leaf)
	})
}

func (d *initialData) finish(sub task.Submitter, t *task.Task) {
	if d.pending.Add(-1) == 0 {
		sub.Finish()
	}
}
