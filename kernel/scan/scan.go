// Package scan implements block-partitioned inclusive prefix scan
// using the decoupled-lookback protocol from package lookback: each
// block takes the direct sequential fast path once its predecessor's
// prefix is available, or folds its own elements and walks backwards
// for an aggregate when it is not, and — once any block in a task's
// pass has taken the fold path — every later block in that same
// worker's pass does too, never reverting to direct-scan.
//
// Combine must be associative; Zero must be its identity. The
// concrete instantiation grounding this package computes a running
// sum (Combine = addition, Zero = 0), but nothing here is
// sum-specific.
package scan

import (
	"github.com/workassisting/scheduler/lookback"
	"github.com/workassisting/scheduler/task"
)

// BlockSize is the number of input elements one block covers.
const BlockSize = 2048

// Combine combines an accumulated value with the next element (or
// block aggregate). It must be associative.
type Combine func(acc, next uint64) uint64

func foldSequential(combine Combine, zero uint64, input []uint64) uint64 {
	acc := zero
	for _, v := range input {
		acc = combine(acc, v)
	}
	return acc
}

// scanSequential writes an inclusive scan of input into output,
// starting from start, and returns the final accumulated value.
func scanSequential(combine Combine, input []uint64, start uint64, output []uint64) uint64 {
	acc := start
	for i, v := range input {
		acc = combine(acc, v)
		output[i] = acc
	}
	return acc
}

// Pass is one input/output array pair in a chained sequence of scans.
type Pass struct {
	Input  []uint64
	Output []uint64
}

type data struct {
	combine Combine
	zero    uint64
	params  task.StripingParams
	passes  []Pass
	temps   lookback.Blocks[uint64]
}

func numBlocks(n int) int {
	return (n + BlockSize - 1) / BlockSize
}

// CreateTask builds a data-parallel task scanning passes[0], chaining
// to the remaining passes — each as its own follow-up task, so an
// assist on pass N never blocks pass N+1 from starting once pass N's
// finish_fn runs — via finish_fn. At least one pass is required, and
// every pass's Input must be non-empty.
func CreateTask(params task.StripingParams, combine Combine, zero uint64, passes []Pass) (*task.Task, error) {
	temps := lookback.NewBlocks[uint64](numBlocks(len(passes[0].Input)))
	return createTask(params, combine, zero, passes, temps)
}

func createTask(params task.StripingParams, combine Combine, zero uint64, passes []Pass, temps lookback.Blocks[uint64]) (*task.Task, error) {
	temps.Reset()
	d := &data{combine: combine, zero: zero, params: params, passes: passes, temps: temps}
	return task.NewDataParallel(d.run, d.finish, d, uint32(numBlocks(len(passes[0].Input))), params)
}

func (d *data) run(sub task.Submitter, t *task.Task, args task.LoopArguments) {
	input := d.passes[0].Input
	output := d.passes[0].Output
	sequential := true

	task.WorkLoop(args, func(blockIndex uint32) {
		start := int(blockIndex) * BlockSize
		end := start + BlockSize
		if end > len(input) {
			end = len(input)
		}

		var aggregateStart uint64
		direct := false
		switch {
		case !sequential:
			// never revert to direct-scan once this worker has gone parallel
		case blockIndex == 0:
			aggregateStart, direct = d.zero, true
		case d.temps[blockIndex-1].State() == lookback.StatePrefixAvailable:
			aggregateStart, direct = d.temps[blockIndex-1].Prefix(), true
		}

		if direct {
			local := scanSequential(d.combine, input[start:end], aggregateStart, output[start:end])
			d.temps[blockIndex].PublishPrefix(local)
			return
		}

		sequential = false
		local := foldSequential(d.combine, d.zero, input[start:end])
		d.temps[blockIndex].PublishAggregate(local)

		aggregate := lookback.LookBack(d.temps, int(blockIndex), d.zero, d.combine)
		d.temps[blockIndex].PublishPrefix(d.combine(aggregate, local))
		scanSequential(d.combine, input[start:end], aggregate, output[start:end])
	})
}

func (d *data) finish(sub task.Submitter, t *task.Task) {
	if len(d.passes) == 1 {
		sub.Finish()
		return
	}
	next, err := CreateTask(d.params, d.combine, d.zero, d.passes[1:])
	if err != nil {
		// Only reachable if a chained pass's Input is empty, which is a
		// caller contract violation (every pass must be non-empty), not
		// a runtime condition this kernel's own chaining can produce.
		panic(err)
	}
	sub.PushTask(next)
}
