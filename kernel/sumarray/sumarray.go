// Package sumarray sums a []uint64 as a data-parallel task striped
// over fixed-size sub-ranges — the scheduler's uniform-cost-per-element
// workload, used as a baseline against prime's data-dependent cost.
package sumarray

import (
	"sync/atomic"

	"github.com/workassisting/scheduler/task"
)

// BlockSize is the number of array elements one chunk covers.
const BlockSize = 2048

// Counter accumulates one fetch_add per worker, not per chunk.
type Counter struct{ n atomic.Uint64 }

func (c *Counter) add(v uint64) { c.n.Add(v) }

// Sum returns the accumulated total.
func (c *Counter) Sum() uint64 { return c.n.Load() }

type arrayData struct {
	counter *Counter
	array   []uint64
}

// CreateTask builds a data-parallel task summing array into counter.
func CreateTask(params task.StripingParams, counter *Counter, array []uint64, finish task.FinishFn) (*task.Task, error) {
	numBlocks := (len(array) + BlockSize - 1) / BlockSize
	d := &arrayData{counter: counter, array: array}
	return task.NewDataParallel(d.work, finish, d, uint32(numBlocks), params)
}

func (d *arrayData) work(sub task.Submitter, t *task.Task, args task.LoopArguments) {
	var local uint64
	n := len(d.array)
	task.WorkLoop(args, func(chunkIndex uint32) {
		from := int(chunkIndex) * BlockSize
		to := from + BlockSize
		if to > n {
			to = n
		}
		var blockSum uint64
		for i := from; i < to; i++ {
			blockSum += d.array[i]
		}
		local += blockSum
	})
	d.counter.add(local)
}
