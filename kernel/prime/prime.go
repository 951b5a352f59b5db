// Package prime counts primes in a half-open range [first, first+length)
// as a data-parallel task striped over fixed-size sub-ranges. It
// exists to exercise the scheduler core with a workload whose
// per-element cost is data-dependent (trial division runs longer on
// some numbers than others), the opposite texture from sumarray's
// uniform per-element cost.
package prime

import (
	"sync/atomic"

	"github.com/workassisting/scheduler/task"
)

// BlockSize is the number of candidates one chunk of the data-parallel
// task covers.
const BlockSize = 32

// Counter accumulates one worker-local partial count per chunk batch,
// added in with a single fetch_add per worker rather than one per
// chunk.
type Counter struct{ n atomic.Int64 }

func (c *Counter) add(v int64) { c.n.Add(v) }

// Count returns the accumulated total.
func (c *Counter) Count() int64 { return c.n.Load() }

// isPrime is a plain trial-division primality test — deliberately the
// simplest correct implementation, since the point of this kernel is
// to exercise chunk claiming under uneven per-candidate cost, not to
// showcase a fast primality test.
func isPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := uint64(3); d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}

type rangeData struct {
	counter *Counter
	first   uint64
	length  uint64
}

// CreateTask builds a data-parallel task counting primes in
// [first, first+length) and adding the result into counter. finish is
// invoked once the count is final; a caller that only wants the plain
// count should have it call sub.Finish().
func CreateTask(params task.StripingParams, counter *Counter, first, length uint64, finish task.FinishFn) (*task.Task, error) {
	numBlocks := (length + BlockSize - 1) / BlockSize
	d := &rangeData{counter: counter, first: first, length: length}
	return task.NewDataParallel(d.work, finish, d, uint32(numBlocks), params)
}

func (d *rangeData) work(sub task.Submitter, t *task.Task, args task.LoopArguments) {
	var localCount int64
	upper := d.first + d.length
	task.WorkLoop(args, func(chunkIndex uint32) {
		from := d.first + uint64(chunkIndex)*BlockSize
		to := from + BlockSize
		if to > upper {
			to = upper
		}
		var blockCount int64
		for n := from; n < to; n++ {
			if isPrime(n) {
				blockCount++
			}
		}
		localCount += blockCount
	})
	d.counter.add(localCount)
}
