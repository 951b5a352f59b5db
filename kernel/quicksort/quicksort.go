// Package quicksort implements a three-tier quicksort: below
// SequentialCutoff elements, a leaf task sorts in place with no
// further task creation; below DataParCutoff, a single task performs
// one in-place Hoare partition and spawns one task-parallel
// recursive call per non-trivial side; at or above DataParCutoff, a
// data-parallel task partitions the array by pivot across chunks
// claimed from the scheduler core, each chunk locally bucketing its
// elements and then reserving its slice of the shared output with one
// atomic fetch_add that simultaneously advances both a "elements
// placed on the left" and "elements placed on the right" cursor
// packed into a single word.
//
// Every level below DataParCutoff is not in place in the classic
// sense: it sorts out of whichever buffer it was hijacked into by a
// data-parallel ancestor (or the caller's chosen output buffer, for
// the very first level, if the input itself started below
// DataParCutoff) and copies once, never again. Two buffers are
// enough because each data-parallel level swaps which one is
// "input" and which is "output", and nothing below that tier ever
// needs a second buffer again.
package quicksort

import (
	"errors"
	"sync/atomic"

	"github.com/workassisting/scheduler/task"
)

// BlockSize is the number of elements one partition chunk covers by
// default (the pivot at index 0 is excluded from chunking). A
// data-parallel task's chunkSize divides it down, the same role
// CHUNK_DIV plays in original_source/src/cases/quicksort.rs's
// parallel_partition_chunk.
const BlockSize = 4096

// effectiveBlockSize divides BlockSize by chunkSize, clamped so
// neither a non-positive chunkSize nor a chunkSize exceeding BlockSize
// ever produces a zero-length chunk.
func effectiveBlockSize(chunkSize int) int {
	if chunkSize < 1 {
		chunkSize = 1
	}
	size := BlockSize / chunkSize
	if size < 1 {
		size = 1
	}
	return size
}

// DataParCutoff is the array length at or above which CreateTask uses
// the data-parallel partition tier.
const DataParCutoff = 1024 * 32

// SequentialCutoff is the array length below which CreateTask uses
// the no-further-tasks leaf tier.
const SequentialCutoff = 1024 * 8

var errLengthMismatch = errors.New("quicksort: input and output must have equal length")

// countRecursiveCalls reports how many of a partition's two sides are
// non-trivial (more than one element) and therefore need a follow-up
// task: 0, 1, or 2. pivotIndex is the number of elements placed to
// the left of the pivot.
func countRecursiveCalls(length, pivotIndex int) int {
	count := 0
	if pivotIndex > 1 {
		count++
	}
	if length-pivotIndex > 2 {
		count++
	}
	return count
}

// applyPendingDelta updates the shared outstanding-task counter after
// one partition finishes, using countRecursiveCalls to predict how
// many follow-up tasks CreateTask is about to actually produce: two
// non-trivial sides need one more outstanding slot than this finishing
// task already held; zero non-trivial sides means this was the last
// slot for this subtree, so it is released; exactly one non-trivial
// side is a straight replacement and needs no adjustment.
func applyPendingDelta(pending *atomic.Int64, sub task.Submitter, length, pivotIndex int) {
	switch countRecursiveCalls(length, pivotIndex) {
	case 2:
		pending.Add(1)
	case 0:
		if pending.Add(-1) == 0 {
			sub.Finish()
		}
	}
}

func hoarePartition(a []uint32) int {
	pivot := a[0]
	left, right := 1, len(a)-1
	for {
		for left < len(a) && a[left] < pivot {
			left++
		}
		for right > 0 && a[right] >= pivot {
			right--
		}
		if left >= right {
			break
		}
		a[left], a[right] = a[right], a[left]
		left++
		right--
	}
	a[0], a[right] = a[right], a[0]
	return right
}

func sequentialSort(a []uint32) {
	if len(a) <= 1 {
		return
	}
	right := hoarePartition(a)
	sequentialSort(a[:right])
	sequentialSort(a[right+1:])
}

// CreateTask builds the task that sorts input into output. flipped
// tracks which of the two physical buffers currently holds the data
// to be sorted: false means input is the buffer the caller originally
// handed in (so a copy into output is still owed, the first time this
// subtree drops below DataParCutoff); true means a previous
// data-parallel level already wrote this subtree's data into input,
// so output is free scratch this call has no further use for.
//
// It returns (nil, nil) for a trivial input (length 0 or 1) — matching
// the source's Option<Task>::None — after copying the single element
// across if a copy was still owed. Callers driving a whole sort should
// use CreateEntryTask, which turns that nil into a task that finishes
// immediately.
func CreateTask(params task.StripingParams, chunkSize int, pending *atomic.Int64, input, output []uint32, flipped bool) (*task.Task, error) {
	if len(input) != len(output) {
		return nil, errLengthMismatch
	}
	n := len(input)
	if n == 0 {
		return nil, nil
	}
	if n == 1 {
		if !flipped {
			output[0] = input[0]
		}
		return nil, nil
	}
	if n < SequentialCutoff {
		return createLeafTask(pending, input, output, flipped), nil
	}
	if n < DataParCutoff {
		return createPartitionTask(params, chunkSize, pending, input, output, flipped), nil
	}
	return createDataParallelTask(params, chunkSize, pending, input, output, flipped)
}

// CreateEntryTask is the top-level call a caller driving a whole sort
// should use: it seeds the shared pending-task counter to 1 (the one
// outstanding task this call itself represents) and always returns a
// runnable task, even for a trivial input. chunkSize is the CHUNK_DIV
// divisor the data-parallel tier applies to BlockSize; pass a
// scheduler.Facade's ChunkSize() here.
func CreateEntryTask(params task.StripingParams, chunkSize int, input, output []uint32) (*task.Task, error) {
	pending := &atomic.Int64{}
	pending.Store(1)
	t, err := CreateTask(params, chunkSize, pending, input, output, false)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return task.NewSingle(func(sub task.Submitter, _ *task.Task) { sub.Finish() }, nil), nil
	}
	return t, nil
}

func createLeafTask(pending *atomic.Int64, input, output []uint32, flipped bool) *task.Task {
	return task.NewSingle(func(sub task.Submitter, _ *task.Task) {
		var arr []uint32
		if flipped {
			arr = input
		} else {
			copy(output, input)
			arr = output
		}
		sequentialSort(arr)
		if pending.Add(-1) == 0 {
			sub.Finish()
		}
	}, nil)
}

func createPartitionTask(params task.StripingParams, chunkSize int, pending *atomic.Int64, input, output []uint32, flipped bool) *task.Task {
	return task.NewSingle(func(sub task.Submitter, _ *task.Task) {
		var arr []uint32
		if flipped {
			arr = input
		} else {
			copy(output, input)
			arr = output
		}
		right := hoarePartition(arr)
		applyPendingDelta(pending, sub, len(arr), right)

		for _, seg := range [2][2]int{{0, right}, {right + 1, len(arr)}} {
			side := arr[seg[0]:seg[1]]
			next, err := CreateTask(params, chunkSize, pending, side, side, true)
			if err != nil {
				panic(err)
			}
			if next != nil {
				sub.PushTask(next)
			}
		}
	}, nil)
}

type partitionData struct {
	input, output []uint32
	pivot         uint32
	counters      atomic.Uint64
	pending       *atomic.Int64
	flipped       bool
	params        task.StripingParams
	chunkSize     int
	blockSize     int
}

func createDataParallelTask(params task.StripingParams, chunkSize int, pending *atomic.Int64, input, output []uint32, flipped bool) (*task.Task, error) {
	n := len(input)
	blockSize := effectiveBlockSize(chunkSize)
	numChunks := (n - 1 + blockSize - 1) / blockSize
	d := &partitionData{input: input, output: output, pivot: input[0], pending: pending, flipped: flipped, params: params, chunkSize: chunkSize, blockSize: blockSize}
	return task.NewDataParallel(d.run, d.finish, d, uint32(numChunks), params)
}

func (d *partitionData) run(sub task.Submitter, t *task.Task, args task.LoopArguments) {
	task.WorkLoop(args, func(chunkIndex uint32) {
		partitionChunk(d.input, d.output, d.pivot, &d.counters, int(chunkIndex), d.blockSize)
	})
}

// partitionChunk buckets one chunk's elements (excluding the pivot at
// index 0) into "less than pivot" and "at least pivot", local to a
// chunk-sized buffer, then reserves its slice of both ends of
// output with a single fetch_add packing both counts into one word —
// the left count in the low 32 bits, the right count in the high 32
// bits — before copying its bucketed elements into their reserved
// slices. blockSize is BlockSize already divided by the task's
// chunkSize (effectiveBlockSize).
func partitionChunk(input, output []uint32, pivot uint32, counters *atomic.Uint64, chunkIndex, blockSize int) {
	start := 1 + chunkIndex*blockSize
	end := start + blockSize
	if end > len(input) {
		end = len(input)
	}
	if start >= end {
		return
	}
	chunkLen := end - start

	values := make([]uint32, chunkLen)
	leftCount := 0
	for i := 0; i < chunkLen; i++ {
		v := input[start+i]
		if v < pivot {
			values[leftCount] = v
			leftCount++
		} else {
			dest := chunkLen - (i - leftCount) - 1
			values[dest] = v
		}
	}
	rightCount := chunkLen - leftCount

	delta := uint64(rightCount)<<32 | uint64(leftCount)
	prev := counters.Add(delta) - delta
	leftOffset := int(prev & 0xFFFFFFFF)
	rightOffset := len(input) - rightCount - int(prev>>32)

	copy(output[leftOffset:leftOffset+leftCount], values[:leftCount])
	copy(output[rightOffset:rightOffset+rightCount], values[leftCount:chunkLen])
}

func (d *partitionData) finish(sub task.Submitter, t *task.Task) {
	counters := d.counters.Load()
	countLeft := int(counters & 0xFFFFFFFF)

	pivotDest := d.output
	if d.flipped {
		pivotDest = d.input
	}
	pivotDest[countLeft] = d.pivot

	applyPendingDelta(d.pending, sub, len(d.input), countLeft)

	n := len(d.input)
	for _, seg := range [2][2]int{{0, countLeft}, {countLeft + 1, n}} {
		from, to := seg[0], seg[1]
		nextIn := d.output[from:to]
		nextOut := d.input[from:to]
		next, err := CreateTask(d.params, d.chunkSize, d.pending, nextIn, nextOut, !d.flipped)
		if err != nil {
			panic(err)
		}
		if next != nil {
			sub.PushTask(next)
		}
	}
}
