package scheduler

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workassisting/scheduler/task"
)

// runCountingTask builds a count-up-to-n task on f and runs it,
// returning the observed total. Used to check that both scheduler
// variants produce the same result for the same workload — the
// striping width must never change what gets computed, only how many
// workers can help compute it.
func runCountingTask(t *testing.T, f *Facade, n uint32) int64 {
	t.Helper()
	var total atomic.Int64
	workFn := func(sub task.Submitter, tk *task.Task, args task.LoopArguments) {
		var local int64
		task.WorkLoop(args, func(chunkIndex uint32) { local++ })
		total.Add(local)
	}
	finishFn := func(sub task.Submitter, tk *task.Task) { sub.Finish() }

	tk, err := f.NewDataParallel(workFn, finishFn, nil, n)
	require.NoError(t, err)
	require.NoError(t, f.Run(tk))
	return total.Load()
}

func TestSingleAtomicAlwaysUsesOneStripe(t *testing.T) {
	f := NewSingleAtomic(4, 1)
	assert.Equal(t, 1, f.Params.AtomicsMax)
}

func TestFacadeReportsNameAndChunkSize(t *testing.T) {
	single := NewSingleAtomic(4, 8)
	assert.Equal(t, "single-atomic", single.Name())
	assert.Equal(t, 8, single.ChunkSize())

	multi := NewMultiAtomic(4, task.StripingParams{AtomicsMax: 4, MinChunksPerAtomic: 2}, 0)
	assert.Equal(t, "multi-atomic", multi.Name())
	assert.Equal(t, 1, multi.ChunkSize(), "chunk size below 1 clamps to 1")

	var _ Scheduler = single
	var _ Scheduler = multi
}

func TestSchedulerVariantsAgreeOnResult(t *testing.T) {
	const n = 250_007
	single := runCountingTask(t, NewSingleAtomic(6, 1), n)
	multi := runCountingTask(t, NewMultiAtomic(6, task.StripingParams{AtomicsMax: 6, MinChunksPerAtomic: 32}, 1), n)
	assert.Equal(t, int64(n), single)
	assert.Equal(t, int64(n), multi)
}

func TestMultiAtomicWithOneStripeMatchesSingleAtomic(t *testing.T) {
	n := uint32(10_000)
	degenerate := runCountingTask(t, NewMultiAtomic(4, task.StripingParams{AtomicsMax: 1, MinChunksPerAtomic: 1}, 1), n)
	single := runCountingTask(t, NewSingleAtomic(4, 1), n)
	assert.Equal(t, single, degenerate)
}
