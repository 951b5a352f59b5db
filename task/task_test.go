package task

import (
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workassisting/scheduler/internal/werrors"
)

func TestNewDataParallelRejectsZeroWorkSize(t *testing.T) {
	_, err := NewDataParallel(nil, nil, nil, 0, StripingParams{AtomicsMax: 4, MinChunksPerAtomic: 1})
	require.ErrorIs(t, err, werrors.ErrInvalidWorkSize)
}

func TestNewDataParallelStripeCountIsClamped(t *testing.T) {
	cases := []struct {
		name      string
		workSize  uint32
		params    StripingParams
		wantMin   int
		wantMax   int
	}{
		{"tiny work, many atomics requested", 3, StripingParams{AtomicsMax: 8, MinChunksPerAtomic: 4}, 1, 1},
		{"exactly one atomic worth", 4, StripingParams{AtomicsMax: 8, MinChunksPerAtomic: 4}, 1, 1},
		{"plenty of work", 100, StripingParams{AtomicsMax: 4, MinChunksPerAtomic: 4}, 4, 4},
		{"zero params fall back to 1/1", 10, StripingParams{}, 1, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tsk, err := NewDataParallel(nil, nil, nil, c.workSize, c.params)
			require.NoError(t, err)
			n := len(tsk.stripeEnds)
			assert.GreaterOrEqual(t, n, c.wantMin)
			assert.LessOrEqual(t, n, c.wantMax)
		})
	}
}

func TestNewDataParallelStripesCoverWorkSizeExactly(t *testing.T) {
	tsk, err := NewDataParallel(nil, nil, nil, 37, StripingParams{AtomicsMax: 5, MinChunksPerAtomic: 3})
	require.NoError(t, err)

	var prev uint32
	for _, end := range tsk.stripeEnds {
		assert.GreaterOrEqual(t, end, prev)
		prev = end
	}
	assert.Equal(t, uint32(37), tsk.stripeEnds[len(tsk.stripeEnds)-1])
}

func TestNewDataParallelReservesChunkZeroForInitiator(t *testing.T) {
	tsk, err := NewDataParallel(nil, nil, nil, 20, StripingParams{AtomicsMax: 4, MinChunksPerAtomic: 1})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), tsk.atomics[0].Load())
	assert.Equal(t, int32(1), tsk.activeThreads.Load())
}

// TestWorkLoopClaimsEveryChunkExactlyOnce drives several concurrent
// "workers" (goroutines) through WorkLoop on a shared task and checks
// the union of claimed indices is exactly [0, workSize) with no
// duplicates — the chunk-claim protocol's core safety property.
func TestWorkLoopClaimsEveryChunkExactlyOnce(t *testing.T) {
	const workSize = 2003 // prime, deliberately uneven across stripes
	tsk, err := NewDataParallel(nil, nil, nil, workSize, StripingParams{AtomicsMax: 6, MinChunksPerAtomic: 7})
	require.NoError(t, err)

	var mu sync.Mutex
	var claimed []uint32
	var emptyRaises atomic.Int32

	tsk.SetOnEmpty(func() { emptyRaises.Add(1) })

	record := func(idx uint32) {
		mu.Lock()
		claimed = append(claimed, idx)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		WorkLoop(tsk.InitiatorLoopArguments(), record)
	}()
	for i := 0; i < 7; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			WorkLoop(tsk.AssistantLoopArguments(), record)
		}()
	}
	wg.Wait()

	sort.Slice(claimed, func(i, j int) bool { return claimed[i] < claimed[j] })
	require.Len(t, claimed, workSize)
	for i, v := range claimed {
		assert.Equal(t, uint32(i), v)
	}
	assert.Equal(t, int32(1), emptyRaises.Load())
}

func TestEmptySignalRaisesOnce(t *testing.T) {
	var calls atomic.Int32
	var once sync.Once
	sig := EmptySignal{once: &once, onEmpty: func() { calls.Add(1) }}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sig.Raise()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewSingleHasNoWorkFn(t *testing.T) {
	tsk := NewSingle(func(sub Submitter, t *Task) {}, "payload")
	assert.Equal(t, KindSingle, tsk.Kind())
	assert.Nil(t, tsk.WorkFn())
	assert.Equal(t, "payload", tsk.Data())
}

func TestMarkAssistStartedAndWorkerLeft(t *testing.T) {
	tsk, err := NewDataParallel(nil, nil, nil, 8, StripingParams{AtomicsMax: 2, MinChunksPerAtomic: 1})
	require.NoError(t, err)

	tsk.MarkAssistStarted()
	tsk.MarkAssistStarted()
	assert.Equal(t, int32(3), tsk.activeThreads.Load())

	assert.Equal(t, int32(2), tsk.MarkWorkerLeft())
	assert.Equal(t, int32(1), tsk.MarkWorkerLeft())
	assert.Equal(t, int32(0), tsk.MarkWorkerLeft())
}
