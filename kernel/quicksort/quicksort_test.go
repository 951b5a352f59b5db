package quicksort

import (
	"sort"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workassisting/scheduler/pool"
	"github.com/workassisting/scheduler/task"
)

func makeUnsorted(n int, seed uint32) []uint32 {
	a := make([]uint32, n)
	x := seed
	for i := range a {
		x = x*1664525 + 1013904223
		a[i] = x
	}
	return a
}

func sortedCopy(a []uint32) []uint32 {
	want := append([]uint32(nil), a...)
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	return want
}

func runSort(t *testing.T, n int, workers int) {
	t.Helper()
	runSortChunked(t, n, workers, 1)
}

func runSortChunked(t *testing.T, n int, workers int, chunkSize int) {
	t.Helper()
	input := makeUnsorted(n, uint32(n)+1)
	output := make([]uint32, n)
	want := sortedCopy(input)

	params := task.StripingParams{AtomicsMax: 4, MinChunksPerAtomic: 2}
	tk, err := CreateEntryTask(params, chunkSize, input, output)
	require.NoError(t, err)

	p := pool.NewPool(workers)
	require.NoError(t, p.Run(tk))
	if diff := cmp.Diff(want, output); diff != "" {
		t.Fatalf("sorted output mismatch (-want +got):\n%s", diff)
	}
}

func TestSortSequentialTier(t *testing.T) {
	runSort(t, 100, 2)
}

func TestSortTaskParallelTier(t *testing.T) {
	runSort(t, SequentialCutoff+500, 4)
}

func TestSortDataParallelTier(t *testing.T) {
	runSort(t, DataParCutoff+10_000, 6)
}

func TestSortDataParallelTierWithSmallerChunkSize(t *testing.T) {
	runSortChunked(t, DataParCutoff+10_000, 6, 8)
}

func TestSortEmptyInput(t *testing.T) {
	params := task.StripingParams{AtomicsMax: 2, MinChunksPerAtomic: 1}
	tk, err := CreateEntryTask(params, 1, nil, nil)
	require.NoError(t, err)

	p := pool.NewPool(2)
	require.NoError(t, p.Run(tk))
}

func TestSortSingleElement(t *testing.T) {
	params := task.StripingParams{AtomicsMax: 2, MinChunksPerAtomic: 1}
	input := []uint32{42}
	output := make([]uint32, 1)
	tk, err := CreateEntryTask(params, 1, input, output)
	require.NoError(t, err)

	p := pool.NewPool(2)
	require.NoError(t, p.Run(tk))
	assert.Equal(t, []uint32{42}, output)
}

func TestSortRejectsMismatchedLengths(t *testing.T) {
	params := task.StripingParams{AtomicsMax: 1, MinChunksPerAtomic: 1}
	pending := &atomic.Int64{}
	pending.Store(1)
	_, err := CreateTask(params, 1, pending, []uint32{1, 2}, []uint32{0}, false)
	require.Error(t, err)
}

func TestEffectiveBlockSizeDividesAndClamps(t *testing.T) {
	assert.Equal(t, BlockSize, effectiveBlockSize(1))
	assert.Equal(t, BlockSize/4, effectiveBlockSize(4))
	assert.Equal(t, BlockSize, effectiveBlockSize(0), "non-positive chunkSize clamps to 1 (no division)")
	assert.Equal(t, 1, effectiveBlockSize(BlockSize*2), "chunkSize larger than BlockSize never yields a zero-length block")
}

func TestCountRecursiveCalls(t *testing.T) {
	cases := []struct {
		length, pivotIndex, want int
	}{
		{length: 10, pivotIndex: 0, want: 1},
		{length: 10, pivotIndex: 1, want: 1},
		{length: 10, pivotIndex: 2, want: 2},
		{length: 3, pivotIndex: 1, want: 0},
		{length: 3, pivotIndex: 2, want: 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, countRecursiveCalls(c.length, c.pivotIndex))
	}
}
