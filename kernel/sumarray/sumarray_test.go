package sumarray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workassisting/scheduler/scheduler"
	"github.com/workassisting/scheduler/task"
)

func TestSumArrayMatchesSequentialReference(t *testing.T) {
	array := make([]uint64, 1_234_567)
	var want uint64
	for i := range array {
		array[i] = uint64(i%7 + 1)
		want += array[i]
	}

	counter := &Counter{}
	params := task.StripingParams{AtomicsMax: 8, MinChunksPerAtomic: 2}
	f := scheduler.NewMultiAtomic(8, params, 1)
	tk, err := CreateTask(params, counter, array, func(sub task.Submitter, t *task.Task) { sub.Finish() })
	require.NoError(t, err)
	require.NoError(t, f.Run(tk))

	assert.Equal(t, want, counter.Sum())
}

func TestSumArraySingleElement(t *testing.T) {
	array := []uint64{41}
	counter := &Counter{}
	params := task.StripingParams{AtomicsMax: 1, MinChunksPerAtomic: 1}
	f := scheduler.NewSingleAtomic(2, 1)
	tk, err := CreateTask(params, counter, array, func(sub task.Submitter, t *task.Task) { sub.Finish() })
	require.NoError(t, err)
	require.NoError(t, f.Run(tk))
	assert.Equal(t, uint64(41), counter.Sum())
}
