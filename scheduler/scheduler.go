// Package scheduler names the two striping variants the spec
// distinguishes as separate schedulers — SingleAtomic (one counter per
// data-parallel task, k fixed at 1) and MultiAtomic (striped across
// several counters per task.StripingParams) — and wraps a pool.Pool
// with its striping parameters so a kernel builds tasks without
// re-stating them at every call site.
package scheduler

import (
	"github.com/workassisting/scheduler/pool"
	"github.com/workassisting/scheduler/task"
)

// Runner runs a single entry task to completion on some number of
// worker goroutines. Any pool.Pool satisfies it; kernels should accept
// this interface, not *pool.Pool, so tests can substitute a fake.
type Runner interface {
	Run(initial *task.Task) error
	RunOn(initial *task.Task, cpus []int) error
}

var _ Runner = (*pool.Pool)(nil)

// Scheduler is the full per-variant surface the source's Scheduler
// trait exposes: a Runner plus the two values that identify which
// variant is running and how finely it subdivides a kernel's natural
// block size (ChunkSize), mirrored from
// original_source/src/scheduler.rs. Only *Facade satisfies it —
// *pool.Pool has no notion of a variant name or chunk size, those are
// per-Facade, not per-pool.
type Scheduler interface {
	Runner
	ChunkSize() int
	Name() string
}

var _ Scheduler = (*Facade)(nil)

// Name identifies which striping variant a Facade was built with —
// kept for logging and the CLI's --variant flag, mirroring the
// source's Scheduler::get_name.
type Name string

const (
	NameSingleAtomic Name = "single-atomic"
	NameMultiAtomic  Name = "multi-atomic"
)

// Facade pairs a running Runner with the striping parameters new
// data-parallel tasks submitted to it should use, plus the variant's
// identity and chunk-size divisor. SingleAtomic is exactly MultiAtomic
// with AtomicsMax pinned to 1 — the spec treats it as the degenerate
// member of the same family rather than a differently-shaped
// scheduler, so both construct the same pool.Pool.
//
// ChunkSize is the source's CHUNK_DIV: kernels that chunk a block
// divide their natural block size by it, the same way
// original_source/src/cases/quicksort.rs's parallel_partition_chunk
// computes its chunk span as BLOCK_SIZE / CHUNK_DIV. It is unrelated
// to internal/config's ChunkDivisor, which derives MinChunksPerAtomic
// from a task's work_size instead.
type Facade struct {
	variant   Name
	chunkSize int
	Params    task.StripingParams
	Runner
}

// NewSingleAtomic builds a Facade whose data-parallel tasks always use
// exactly one stripe. chunkSize below 1 is clamped to 1 (no division).
func NewSingleAtomic(numWorkers, chunkSize int, opts ...pool.Option) *Facade {
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &Facade{
		variant:   NameSingleAtomic,
		chunkSize: chunkSize,
		Params:    task.StripingParams{AtomicsMax: 1, MinChunksPerAtomic: 1},
		Runner:    pool.NewPool(numWorkers, opts...),
	}
}

// NewMultiAtomic builds a Facade using the supplied striping
// parameters (AtomicsMax > 1 is what makes this variant distinct from
// SingleAtomic; a caller that passes AtomicsMax: 1 gets identical
// behavior to NewSingleAtomic, by construction). chunkSize below 1 is
// clamped to 1 (no division).
func NewMultiAtomic(numWorkers int, params task.StripingParams, chunkSize int, opts ...pool.Option) *Facade {
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &Facade{
		variant:   NameMultiAtomic,
		chunkSize: chunkSize,
		Params:    params,
		Runner:    pool.NewPool(numWorkers, opts...),
	}
}

// Name reports which striping variant f was built with.
func (f *Facade) Name() string { return string(f.variant) }

// ChunkSize reports the divisor f's kernels should apply to their
// natural block size.
func (f *Facade) ChunkSize() int { return f.chunkSize }

// NewDataParallel builds a data-parallel task using the facade's
// configured striping parameters, so kernels never thread
// task.StripingParams through their own APIs.
func (f *Facade) NewDataParallel(workFn task.WorkFn, finishFn task.FinishFn, data any, workSize uint32) (*task.Task, error) {
	return task.NewDataParallel(workFn, finishFn, data, workSize, f.Params)
}
