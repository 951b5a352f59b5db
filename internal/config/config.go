// Package config resolves the scheduler's tunable parameters — worker
// count and striping shape — into a validated task.StripingParams,
// the same role the source's per-scheduler const generics (ATOMICS,
// MIN_CHUNKS) play, but decided at run time instead of compile time so
// one binary can sweep them.
//
// Load layers flags over environment variables over defaults, the
// same viper.New / SetDefault / AutomaticEnv / BindPFlags shape
// junjiewwang-perf-analysis/pkg/config.Load builds: viper's own
// precedence order already puts an explicitly-set flag ahead of an
// env var ahead of a default, so binding the flag set is enough to
// get "flags > env > defaults" without hand-rolled merging.
package config

import (
	"runtime"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/workassisting/scheduler/task"
)

// Striping is the user-facing, not-yet-validated form of
// task.StripingParams plus the worker count, the shape a CLI flag set
// or a config file naturally produces.
type Striping struct {
	Workers            int
	AtomicsMax         int
	MinChunksPerAtomic int
	// ChunkDivisor, if non-zero, derives MinChunksPerAtomic from a
	// task's own work_size at submission time instead of a fixed
	// constant: MinChunksPerAtomic = max(1, work_size / ChunkDivisor).
	// Kernels operating over wildly different input sizes (a 100-element
	// array and a 100,000,000-element one) want this; fixing
	// MinChunksPerAtomic once at startup does not serve both.
	ChunkDivisor uint32
}

// Default returns one stripe-per-core, four chunks per stripe at
// minimum — a conservative starting point favoring low per-chunk
// overhead over maximal assist granularity.
func Default() Striping {
	return Striping{
		Workers:            runtime.GOMAXPROCS(0),
		AtomicsMax:         runtime.GOMAXPROCS(0),
		MinChunksPerAtomic: 4,
	}
}

// envPrefix namespaces every environment variable Load reads —
// WORKASSIST_WORKERS, WORKASSIST_ATOMICS_MAX, and so on.
const envPrefix = "workassist"

// Load resolves Striping from, in priority order, flags the caller
// has already parsed into flagSet, this process's environment, and
// Default. flagSet may be nil, in which case only env vars and
// defaults apply (useful from tests).
func Load(flagSet *pflag.FlagSet) (Striping, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("workers", d.Workers)
	v.SetDefault("atomics-max", d.AtomicsMax)
	v.SetDefault("min-chunks-per-atomic", d.MinChunksPerAtomic)
	v.SetDefault("chunk-divisor", 0)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flagSet != nil {
		if err := v.BindPFlags(flagSet); err != nil {
			return Striping{}, err
		}
	}

	return Striping{
		Workers:            v.GetInt("workers"),
		AtomicsMax:         v.GetInt("atomics-max"),
		MinChunksPerAtomic: v.GetInt("min-chunks-per-atomic"),
		ChunkDivisor:       v.GetUint32("chunk-divisor"),
	}.Validated(), nil
}

// Validated clamps every field to the floor a value of 0 or below
// would otherwise silently collapse task.NewDataParallel's clamping
// around: Workers and AtomicsMax to at least 1, MinChunksPerAtomic to
// at least 1 unless ChunkDivisor takes over that role.
func (s Striping) Validated() Striping {
	s.Workers = lo.Max([]int{s.Workers, 1})
	s.AtomicsMax = lo.Max([]int{s.AtomicsMax, 1})
	if s.ChunkDivisor == 0 {
		s.MinChunksPerAtomic = lo.Max([]int{s.MinChunksPerAtomic, 1})
	}
	return s
}

// Params resolves s into the task.StripingParams a given work_size
// should stripe over, applying ChunkDivisor when configured.
func (s Striping) Params(workSize uint32) task.StripingParams {
	minChunks := s.MinChunksPerAtomic
	if s.ChunkDivisor > 0 {
		derived := int(workSize / s.ChunkDivisor)
		minChunks = lo.Max([]int{derived, 1})
	}
	return task.StripingParams{
		AtomicsMax:         s.AtomicsMax,
		MinChunksPerAtomic: minChunks,
	}
}
