package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatedClampsNonPositiveFields(t *testing.T) {
	s := Striping{Workers: 0, AtomicsMax: -3, MinChunksPerAtomic: 0}.Validated()
	assert.Equal(t, 1, s.Workers)
	assert.Equal(t, 1, s.AtomicsMax)
	assert.Equal(t, 1, s.MinChunksPerAtomic)
}

func TestParamsUsesFixedMinChunksWhenNoDivisor(t *testing.T) {
	s := Striping{Workers: 4, AtomicsMax: 4, MinChunksPerAtomic: 16}
	p := s.Params(1_000_000)
	assert.Equal(t, 4, p.AtomicsMax)
	assert.Equal(t, 16, p.MinChunksPerAtomic)
}

func TestParamsDerivesMinChunksFromDivisor(t *testing.T) {
	s := Striping{Workers: 4, AtomicsMax: 8, ChunkDivisor: 1000}
	p := s.Params(50_000)
	assert.Equal(t, 8, p.AtomicsMax)
	assert.Equal(t, 50, p.MinChunksPerAtomic)
}

func TestParamsDivisorNeverGoesBelowOne(t *testing.T) {
	s := Striping{Workers: 2, AtomicsMax: 2, ChunkDivisor: 1_000_000}
	p := s.Params(10)
	assert.Equal(t, 1, p.MinChunksPerAtomic)
}

func TestDefaultIsUsable(t *testing.T) {
	d := Default().Validated()
	assert.GreaterOrEqual(t, d.Workers, 1)
	assert.GreaterOrEqual(t, d.AtomicsMax, 1)
}

func TestLoadWithNoFlagSetFallsBackToEnvThenDefaults(t *testing.T) {
	t.Setenv("WORKASSIST_ATOMICS_MAX", "6")

	s, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 6, s.AtomicsMax, "env var overrides the default")
	assert.Equal(t, Default().MinChunksPerAtomic, s.MinChunksPerAtomic, "unset field keeps its default")
}

func TestLoadPrefersExplicitFlagOverEnv(t *testing.T) {
	t.Setenv("WORKASSIST_ATOMICS_MAX", "6")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("atomics-max", Default().AtomicsMax, "")
	require.NoError(t, fs.Set("atomics-max", "12"))

	s, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, 12, s.AtomicsMax, "an explicitly-set flag outranks the env var")
}

func TestLoadFallsBackToUnsetFlagDefaultUnderEnv(t *testing.T) {
	t.Setenv("WORKASSIST_MIN_CHUNKS_PER_ATOMIC", "9")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("min-chunks-per-atomic", Default().MinChunksPerAtomic, "")

	s, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, 9, s.MinChunksPerAtomic, "a flag left at its own default does not shadow the env var")
}
