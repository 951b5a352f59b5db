package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/workassisting/scheduler/internal/config"
	"github.com/workassisting/scheduler/internal/obslog"
)

var (
	workers            int
	atomicsMax         int
	minChunksPerAtomic int
	chunkDivisor       uint32
	chunkSize          int
	variant            string

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "workassist",
	Short: "Run work-assisting data-parallel kernels from the command line",
	Long: `workassist drives the scheduler core's kernels directly,
outside of any benchmarking harness. Every subcommand builds one task
from a kernel package, submits it to a pool sized by --workers, and
prints the result (for quicksort, whether the output is sorted).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = obslog.New()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	defaults := config.Default()
	rootCmd.PersistentFlags().IntVar(&workers, "workers", defaults.Workers, "number of pool workers")
	rootCmd.PersistentFlags().IntVar(&atomicsMax, "atomics-max", defaults.AtomicsMax, "maximum number of striped atomic counters per data-parallel task")
	rootCmd.PersistentFlags().IntVar(&minChunksPerAtomic, "min-chunks-per-atomic", defaults.MinChunksPerAtomic, "minimum chunks owed to each atomic counter before striping further")
	rootCmd.PersistentFlags().Uint32Var(&chunkDivisor, "chunk-divisor", 0, "if non-zero, derive min-chunks-per-atomic from a task's own work size instead of the fixed value above")
	rootCmd.PersistentFlags().IntVar(&chunkSize, "chunk-size", 1, "divisor kernels apply to their natural block size (CHUNK_DIV)")
	rootCmd.PersistentFlags().StringVar(&variant, "variant", "multi", "scheduler variant: single or multi")
}

// stripingConfig resolves the striping parameters through
// config.Load's flags > env > defaults layering, binding this run's
// parsed Cobra flags so a flag the user actually set always wins.
func stripingConfig() (config.Striping, error) {
	return config.Load(rootCmd.PersistentFlags())
}
