package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workassisting/scheduler/kernel/scan"
	"github.com/workassisting/scheduler/task"
)

var (
	scanLength int
	scanOuter  bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Compute an inclusive prefix sum over a generated array",
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().IntVar(&scanLength, "length", 1_000_000, "number of elements to scan")
	scanCmd.Flags().BoolVar(&scanOuter, "outer", false, "use the outer (pass-parallel, no lookback) variant instead of the inner block-parallel one")
}

func runScan(cmd *cobra.Command, args []string) error {
	input := make([]uint64, scanLength)
	for i := range input {
		input[i] = uint64(i%11 + 1)
	}
	output := make([]uint64, scanLength)
	passes := []scan.Pass{{Input: input, Output: output}}

	striping, err := stripingConfig()
	if err != nil {
		return err
	}
	params := striping.Params(0)
	f, err := newFacade(params)
	if err != nil {
		return err
	}

	add := func(a, b uint64) uint64 { return a + b }

	var tk *task.Task
	if scanOuter {
		tk, err = scan.CreateOuterTask(params, add, 0, passes)
	} else {
		tk, err = scan.CreateTask(params, add, 0, passes)
	}
	if err != nil {
		return err
	}
	if err := f.Run(tk); err != nil {
		return err
	}

	logger.Info("scanned array", "length", scanLength, "outer", scanOuter)
	if scanLength > 0 {
		fmt.Println(output[scanLength-1])
	}
	return nil
}
