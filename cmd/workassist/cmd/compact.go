package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workassisting/scheduler/kernel/compact"
	"github.com/workassisting/scheduler/task"
)

var (
	compactLength int
	compactMask   uint64
	compactOuter  bool
)

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Filter and pack a generated array against a mask predicate",
	RunE:  runCompact,
}

func init() {
	rootCmd.AddCommand(compactCmd)
	compactCmd.Flags().IntVar(&compactLength, "length", 1_000_000, "number of elements to filter")
	compactCmd.Flags().Uint64Var(&compactMask, "mask", 0x3, "predicate mask; an element survives when its hashed bits match the mask")
	compactCmd.Flags().BoolVar(&compactOuter, "outer", false, "use the outer (pass-parallel, no lookback) variant instead of the inner block-parallel one")
}

func runCompact(cmd *cobra.Command, args []string) error {
	input := make([]uint64, compactLength)
	for i := range input {
		input[i] = uint64(i)*2654435761 + 1
	}
	pred := compact.MaskPredicate(compactMask)

	var matches int
	for _, v := range input {
		if pred(v) {
			matches++
		}
	}
	output := make([]uint64, matches)
	passes := []compact.Pass{{Input: input, Output: output}}

	striping, err := stripingConfig()
	if err != nil {
		return err
	}
	params := striping.Params(0)
	f, err := newFacade(params)
	if err != nil {
		return err
	}

	var tk *task.Task
	if compactOuter {
		tk, err = compact.CreateOuterTask(params, pred, passes)
	} else {
		tk, err = compact.CreateInitialTask(params, pred, passes)
	}
	if err != nil {
		return err
	}
	if err := f.Run(tk); err != nil {
		return err
	}

	logger.Info("compacted array", "length", compactLength, "mask", compactMask, "matches", matches, "outer", compactOuter)
	fmt.Println(matches)
	return nil
}
