package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/workassisting/scheduler/kernel/quicksort"
)

var quicksortLength int

var quicksortCmd = &cobra.Command{
	Use:   "quicksort",
	Short: "Sort a generated array and confirm the result is sorted",
	RunE:  runQuicksort,
}

func init() {
	rootCmd.AddCommand(quicksortCmd)
	quicksortCmd.Flags().IntVar(&quicksortLength, "length", 1_000_000, "number of elements to sort")
}

func runQuicksort(cmd *cobra.Command, args []string) error {
	input := make([]uint32, quicksortLength)
	x := uint32(quicksortLength) + 1
	for i := range input {
		x = x*1664525 + 1013904223
		input[i] = x
	}
	output := make([]uint32, quicksortLength)

	striping, err := stripingConfig()
	if err != nil {
		return err
	}
	params := striping.Params(0)
	f, err := newFacade(params)
	if err != nil {
		return err
	}

	tk, err := quicksort.CreateEntryTask(params, f.ChunkSize(), input, output)
	if err != nil {
		return err
	}
	if err := f.Run(tk); err != nil {
		return err
	}

	sorted := sort.SliceIsSorted(output, func(i, j int) bool { return output[i] < output[j] })
	logger.Info("sorted array", "length", quicksortLength, "sorted", sorted)
	fmt.Println(sorted)
	return nil
}
