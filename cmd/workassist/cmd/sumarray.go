package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workassisting/scheduler/kernel/sumarray"
	"github.com/workassisting/scheduler/task"
)

var sumarrayLength int

var sumarrayCmd = &cobra.Command{
	Use:   "sumarray",
	Short: "Sum a generated array of the given length",
	RunE:  runSumArray,
}

func init() {
	rootCmd.AddCommand(sumarrayCmd)
	sumarrayCmd.Flags().IntVar(&sumarrayLength, "length", 10_000_000, "number of elements to sum")
}

func runSumArray(cmd *cobra.Command, args []string) error {
	array := make([]uint64, sumarrayLength)
	for i := range array {
		array[i] = uint64(i%97 + 1)
	}

	striping, err := stripingConfig()
	if err != nil {
		return err
	}
	params := striping.Params(0)
	f, err := newFacade(params)
	if err != nil {
		return err
	}

	counter := &sumarray.Counter{}
	tk, err := sumarray.CreateTask(params, counter, array, func(sub task.Submitter, t *task.Task) {
		sub.Finish()
	})
	if err != nil {
		return err
	}
	if err := f.Run(tk); err != nil {
		return err
	}

	logger.Info("summed array", "length", sumarrayLength, "sum", counter.Sum())
	fmt.Println(counter.Sum())
	return nil
}
