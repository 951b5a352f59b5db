package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workassisting/scheduler/kernel/prime"
	"github.com/workassisting/scheduler/task"
)

var (
	primesFirst  uint64
	primesLength uint64
)

var primesCmd = &cobra.Command{
	Use:   "primes",
	Short: "Count the primes in a range [first, first+length)",
	RunE:  runPrimes,
}

func init() {
	rootCmd.AddCommand(primesCmd)
	primesCmd.Flags().Uint64Var(&primesFirst, "first", 0, "first value in the range")
	primesCmd.Flags().Uint64Var(&primesLength, "length", 1_000_000, "number of values in the range")
}

func runPrimes(cmd *cobra.Command, args []string) error {
	striping, err := stripingConfig()
	if err != nil {
		return err
	}
	params := striping.Params(0)
	f, err := newFacade(params)
	if err != nil {
		return err
	}

	counter := &prime.Counter{}
	tk, err := prime.CreateTask(params, counter, primesFirst, primesLength, func(sub task.Submitter, t *task.Task) {
		sub.Finish()
	})
	if err != nil {
		return err
	}
	if err := f.Run(tk); err != nil {
		return err
	}

	logger.Info("counted primes", "first", primesFirst, "length", primesLength, "count", counter.Count())
	fmt.Println(counter.Count())
	return nil
}
