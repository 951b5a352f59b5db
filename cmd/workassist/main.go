// Command workassist runs the scheduler core's kernels directly from
// the command line, outside of any benchmarking harness: it exists so
// the scheduler, task, pool, scan, compact, and quicksort packages
// have a runnable surface to exercise by hand.
package main

import "github.com/workassisting/scheduler/cmd/workassist/cmd"

func main() {
	cmd.Execute()
}
