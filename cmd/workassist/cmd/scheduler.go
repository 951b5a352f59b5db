package cmd

import (
	"fmt"

	"github.com/workassisting/scheduler/pool"
	"github.com/workassisting/scheduler/scheduler"
	"github.com/workassisting/scheduler/task"
)

// newFacade builds the scheduler variant selected by --variant, wired
// to this run's logger.
func newFacade(params task.StripingParams) (*scheduler.Facade, error) {
	opts := []pool.Option{pool.WithLogger(logger)}
	switch variant {
	case "single":
		return scheduler.NewSingleAtomic(workers, chunkSize, opts...), nil
	case "multi":
		return scheduler.NewMultiAtomic(workers, params, chunkSize, opts...), nil
	default:
		return nil, fmt.Errorf("unknown scheduler variant %q (want single or multi)", variant)
	}
}
