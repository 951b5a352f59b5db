package scan

import "github.com/workassisting/scheduler/task"

// outerData drives outer-only parallelism: one data-parallel task
// over len(passes) blocks, each block running one pass's scan fully
// sequentially. No decoupled-lookback protocol is needed because
// distinct passes never share state — contrast with CreateTask, where
// a single pass's blocks cooperate across the lookback chain.
type outerData struct {
	combine Combine
	zero    uint64
	passes  []Pass
}

// CreateOuterTask builds a task exploiting only the parallelism
// between independent passes: each pass gets scanned sequentially by
// whichever worker claims its index, with no cross-block cooperation
// within a pass. Useful as a baseline against CreateTask's inner
// parallelism, and for pass collections whose individual arrays are
// too small for block partitioning to pay off.
func CreateOuterTask(params task.StripingParams, combine Combine, zero uint64, passes []Pass) (*task.Task, error) {
	d := &outerData{combine: combine, zero: zero, passes: passes}
	return task.NewDataParallel(d.run, d.finish, d, uint32(len(passes)), params)
}

func (d *outerData) run(sub task.Submitter, t *task.Task, args task.LoopArguments) {
	task.WorkLoop(args, func(i uint32) {
		p := d.passes[i]
		scanSequential(d.combine, p.Input, d.zero, p.Output)
	})
}

func (d *outerData) finish(sub task.Submitter, t *task.Task) {
	sub.Finish()
}
