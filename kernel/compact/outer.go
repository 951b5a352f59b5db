package compact

import "github.com/workassisting/scheduler/task"

// outerData exploits only the parallelism between independent passes:
// each pass is compacted fully sequentially by whichever worker
// claims its index, with no lookback cooperation within a pass.
type outerData struct {
	pred   Predicate
	passes []Pass
}

// CreateOuterTask builds a task compacting len(passes) independent
// arrays in parallel, each sequentially. Useful as a baseline against
// CreateInitialTask's inner (block-level) parallelism.
func CreateOuterTask(params task.StripingParams, pred Predicate, passes []Pass) (*task.Task, error) {
	d := &outerData{pred: pred, passes: passes}
	return task.NewDataParallel(d.run, d.finish, d, uint32(len(passes)), params)
}

func (d *outerData) run(sub task.Submitter, t *task.Task, args task.LoopArguments) {
	task.WorkLoop(args, func(i uint32) {
		p := d.passes[i]
		compactSequential(d.pred, p.Input, p.Output, 0)
	})
}

func (d *outerData) finish(sub task.Submitter, t *task.Task) {
	sub.Finish()
}
