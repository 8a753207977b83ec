package recorder

import (
	"context"
	"sync"

	"github.com/roach88/qtrace/internal/ir"
)

// Task tracks the persistence of one execution.
type Task struct {
	ctx  context.Context
	exec *ir.Execution

	once  sync.Once
	done  chan struct{}
	err   error
	stats ir.PerformanceStats
}

func newTask(ctx context.Context, exec *ir.Execution) *Task {
	t := &Task{ctx: ctx, exec: exec, done: make(chan struct{})}
	if exec.Stats != nil {
		t.stats = *exec.Stats
	}
	return t
}

// ExecutionID returns the id of the execution being persisted.
func (t *Task) ExecutionID() string {
	return t.exec.ID
}

// Done is closed once the task has finished, successfully or not.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the task's outcome. Only meaningful after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Execution returns the persisted execution with its final performance
// stats. Nil until the task has succeeded.
func (t *Task) Execution() *ir.Execution {
	select {
	case <-t.done:
	default:
		return nil
	}
	if t.err != nil {
		return nil
	}
	out := *t.exec
	stats := t.stats
	out.Stats = &stats
	return &out
}

func (t *Task) finish(stats ir.PerformanceStats, err error) {
	t.once.Do(func() {
		t.stats = stats
		t.err = err
		close(t.done)
	})
}

func (t *Task) fail(err error) {
	t.finish(t.stats, err)
}
