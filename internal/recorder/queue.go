package recorder

import "sync"

// taskQueue is an unbounded FIFO of pending writes. signal has a buffer
// of one so Enqueue never blocks; several enqueues may collapse into a
// single wakeup, which is why the writer drains with TryDequeue.
type taskQueue struct {
	mu     sync.Mutex
	tasks  []*Task
	signal chan struct{}
	closed bool
}

func newTaskQueue() *taskQueue {
	return &taskQueue{signal: make(chan struct{}, 1)}
}

// Enqueue adds a task. Returns false if the queue is closed.
func (q *taskQueue) Enqueue(t *Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.tasks = append(q.tasks, t)
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the oldest task without blocking.
func (q *taskQueue) TryDequeue() (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil, false
	}
	t := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return t, true
}

// Wait returns a channel that fires when tasks may be available or the
// queue was closed.
func (q *taskQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of pending tasks.
func (q *taskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Drained reports whether the queue is closed and empty.
func (q *taskQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.tasks) == 0
}

// Close stops accepting tasks and wakes the writer. Idempotent.
func (q *taskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

// takeAll empties the queue and returns what was pending.
func (q *taskQueue) takeAll() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.tasks
	q.tasks = nil
	return out
}
