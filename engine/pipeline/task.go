package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
)

// taskCount is an atomic counter used to hand out unique task ids.
var taskCount atomic.Uint64

// ProgressFunc receives the finished and total item counts after each item settles.
type ProgressFunc func(finished, total int, item *RequestItem)

// CompleteFunc receives the task outcome. On error data is nil.
type CompleteFunc func(err error, data []any)

// Task is one batch of work moving through a Pipeline. Stages read Input and write
// Output; the pipeline moves Output to Input between stages.
//
// The completion callback fires exactly once. Progress reported after completion
// is dropped.
type Task struct {
	ID      uint64
	Input   []any
	Output  []any
	Options *Options

	onProgress ProgressFunc
	onComplete CompleteFunc

	progressMu sync.Mutex
	finished   int
	total      int

	once     sync.Once
	done     chan struct{}
	finishMu sync.RWMutex
	isFinish bool
	err      error
	result   []any
}

// NewTask creates a Task with the provided options applied.
//
// Parameters:
//   - options: a variadic list of TaskBuilderOption functions
//
// Returns:
//   - *Task: the new task
func NewTask(options ...TaskBuilderOption) *Task {
	t := &Task{
		ID:      taskCount.Add(1),
		Options: &Options{},
		done:    make(chan struct{}),
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// AddTotal grows the number of items the task waits for. Dependencies discovered while
// loading are added here before they are loaded.
//
// Parameters:
//   - n: the number of items to add
func (t *Task) AddTotal(n int) {
	t.progressMu.Lock()
	t.total += n
	t.progressMu.Unlock()
}

// Progress marks one item as settled and notifies the progress callback. Callbacks are
// serialized, so the reported finished count never decreases.
//
// Parameters:
//   - item: the item that settled
func (t *Task) Progress(item *RequestItem) {
	t.progressMu.Lock()
	defer t.progressMu.Unlock()
	t.finished++
	if t.onProgress == nil || t.IsFinished() {
		return
	}
	t.onProgress(t.finished, t.total, item)
}

// Counts returns the current finished and total item counts.
//
// Returns:
//   - finished: items settled so far
//   - total: items known so far
func (t *Task) Counts() (finished, total int) {
	t.progressMu.Lock()
	defer t.progressMu.Unlock()
	return t.finished, t.total
}

// Complete finishes the task. Only the first call has any effect.
//
// Parameters:
//   - err: the failure, or nil
//   - data: the results, ignored when err is set
//
// Returns:
//   - bool: true if this call completed the task
func (t *Task) Complete(err error, data []any) bool {
	completed := false
	t.once.Do(func() {
		completed = true
		if err != nil {
			data = nil
		}
		t.finishMu.Lock()
		t.isFinish = true
		t.err = err
		t.result = data
		t.finishMu.Unlock()

		if t.onComplete != nil {
			t.onComplete(err, data)
		}
		close(t.done)
	})
	return completed
}

// IsFinished reports whether Complete has been called.
func (t *Task) IsFinished() bool {
	t.finishMu.RLock()
	defer t.finishMu.RUnlock()
	return t.isFinish
}

// Done returns a channel closed after the completion callback has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task completes or ctx is done.
//
// Parameters:
//   - ctx: bounds how long to wait
//
// Returns:
//   - []any: the task results
//   - error: the task error, or ctx.Err() if ctx ended first
func (t *Task) Wait(ctx context.Context) ([]any, error) {
	select {
	case <-t.done:
		t.finishMu.RLock()
		defer t.finishMu.RUnlock()
		return t.result, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
