package pipeline

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// pipelineCount is an atomic counter used to hand out unique pipeline ids.
var pipelineCount atomic.Uint64

// Pipe is one processing stage. It reads task.Input, writes task.Output and returns a
// non-nil error to abort the task. A pipe may block; Async runs the whole chain off
// the caller's goroutine.
type Pipe func(task *Task) error

type stage struct {
	name string
	pipe Pipe
}

// pipelineImpl is the implementation of the Pipeline interface.
type pipelineImpl struct {
	mu     sync.RWMutex
	id     uint64
	name   string
	stages []stage
}

// Pipeline is an ordered chain of named stages. Every task runs the stages in
// registration order; a failing stage stops the chain. Pipelines never share tasks.
type Pipeline interface {
	// ID returns the unique pipeline id.
	//
	// Returns:
	//   - uint64: the id
	ID() uint64

	// Name returns the pipeline name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Stages returns the stage names in execution order.
	//
	// Returns:
	//   - []string: the names
	Stages() []string

	// Append adds a stage at the end of the chain.
	//
	// Parameters:
	//   - name: the stage name
	//   - pipe: the stage function
	//
	// Returns:
	//   - Pipeline: the receiver, for chaining
	Append(name string, pipe Pipe) Pipeline

	// Insert adds a stage at index, shifting later stages. Indexes past the end append.
	//
	// Parameters:
	//   - name: the stage name
	//   - pipe: the stage function
	//   - index: the position of the new stage
	//
	// Returns:
	//   - Pipeline: the receiver, for chaining
	Insert(name string, pipe Pipe, index int) Pipeline

	// Remove deletes the stage at index. Out of range indexes are ignored.
	//
	// Parameters:
	//   - index: the position of the stage to remove
	//
	// Returns:
	//   - Pipeline: the receiver, for chaining
	Remove(index int) Pipeline

	// Sync runs every stage on the calling goroutine. The task's completion callback is
	// not invoked.
	//
	// Parameters:
	//   - task: the task to run
	//
	// Returns:
	//   - []any: the output of the last stage
	//   - error: the first stage error
	Sync(task *Task) ([]any, error)

	// Async runs every stage on a new goroutine and completes the task with the result.
	//
	// Parameters:
	//   - task: the task to run
	Async(task *Task)
}

var _ Pipeline = &pipelineImpl{}

// NewPipeline creates a Pipeline with the given name and any provided options applied.
//
// Parameters:
//   - name: the pipeline name used in error messages
//   - options: a variadic list of PipelineBuilderOption functions
//
// Returns:
//   - Pipeline: the new pipeline
func NewPipeline(name string, options ...PipelineBuilderOption) Pipeline {
	p := &pipelineImpl{
		id:   pipelineCount.Add(1),
		name: name,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *pipelineImpl) ID() uint64 {
	return p.id
}

func (p *pipelineImpl) Name() string {
	return p.name
}

func (p *pipelineImpl) Stages() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.name
	}
	return names
}

func (p *pipelineImpl) Append(name string, pipe Pipe) Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stages = append(p.stages, stage{name: name, pipe: pipe})
	return p
}

func (p *pipelineImpl) Insert(name string, pipe Pipe, index int) Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	index = min(max(index, 0), len(p.stages))
	p.stages = append(p.stages, stage{})
	copy(p.stages[index+1:], p.stages[index:])
	p.stages[index] = stage{name: name, pipe: pipe}
	return p
}

func (p *pipelineImpl) Remove(index int) Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.stages) {
		return p
	}
	p.stages = append(p.stages[:index], p.stages[index+1:]...)
	return p
}

func (p *pipelineImpl) Sync(task *Task) ([]any, error) {
	return p.flow(task)
}

func (p *pipelineImpl) Async(task *Task) {
	go func() {
		out, err := p.flow(task)
		task.Complete(err, out)
	}()
}

// flow drives task through a snapshot of the stages. Output becomes the next stage's
// input. A panicking stage is reported as an error instead of killing the process.
func (p *pipelineImpl) flow(task *Task) (out []any, err error) {
	p.mu.RLock()
	stages := make([]stage, len(p.stages))
	copy(stages, p.stages)
	p.mu.RUnlock()

	current := ""
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("pipeline %s: stage %s panicked: %v", p.name, current, r)
		}
	}()

	for i, s := range stages {
		current = s.name
		if err := s.pipe(task); err != nil {
			return nil, err
		}
		if task.IsFinished() {
			return task.Output, nil
		}
		if i < len(stages)-1 {
			task.Input = task.Output
			task.Output = nil
		}
	}
	return task.Output, nil
}
