package pipeline

// TaskBuilderOption is a functional option for configuring a Task via NewTask.
type TaskBuilderOption func(*Task)

// WithInput is an option builder that sets the task input.
//
// Parameters:
//   - input: the items the first stage reads
//
// Returns:
//   - TaskBuilderOption: a function that applies the input option to a Task
func WithInput(input ...any) TaskBuilderOption {
	return func(t *Task) {
		t.Input = input
	}
}

// WithRequests is an option builder that sets the task input from requests.
//
// Parameters:
//   - requests: the requests the first stage reads
//
// Returns:
//   - TaskBuilderOption: a function that applies the input option to a Task
func WithRequests(requests []Request) TaskBuilderOption {
	return func(t *Task) {
		t.Input = make([]any, len(requests))
		for i, r := range requests {
			t.Input[i] = r
		}
	}
}

// WithOptions is an option builder that sets the task options. A nil value keeps
// the empty default.
//
// Parameters:
//   - opts: the options
//
// Returns:
//   - TaskBuilderOption: a function that applies the options to a Task
func WithOptions(opts *Options) TaskBuilderOption {
	return func(t *Task) {
		if opts != nil {
			t.Options = opts
		}
	}
}

// WithOnProgress is an option builder that sets the progress callback.
//
// Parameters:
//   - fn: the callback, may be nil
//
// Returns:
//   - TaskBuilderOption: a function that applies the callback to a Task
func WithOnProgress(fn ProgressFunc) TaskBuilderOption {
	return func(t *Task) {
		t.onProgress = fn
	}
}

// WithOnComplete is an option builder that sets the completion callback.
//
// Parameters:
//   - fn: the callback, may be nil
//
// Returns:
//   - TaskBuilderOption: a function that applies the callback to a Task
func WithOnComplete(fn CompleteFunc) TaskBuilderOption {
	return func(t *Task) {
		t.onComplete = fn
	}
}
