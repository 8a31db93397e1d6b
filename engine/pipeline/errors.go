package pipeline

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to completion callbacks. Match them with errors.Is; a *LoadError
// unwraps to both its kind and its cause.
var (
	// ErrDownload reports a fetch failure that survived every retry.
	ErrDownload = errors.New("download failed")

	// ErrParse reports a payload the registered parser could not interpret.
	ErrParse = errors.New("parse failed")

	// ErrDependency reports that a transitive dependency of an asset failed to load.
	ErrDependency = errors.New("dependency failed")

	// ErrCyclicDependency reports an asset that depends on itself through its dependency graph.
	ErrCyclicDependency = errors.New("cyclic dependency")

	// ErrInvalidAssetState reports an operation on a destroyed asset or bundle.
	ErrInvalidAssetState = errors.New("invalid asset state")

	// ErrUnknownRequest reports a path, uuid or scene that no loaded bundle can resolve.
	ErrUnknownRequest = errors.New("unknown request")

	// ErrAborted reports an item skipped because a sibling item already failed the task.
	ErrAborted = errors.New("task aborted")
)

// LoadError carries the kind of failure together with the item that caused it.
type LoadError struct {
	Kind error
	ID   string
	URL  string
	Err  error
}

// NewLoadError creates a LoadError.
//
// Parameters:
//   - kind: one of the Err* kinds in this package
//   - id: the cache id of the failing item
//   - url: the resolved url, if any
//   - err: the underlying cause, may be nil
//
// Returns:
//   - *LoadError: the new error
func NewLoadError(kind error, id, url string, err error) *LoadError {
	return &LoadError{Kind: kind, ID: id, URL: url, Err: err}
}

func (e *LoadError) Error() string {
	target := e.ID
	if e.URL != "" && e.URL != e.ID {
		target = fmt.Sprintf("%s (%s)", e.ID, e.URL)
	}
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, target)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, target, e.Err)
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
