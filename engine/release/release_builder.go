package release

import (
	"log"

	"github.com/Carmen-Shannon/oxy-runtime/engine/asset"
)

// ReleaseManagerBuilderOption is a functional option for configuring a ReleaseManager via
// NewReleaseManager.
type ReleaseManagerBuilderOption func(*releaseManagerImpl)

// WithLogger is an option builder that sets the logger for destroy messages.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - ReleaseManagerBuilderOption: a function that applies the logger option to a releaseManagerImpl
func WithLogger(logger *log.Logger) ReleaseManagerBuilderOption {
	return func(r *releaseManagerImpl) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDeferred is an option builder that queues non-forced releases until Flush, which the
// engine calls after each frame has been drawn.
//
// Parameters:
//   - deferred: true to queue non-forced releases
//
// Returns:
//   - ReleaseManagerBuilderOption: a function that applies the deferred option to a releaseManagerImpl
func WithDeferred(deferred bool) ReleaseManagerBuilderOption {
	return func(r *releaseManagerImpl) {
		r.deferred = deferred
	}
}

// WithRemoveHook is an option builder that registers a callback run when an asset leaves
// the cache, before it is destroyed. Bundles use it to drop their scoped entries.
func WithRemoveHook(hook func(asset.Asset)) ReleaseManagerBuilderOption {
	return func(r *releaseManagerImpl) {
		if hook != nil {
			r.hooks = append(r.hooks, hook)
		}
	}
}
