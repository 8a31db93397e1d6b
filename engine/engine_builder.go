package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-runtime/engine/assetmanager"
	"github.com/Carmen-Shannon/oxy-runtime/engine/camera"
	"github.com/Carmen-Shannon/oxy-runtime/engine/culling"
	"github.com/Carmen-Shannon/oxy-runtime/engine/profiler"
	"github.com/Carmen-Shannon/oxy-runtime/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfilerInterval sets how often the profiler logs.
func WithProfilerInterval(interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = profiler.NewProfiler(interval)
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow attaches a window whose message loop drives the frame loop.
//
// Parameters:
//   - w: an opened Window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithCamera registers a camera at the given key during engine construction.
//
// Parameters:
//   - key: the ordering key (lower is culled first)
//   - cam: the camera to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(key int, cam camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.cameras[key] = cam
	}
}

// WithCuller replaces the default culler, for example one built with shadows or a skybox.
func WithCuller(c culling.Culler) EngineBuilderOption {
	return func(e *engine) {
		e.culler = c
	}
}

// WithAssets attaches an asset manager. Its deferred releases are flushed at the end of
// every frame.
//
// Parameters:
//   - m: the asset manager
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAssets(m assetmanager.AssetManager) EngineBuilderOption {
	return func(e *engine) {
		e.assets = m
	}
}

// WithFrameCallback sets the function called for each culled camera.
func WithFrameCallback(cb FrameCallback) EngineBuilderOption {
	return func(e *engine) {
		e.frameCallback = cb
	}
}

// WithFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the frame loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.frameLimit = 0
			return
		}
		e.frameLimit = time.Duration(float64(time.Second) / fps)
	}
}
