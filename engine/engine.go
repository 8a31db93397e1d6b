package engine

import (
	"log"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-runtime/engine/assetmanager"
	"github.com/Carmen-Shannon/oxy-runtime/engine/camera"
	"github.com/Carmen-Shannon/oxy-runtime/engine/culling"
	"github.com/Carmen-Shannon/oxy-runtime/engine/profiler"
	"github.com/Carmen-Shannon/oxy-runtime/engine/scene"
	"github.com/Carmen-Shannon/oxy-runtime/engine/window"
)

// FrameCallback receives each camera after it was culled. The culler's render and shadow
// lists are valid until the next camera is culled.
type FrameCallback func(cam camera.Camera, c culling.Culler, deltaTime float32)

// engine implements the Engine interface.
// Coordinates the tick goroutine with the frame loop.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	frameCallback  FrameCallback

	mu      sync.RWMutex
	cameras map[int]camera.Camera
	culler  culling.Culler
	assets  assetmanager.AssetManager

	frameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine drives a fixed-rate tick loop and a frame loop. Each frame updates the active
// scenes, culls every camera in ascending key order and flushes deferred asset releases.
type Engine interface {
	// Window returns the attached window, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Culler returns the culler shared by every camera.
	Culler() culling.Culler

	// Assets returns the attached asset manager, or nil.
	Assets() assetmanager.AssetManager

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetFrameCallback registers the function called for each culled camera.
	//
	// Parameters:
	//   - callback: function receiving the camera, the culler and the frame delta in seconds
	SetFrameCallback(callback FrameCallback)

	// SetFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the frame loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// AddCamera registers a camera at the given key. Cameras are culled in ascending key order.
	//
	// Parameters:
	//   - key: the ordering key (lower is culled first)
	//   - cam: the camera to register
	AddCamera(key int, cam camera.Camera)

	// RemoveCamera removes the camera at the given key.
	RemoveCamera(key int)

	// Camera returns the camera at key, or nil.
	Camera(key int) camera.Camera

	// Cameras returns a copy of all registered cameras keyed by order.
	Cameras() map[int]camera.Camera

	// Step runs one frame: scene updates, camera updates, culling, frame callbacks,
	// deferred releases and profiling, in that order.
	//
	// Parameters:
	//   - dt: the frame delta in seconds
	Step(dt float32)

	// Run starts the tick goroutine and the frame loop. With a window the frame loop runs
	// on the window's message loop; otherwise it runs until Quit. Blocks until both stop.
	Run()

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		cameras:         make(map[int]camera.Camera),
		profiler:        profiler.NewProfiler(time.Second),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.culler == nil {
		e.culler = culling.NewCuller()
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if height == 0 {
				return
			}
			for _, c := range e.Cameras() {
				c.SetAspect(float32(width) / float32(height))
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Culler() culling.Culler {
	return e.culler
}

func (e *engine) Assets() assetmanager.AssetManager {
	return e.assets
}

func (e *engine) Run() {
	e.running.Store(true)
	e.wg.Add(1)
	go e.handleEngine()

	if e.window != nil {
		last := time.Now()
		e.window.SetUpdateCallback(func() {
			select {
			case <-e.quitChannel:
				_ = e.window.Close()
			default:
				last = e.frame(last)
			}
		})
		e.window.ProcessMessages()
		e.signalQuit()
	} else {
		e.handleFrames()
	}

	e.wg.Wait()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
	})
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleFrames runs the headless frame loop on the calling goroutine until Quit.
// Recovers from panics in a frame and signals quit.
func (e *engine) handleFrames() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] frame loop recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	last := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		default:
			last = e.frame(last)
		}
	}
}

// frame runs one Step timed from last and applies the frame limit.
//
// Parameters:
//   - last: start time of the previous frame
//
// Returns:
//   - time.Time: start time of this frame
func (e *engine) frame(last time.Time) time.Time {
	now := time.Now()
	e.Step(float32(now.Sub(last).Seconds()))

	if e.frameLimit > 0 {
		if remaining := e.frameLimit - time.Since(now); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	return now
}

func (e *engine) Step(dt float32) {
	e.mu.RLock()
	keys := slices.Sorted(maps.Keys(e.cameras))
	cams := make([]camera.Camera, 0, len(keys))
	for _, k := range keys {
		cams = append(cams, e.cameras[k])
	}
	frameCb := e.frameCallback
	e.mu.RUnlock()

	// Each scene is updated once even when several cameras view it.
	var updated []scene.Scene
	for _, c := range cams {
		s := c.Scene()
		if s == nil || !s.Active() || slices.Contains(updated, s) {
			continue
		}
		s.Update(dt)
		updated = append(updated, s)
	}

	for _, c := range cams {
		if ctrl := c.Controller(); ctrl != nil {
			ctrl.Advance(dt)
		}
		c.Update()
	}

	for _, c := range cams {
		if s := c.Scene(); s == nil || !s.Active() {
			continue
		}
		e.culler.SceneCulling(c)
		if e.profilingEnabled {
			stats := e.culler.Stats()
			e.profiler.RecordCulling(profiler.CullingSample{
				RenderObjects: stats.RenderObjects,
				ShadowObjects: stats.ShadowObjects,
			})
		}
		if frameCb != nil {
			frameCb(c, e.culler, dt)
		}
	}

	if e.assets != nil {
		e.assets.ReleaseManager().Flush()
	}

	if e.profilingEnabled {
		e.profiler.Tick()
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}

	// Replace a pending update that the loop has not consumed yet.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetFrameCallback(callback FrameCallback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameCallback = callback
}

// SetFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the frame loop.
func (e *engine) SetFrameLimit(fps float64) {
	if fps <= 0 {
		e.frameLimit = 0
		return
	}
	e.frameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddCamera(key int, cam camera.Camera) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cameras[key] = cam
}

func (e *engine) RemoveCamera(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.cameras, key)
}

func (e *engine) Camera(key int) camera.Camera {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cameras[key]
}

func (e *engine) Cameras() map[int]camera.Camera {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := make(map[int]camera.Camera, len(e.cameras))
	for k, v := range e.cameras {
		cp[k] = v
	}
	return cp
}
