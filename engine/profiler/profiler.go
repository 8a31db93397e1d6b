package profiler

import (
	"log"
	"runtime"
	"time"
)

// CullingSample is the object count produced by one culling pass.
type CullingSample struct {
	RenderObjects int
	ShadowObjects int
}

// Profiler tracks frame rate, culling load and memory statistics.
// Outputs stats to the log at a fixed interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	cullPasses    int
	renderObjects int
	shadowObjects int
}

// NewProfiler creates a Profiler that logs at the given interval.
//
// Parameters:
//   - interval: time between log lines, one second when zero or negative
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: interval,
	}
}

// RecordCulling accumulates the result of one culling pass into the current interval.
//
// Parameters:
//   - sample: the object counts of the pass
func (p *Profiler) RecordCulling(sample CullingSample) {
	p.cullPasses++
	p.renderObjects += sample.RenderObjects
	p.shadowObjects += sample.ShadowObjects
}

// averageCulling returns the mean render and shadow object counts per pass.
func (p *Profiler) averageCulling() (float64, float64) {
	if p.cullPasses == 0 {
		return 0, 0
	}
	n := float64(p.cullPasses)
	return float64(p.renderObjects) / n, float64(p.shadowObjects) / n
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// The line carries FPS, average culled object counts, heap usage and GC pauses.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed >= p.updateInterval {
		fps := float64(p.frameCount) / elapsed.Seconds()

		runtime.ReadMemStats(&p.memStats)
		allocMB := float64(p.memStats.Alloc) / 1024 / 1024
		sysMB := float64(p.memStats.Sys) / 1024 / 1024

		allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
		allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

		gcCount := p.memStats.NumGC
		var lastPauseUs, maxPauseUs uint64
		if gcCount > 0 {
			// PauseNs is a circular buffer of last 256 GC pauses
			lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

			// Find max pause since last tick
			startIdx := p.lastGCCount
			if gcCount-startIdx > 256 {
				startIdx = gcCount - 256
			}
			for i := startIdx; i < gcCount; i++ {
				pause := p.memStats.PauseNs[i%256] / 1000
				if pause > maxPauseUs {
					maxPauseUs = pause
				}
			}
		}

		avgRender, avgShadow := p.averageCulling()

		log.Printf("[Profiler] FPS: %.2f | Culled: %.1f render, %.1f shadow | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			fps, avgRender, avgShadow, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

		p.frameCount = 0
		p.cullPasses = 0
		p.renderObjects = 0
		p.shadowObjects = 0
		p.lastTime = currentTime
		p.lastGCCount = gcCount
		p.lastTotalAlloc = p.memStats.TotalAlloc
		return true
	}

	return false
}
