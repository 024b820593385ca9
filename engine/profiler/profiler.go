package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// FrameStats is the per-frame workload reported to the Profiler.
type FrameStats struct {
	Items       int
	Lights      int
	Casters     int
	CasterItems int
	Errors      int
}

// Report is the summary of one profiling interval.
type Report struct {
	Frames      int
	FPS         float64
	AvgItems    float64
	AvgLights   float64
	AvgCasters  float64
	AvgShadows  float64
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	MaxPauseUs  uint64
	Errors      int
}

// Profiler tracks frame rate, render workload and memory statistics.
// Logs a Report at a configurable interval.
type Profiler struct {
	logger *zap.Logger
	now    func() time.Time

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	items       int
	lights      int
	casters     int
	casterItems int
	errors      int

	last Report
}

// NewProfiler creates a new Profiler logging to logger.
// Update interval defaults to 1 second.
//
// Parameters:
//   - logger: receives one Info entry per interval
//   - options: functional options for the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *zap.Logger, options ...ProfilerBuilderOption) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Profiler{
		logger:         logger.Named("profiler"),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame with the frame's workload.
// Logs a Report when the update interval has elapsed.
//
// Parameters:
//   - stats: the workload of the frame just rendered
//
// Returns:
//   - bool: true if a report was logged this tick, false otherwise
func (p *Profiler) Tick(stats FrameStats) bool {
	p.frameCount++
	p.items += stats.Items
	p.lights += stats.Lights
	p.casters += stats.Casters
	p.casterItems += stats.CasterItems
	p.errors += stats.Errors

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	frames := float64(p.frameCount)
	report := Report{
		Frames:      p.frameCount,
		FPS:         frames / elapsed.Seconds(),
		AvgItems:    float64(p.items) / frames,
		AvgLights:   float64(p.lights) / frames,
		AvgCasters:  float64(p.casters) / frames,
		AvgShadows:  float64(p.casterItems) / frames,
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
		Errors:      p.errors,
	}

	// PauseNs is a circular buffer of the last 256 GC pauses.
	startIdx := p.lastGCCount
	if report.GCCount-startIdx > 256 {
		startIdx = report.GCCount - 256
	}
	for i := startIdx; i < report.GCCount; i++ {
		report.MaxPauseUs = max(report.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	p.logger.Info("frame stats",
		zap.Float64("fps", report.FPS),
		zap.Float64("items", report.AvgItems),
		zap.Float64("lights", report.AvgLights),
		zap.Float64("casters", report.AvgCasters),
		zap.Float64("shadow_items", report.AvgShadows),
		zap.Int("errors", report.Errors),
		zap.Float64("heap_mb", report.HeapMB),
		zap.Float64("alloc_rate_mb", report.AllocRateMB),
		zap.Uint32("gc", report.GCCount),
		zap.Uint64("gc_max_pause_us", report.MaxPauseUs),
	)

	p.last = report
	p.frameCount = 0
	p.items, p.lights, p.casters, p.casterItems, p.errors = 0, 0, 0, 0, 0
	p.lastTime = currentTime
	p.lastGCCount = report.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recently logged report.
//
// Returns:
//   - Report: the report, zero before the first interval elapses
func (p *Profiler) Last() Report {
	return p.last
}
