package metrics

import (
	"runtime"
	"sync"
	"time"
)

// ResourceTracker samples heap, goroutine, and GC statistics on a fixed
// interval and keeps a bounded history for trend inspection
type ResourceTracker struct {
	mu             sync.RWMutex
	sampleInterval time.Duration
	maxSamples     int
	samples        []ResourceSample
	stopChan       chan struct{}
	stopOnce       sync.Once
	wg             sync.WaitGroup
}

// ResourceSample represents a point-in-time resource snapshot
type ResourceSample struct {
	Timestamp     time.Time `json:"timestamp"`
	HeapInUse     uint64    `json:"heap_in_use_bytes"`
	StackInUse    uint64    `json:"stack_in_use_bytes"`
	NumGoroutines int       `json:"num_goroutines"`
	AllocBytes    uint64    `json:"alloc_bytes"`
	GCPauseNs     uint64    `json:"gc_pause_ns"`
	GCRuns        uint32    `json:"gc_runs"`
}

// ResourceStats contains current resource usage statistics
type ResourceStats struct {
	HeapInUse      uint64  `json:"heap_in_use_bytes"`
	HeapInUseMB    float64 `json:"heap_in_use_mb"`
	StackInUse     uint64  `json:"stack_in_use_bytes"`
	AllocBytes     uint64  `json:"alloc_bytes"`
	NumGoroutines  int     `json:"num_goroutines"`
	GCPauseTotalMs float64 `json:"gc_pause_total_ms"`
	GCRuns         uint32  `json:"gc_runs"`
	NumCPU         int     `json:"num_cpu"`
}

// ResourceTrackerConfig holds configuration for the resource tracker
type ResourceTrackerConfig struct {
	SampleInterval time.Duration // How often to sample (default: 10s)
	MaxSamples     int           // Bounded history length (default: 360)
}

// DefaultResourceTrackerConfig returns default configuration
func DefaultResourceTrackerConfig() *ResourceTrackerConfig {
	return &ResourceTrackerConfig{
		SampleInterval: 10 * time.Second,
		MaxSamples:     360,
	}
}

// NewResourceTracker creates a resource tracker and starts its sampling loop
func NewResourceTracker(config *ResourceTrackerConfig) *ResourceTracker {
	if config == nil {
		config = DefaultResourceTrackerConfig()
	}

	rt := &ResourceTracker{
		sampleInterval: config.SampleInterval,
		maxSamples:     config.MaxSamples,
		samples:        make([]ResourceSample, 0, config.MaxSamples),
		stopChan:       make(chan struct{}),
	}

	rt.wg.Add(1)
	go rt.sampleLoop()

	return rt
}

// sampleLoop records a sample every interval until Stop is called
func (rt *ResourceTracker) sampleLoop() {
	defer rt.wg.Done()

	ticker := time.NewTicker(rt.sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rt.stopChan:
			return
		case <-ticker.C:
			rt.recordSample()
		}
	}
}

// recordSample takes one runtime snapshot and appends it to the history
func (rt *ResourceTracker) recordSample() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	sample := ResourceSample{
		Timestamp:     time.Now(),
		HeapInUse:     m.HeapInuse,
		StackInUse:    m.StackInuse,
		NumGoroutines: runtime.NumGoroutine(),
		AllocBytes:    m.TotalAlloc,
		GCPauseNs:     m.PauseTotalNs,
		GCRuns:        m.NumGC,
	}

	rt.mu.Lock()
	if len(rt.samples) >= rt.maxSamples {
		rt.samples = rt.samples[1:]
	}
	rt.samples = append(rt.samples, sample)
	rt.mu.Unlock()
}

// GetStats returns current resource usage statistics
func (rt *ResourceTracker) GetStats() ResourceStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return ResourceStats{
		HeapInUse:      m.HeapInuse,
		HeapInUseMB:    float64(m.HeapInuse) / (1024 * 1024),
		StackInUse:     m.StackInuse,
		AllocBytes:     m.TotalAlloc,
		NumGoroutines:  runtime.NumGoroutine(),
		GCPauseTotalMs: float64(m.PauseTotalNs) / 1e6,
		GCRuns:         m.NumGC,
		NumCPU:         runtime.NumCPU(),
	}
}

// GetSamples returns a copy of the sampling history
func (rt *ResourceTracker) GetSamples() []ResourceSample {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	out := make([]ResourceSample, len(rt.samples))
	copy(out, rt.samples)
	return out
}

// Stop terminates the sampling loop. Idempotent.
func (rt *ResourceTracker) Stop() {
	rt.stopOnce.Do(func() {
		close(rt.stopChan)
	})
	rt.wg.Wait()
}
