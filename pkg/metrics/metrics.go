package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector collects real-time performance metrics for a worker
// pool and its companion stack
type MetricsCollector struct {
	// Task metrics
	tasksSubmitted uint64
	tasksCompleted uint64
	tasksFailed    uint64
	tasksDropped   uint64
	totalTaskTime  uint64 // in nanoseconds

	// Stack metrics
	stackPushes   uint64
	stackPops     uint64
	stackEmptyPops uint64

	// Task timing buckets (histogram)
	mu          sync.RWMutex
	taskTimings *TimingHistogram

	// Start time for uptime calculation
	startTime time.Time
}

// TimingHistogram stores timing data in buckets for histogram generation
type TimingHistogram struct {
	// Buckets: <1ms, 1-10ms, 10-100ms, 100ms-1s, >1s
	bucket0_1ms      uint64
	bucket1_10ms     uint64
	bucket10_100ms   uint64
	bucket100_1000ms uint64
	bucket1000ms     uint64

	// P50, P95, P99 tracking
	mu               sync.Mutex
	recentTimings    []time.Duration // Keep last N timings
	maxRecentTimings int
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		taskTimings: NewTimingHistogram(1000),
		startTime:   time.Now(),
	}
}

// NewTimingHistogram creates a new timing histogram
func NewTimingHistogram(maxRecent int) *TimingHistogram {
	return &TimingHistogram{
		recentTimings:    make([]time.Duration, 0, maxRecent),
		maxRecentTimings: maxRecent,
	}
}

// RecordTask records a task execution
func (mc *MetricsCollector) RecordTask(duration time.Duration, success bool) {
	atomic.AddUint64(&mc.tasksCompleted, 1)
	if !success {
		atomic.AddUint64(&mc.tasksFailed, 1)
	}
	atomic.AddUint64(&mc.totalTaskTime, uint64(duration.Nanoseconds()))
	mc.TaskTimings().Record(duration)
}

// TaskTimings returns the current task timing histogram
func (mc *MetricsCollector) TaskTimings() *TimingHistogram {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.taskTimings
}

// RecordSubmit records a task submission
func (mc *MetricsCollector) RecordSubmit() {
	atomic.AddUint64(&mc.tasksSubmitted, 1)
}

// RecordDropped records tasks discarded at shutdown
func (mc *MetricsCollector) RecordDropped(n uint64) {
	atomic.AddUint64(&mc.tasksDropped, n)
}

// RecordPush records a stack push
func (mc *MetricsCollector) RecordPush() {
	atomic.AddUint64(&mc.stackPushes, 1)
}

// RecordPop records a stack pop; found indicates whether a value was returned
func (mc *MetricsCollector) RecordPop(found bool) {
	atomic.AddUint64(&mc.stackPops, 1)
	if !found {
		atomic.AddUint64(&mc.stackEmptyPops, 1)
	}
}

// Record adds a timing sample to the histogram
func (th *TimingHistogram) Record(duration time.Duration) {
	ms := duration.Milliseconds()

	switch {
	case ms < 1:
		atomic.AddUint64(&th.bucket0_1ms, 1)
	case ms < 10:
		atomic.AddUint64(&th.bucket1_10ms, 1)
	case ms < 100:
		atomic.AddUint64(&th.bucket10_100ms, 1)
	case ms < 1000:
		atomic.AddUint64(&th.bucket100_1000ms, 1)
	default:
		atomic.AddUint64(&th.bucket1000ms, 1)
	}

	th.mu.Lock()
	if len(th.recentTimings) >= th.maxRecentTimings {
		// Drop the oldest half to amortize copying
		copy(th.recentTimings, th.recentTimings[th.maxRecentTimings/2:])
		th.recentTimings = th.recentTimings[:th.maxRecentTimings-th.maxRecentTimings/2]
	}
	th.recentTimings = append(th.recentTimings, duration)
	th.mu.Unlock()
}

// Buckets returns the histogram bucket counts in ascending bound order
func (th *TimingHistogram) Buckets() [5]uint64 {
	return [5]uint64{
		atomic.LoadUint64(&th.bucket0_1ms),
		atomic.LoadUint64(&th.bucket1_10ms),
		atomic.LoadUint64(&th.bucket10_100ms),
		atomic.LoadUint64(&th.bucket100_1000ms),
		atomic.LoadUint64(&th.bucket1000ms),
	}
}

// Percentile returns the p-th percentile (0-100) over the recent window.
// Returns 0 if no samples have been recorded.
func (th *TimingHistogram) Percentile(p float64) time.Duration {
	th.mu.Lock()
	defer th.mu.Unlock()

	if len(th.recentTimings) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(th.recentTimings))
	copy(sorted, th.recentTimings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(float64(len(sorted)-1) * p / 100.0)
	return sorted[idx]
}

// Snapshot is a point-in-time view of all collected metrics
type Snapshot struct {
	UptimeSeconds  float64 `json:"uptime_seconds"`
	TasksSubmitted uint64  `json:"tasks_submitted"`
	TasksCompleted uint64  `json:"tasks_completed"`
	TasksFailed    uint64  `json:"tasks_failed"`
	TasksDropped   uint64  `json:"tasks_dropped"`
	TotalTaskTimeNs uint64 `json:"total_task_time_ns"`

	StackPushes    uint64 `json:"stack_pushes"`
	StackPops      uint64 `json:"stack_pops"`
	StackEmptyPops uint64 `json:"stack_empty_pops"`

	TaskP50Ms float64 `json:"task_p50_ms"`
	TaskP95Ms float64 `json:"task_p95_ms"`
	TaskP99Ms float64 `json:"task_p99_ms"`
}

// GetSnapshot returns a point-in-time snapshot of all metrics
func (mc *MetricsCollector) GetSnapshot() Snapshot {
	timings := mc.TaskTimings()
	return Snapshot{
		UptimeSeconds:   time.Since(mc.startTime).Seconds(),
		TasksSubmitted:  atomic.LoadUint64(&mc.tasksSubmitted),
		TasksCompleted:  atomic.LoadUint64(&mc.tasksCompleted),
		TasksFailed:     atomic.LoadUint64(&mc.tasksFailed),
		TasksDropped:    atomic.LoadUint64(&mc.tasksDropped),
		TotalTaskTimeNs: atomic.LoadUint64(&mc.totalTaskTime),
		StackPushes:     atomic.LoadUint64(&mc.stackPushes),
		StackPops:       atomic.LoadUint64(&mc.stackPops),
		StackEmptyPops:  atomic.LoadUint64(&mc.stackEmptyPops),
		TaskP50Ms:       float64(timings.Percentile(50)) / float64(time.Millisecond),
		TaskP95Ms:       float64(timings.Percentile(95)) / float64(time.Millisecond),
		TaskP99Ms:       float64(timings.Percentile(99)) / float64(time.Millisecond),
	}
}

// Reset zeroes all counters and timings. The start time is preserved.
func (mc *MetricsCollector) Reset() {
	atomic.StoreUint64(&mc.tasksSubmitted, 0)
	atomic.StoreUint64(&mc.tasksCompleted, 0)
	atomic.StoreUint64(&mc.tasksFailed, 0)
	atomic.StoreUint64(&mc.tasksDropped, 0)
	atomic.StoreUint64(&mc.totalTaskTime, 0)
	atomic.StoreUint64(&mc.stackPushes, 0)
	atomic.StoreUint64(&mc.stackPops, 0)
	atomic.StoreUint64(&mc.stackEmptyPops, 0)

	mc.mu.Lock()
	mc.taskTimings = NewTimingHistogram(1000)
	mc.mu.Unlock()
}
