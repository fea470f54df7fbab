package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsCollector_RecordTask(t *testing.T) {
	mc := NewMetricsCollector()

	mc.RecordTask(5*time.Millisecond, true)
	mc.RecordTask(20*time.Millisecond, false)

	snap := mc.GetSnapshot()
	if snap.TasksCompleted != 2 {
		t.Errorf("Expected 2 completed tasks, got %d", snap.TasksCompleted)
	}
	if snap.TasksFailed != 1 {
		t.Errorf("Expected 1 failed task, got %d", snap.TasksFailed)
	}
	if snap.TotalTaskTimeNs != uint64(25*time.Millisecond) {
		t.Errorf("Expected 25ms total task time, got %dns", snap.TotalTaskTimeNs)
	}
}

func TestMetricsCollector_StackCounters(t *testing.T) {
	mc := NewMetricsCollector()

	mc.RecordPush()
	mc.RecordPush()
	mc.RecordPop(true)
	mc.RecordPop(false)

	snap := mc.GetSnapshot()
	if snap.StackPushes != 2 {
		t.Errorf("Expected 2 pushes, got %d", snap.StackPushes)
	}
	if snap.StackPops != 2 {
		t.Errorf("Expected 2 pops, got %d", snap.StackPops)
	}
	if snap.StackEmptyPops != 1 {
		t.Errorf("Expected 1 empty pop, got %d", snap.StackEmptyPops)
	}
}

func TestMetricsCollector_Reset(t *testing.T) {
	mc := NewMetricsCollector()

	mc.RecordSubmit()
	mc.RecordTask(time.Millisecond, true)
	mc.RecordPush()
	mc.Reset()

	snap := mc.GetSnapshot()
	if snap.TasksSubmitted != 0 || snap.TasksCompleted != 0 || snap.StackPushes != 0 {
		t.Errorf("Expected zeroed counters after reset, got %+v", snap)
	}
}

func TestMetricsCollector_ConcurrentRecording(t *testing.T) {
	mc := NewMetricsCollector()
	goroutines := 8
	iterations := 500

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				mc.RecordSubmit()
				mc.RecordTask(time.Microsecond, true)
			}
		}()
	}

	wg.Wait()

	snap := mc.GetSnapshot()
	expected := uint64(goroutines * iterations)
	if snap.TasksSubmitted != expected {
		t.Errorf("Expected %d submitted, got %d", expected, snap.TasksSubmitted)
	}
	if snap.TasksCompleted != expected {
		t.Errorf("Expected %d completed, got %d", expected, snap.TasksCompleted)
	}
}

func TestTimingHistogram_Buckets(t *testing.T) {
	th := NewTimingHistogram(100)

	th.Record(500 * time.Microsecond)  // <1ms
	th.Record(5 * time.Millisecond)    // 1-10ms
	th.Record(50 * time.Millisecond)   // 10-100ms
	th.Record(500 * time.Millisecond)  // 100-1000ms
	th.Record(1500 * time.Millisecond) // >1s

	buckets := th.Buckets()
	for i, count := range buckets {
		if count != 1 {
			t.Errorf("Expected bucket %d to hold 1 sample, got %d", i, count)
		}
	}
}

func TestTimingHistogram_Percentile(t *testing.T) {
	th := NewTimingHistogram(100)

	if p := th.Percentile(50); p != 0 {
		t.Errorf("Expected 0 percentile with no samples, got %v", p)
	}

	for i := 1; i <= 100; i++ {
		th.Record(time.Duration(i) * time.Millisecond)
	}

	p50 := th.Percentile(50)
	if p50 < 40*time.Millisecond || p50 > 60*time.Millisecond {
		t.Errorf("Expected P50 near 50ms, got %v", p50)
	}

	p99 := th.Percentile(99)
	if p99 < 90*time.Millisecond {
		t.Errorf("Expected P99 above 90ms, got %v", p99)
	}
}

func TestTimingHistogram_WindowBounded(t *testing.T) {
	th := NewTimingHistogram(10)

	for i := 0; i < 100; i++ {
		th.Record(time.Millisecond)
	}

	th.mu.Lock()
	n := len(th.recentTimings)
	th.mu.Unlock()

	if n > 10 {
		t.Errorf("Expected recent window bounded at 10, got %d", n)
	}
}
