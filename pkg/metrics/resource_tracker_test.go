package metrics

import (
	"testing"
	"time"
)

func TestResourceTracker_GetStats(t *testing.T) {
	rt := NewResourceTracker(nil)
	defer rt.Stop()

	stats := rt.GetStats()
	if stats.HeapInUse == 0 {
		t.Error("Expected non-zero heap usage")
	}
	if stats.NumGoroutines < 1 {
		t.Errorf("Expected at least 1 goroutine, got %d", stats.NumGoroutines)
	}
	if stats.NumCPU < 1 {
		t.Errorf("Expected at least 1 CPU, got %d", stats.NumCPU)
	}
}

func TestResourceTracker_Sampling(t *testing.T) {
	rt := NewResourceTracker(&ResourceTrackerConfig{
		SampleInterval: 10 * time.Millisecond,
		MaxSamples:     5,
	})

	time.Sleep(100 * time.Millisecond)
	rt.Stop()

	samples := rt.GetSamples()
	if len(samples) == 0 {
		t.Fatal("Expected at least one sample")
	}
	if len(samples) > 5 {
		t.Errorf("Expected history bounded at 5 samples, got %d", len(samples))
	}

	for _, s := range samples {
		if s.Timestamp.IsZero() {
			t.Error("Sample has zero timestamp")
		}
	}
}

func TestResourceTracker_StopIdempotent(t *testing.T) {
	rt := NewResourceTracker(nil)

	rt.Stop()
	rt.Stop()
}
