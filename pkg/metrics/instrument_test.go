package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestWrapTask_RecordsSuccess(t *testing.T) {
	mc := NewMetricsCollector()

	fn := WrapTask(mc, nil, "ok", func() error { return nil })
	if err := fn(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	snap := mc.GetSnapshot()
	if snap.TasksCompleted != 1 || snap.TasksFailed != 0 {
		t.Errorf("Expected 1 completed, 0 failed; got %d/%d", snap.TasksCompleted, snap.TasksFailed)
	}
}

func TestWrapTask_RecordsFailureAndSlowLog(t *testing.T) {
	mc := NewMetricsCollector()
	stl, err := NewSlowTaskLog(&SlowTaskLogConfig{
		Threshold:  time.Millisecond,
		MaxEntries: 10,
		Enabled:    true,
	})
	if err != nil {
		t.Fatalf("Failed to create slow task log: %v", err)
	}
	defer stl.Close()

	fn := WrapTask(mc, stl, "slow-fail", func() error {
		time.Sleep(5 * time.Millisecond)
		return errors.New("boom")
	})
	if err := fn(); err == nil {
		t.Fatal("Expected error to propagate")
	}

	snap := mc.GetSnapshot()
	if snap.TasksFailed != 1 {
		t.Errorf("Expected 1 failed task, got %d", snap.TasksFailed)
	}

	entries := stl.Entries()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 slow entry, got %d", len(entries))
	}
	if entries[0].TaskName != "slow-fail" || entries[0].Error != "boom" {
		t.Errorf("Unexpected entry: %+v", entries[0])
	}
}
