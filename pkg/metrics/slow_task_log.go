package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// SlowTaskLog tracks and logs tasks that exceed a threshold duration
type SlowTaskLog struct {
	threshold  time.Duration
	maxEntries int
	logFile    *os.File
	entries    []SlowTaskEntry
	mu         sync.RWMutex
	enabled    bool
	logToFile  bool
}

// SlowTaskEntry represents a single slow task log entry
type SlowTaskEntry struct {
	Timestamp  time.Time     `json:"timestamp"`
	Duration   time.Duration `json:"duration_ns"`
	DurationMS float64       `json:"duration_ms"`
	TaskName   string        `json:"task_name,omitempty"`
	WorkerID   int           `json:"worker_id"`
	Error      string        `json:"error,omitempty"`
}

// SlowTaskLogConfig holds configuration for the slow task log
type SlowTaskLogConfig struct {
	Threshold   time.Duration // Minimum duration to log (default: 100ms)
	MaxEntries  int           // Maximum in-memory entries (default: 1000)
	LogFilePath string        // Optional file path for persistent logging
	Enabled     bool          // Enable/disable logging (default: true)
}

// DefaultSlowTaskLogConfig returns default configuration
func DefaultSlowTaskLogConfig() *SlowTaskLogConfig {
	return &SlowTaskLogConfig{
		Threshold:  100 * time.Millisecond,
		MaxEntries: 1000,
		Enabled:    true,
	}
}

// NewSlowTaskLog creates a new slow task log
func NewSlowTaskLog(config *SlowTaskLogConfig) (*SlowTaskLog, error) {
	if config == nil {
		config = DefaultSlowTaskLogConfig()
	}

	stl := &SlowTaskLog{
		threshold:  config.Threshold,
		maxEntries: config.MaxEntries,
		entries:    make([]SlowTaskEntry, 0, config.MaxEntries),
		enabled:    config.Enabled,
	}

	if config.LogFilePath != "" {
		f, err := os.OpenFile(config.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open slow task log file: %w", err)
		}
		stl.logFile = f
		stl.logToFile = true
	}

	return stl, nil
}

// Record logs a task if its duration exceeds the threshold
func (stl *SlowTaskLog) Record(entry SlowTaskEntry) {
	if !stl.enabled {
		return
	}
	if entry.Duration < stl.threshold {
		return
	}

	entry.Timestamp = time.Now()
	entry.DurationMS = float64(entry.Duration) / float64(time.Millisecond)

	stl.mu.Lock()
	if len(stl.entries) >= stl.maxEntries {
		stl.entries = stl.entries[1:]
	}
	stl.entries = append(stl.entries, entry)
	stl.mu.Unlock()

	if stl.logToFile {
		stl.writeToFile(entry)
	}
}

// writeToFile appends one JSON line to the log file
func (stl *SlowTaskLog) writeToFile(entry SlowTaskEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	stl.mu.Lock()
	defer stl.mu.Unlock()
	if stl.logFile != nil {
		stl.logFile.Write(append(data, '\n'))
	}
}

// Entries returns a copy of the in-memory entries, newest last
func (stl *SlowTaskLog) Entries() []SlowTaskEntry {
	stl.mu.RLock()
	defer stl.mu.RUnlock()

	out := make([]SlowTaskEntry, len(stl.entries))
	copy(out, stl.entries)
	return out
}

// Threshold returns the configured slow-task threshold
func (stl *SlowTaskLog) Threshold() time.Duration {
	return stl.threshold
}

// Clear removes all in-memory entries
func (stl *SlowTaskLog) Clear() {
	stl.mu.Lock()
	stl.entries = stl.entries[:0]
	stl.mu.Unlock()
}

// Close closes the log file if one was configured
func (stl *SlowTaskLog) Close() error {
	stl.mu.Lock()
	defer stl.mu.Unlock()

	if stl.logFile != nil {
		err := stl.logFile.Close()
		stl.logFile = nil
		stl.logToFile = false
		return err
	}
	return nil
}
