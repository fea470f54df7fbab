package metrics

import (
	"time"
)

// WrapTask returns a task function that records its duration in the
// collector and, when a slow task log is provided, logs slow executions.
// The wrapped function reports submission separately via RecordSubmit.
func WrapTask(collector *MetricsCollector, slowLog *SlowTaskLog, name string, fn func() error) func() error {
	return func() error {
		start := time.Now()
		err := fn()
		duration := time.Since(start)

		collector.RecordTask(duration, err == nil)

		if slowLog != nil {
			entry := SlowTaskEntry{
				Duration: duration,
				TaskName: name,
			}
			if err != nil {
				entry.Error = err.Error()
			}
			slowLog.Record(entry)
		}

		return err
	}
}
