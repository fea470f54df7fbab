package metrics

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// PrometheusExporter exports metrics in Prometheus text format
type PrometheusExporter struct {
	collector       *MetricsCollector
	resourceTracker *ResourceTracker
	namespace       string // Metric namespace prefix (e.g., "taskpool")
}

// NewPrometheusExporter creates a new Prometheus exporter
func NewPrometheusExporter(collector *MetricsCollector, resourceTracker *ResourceTracker) *PrometheusExporter {
	return &PrometheusExporter{
		collector:       collector,
		resourceTracker: resourceTracker,
		namespace:       "taskpool",
	}
}

// SetNamespace sets the metric namespace prefix
func (pe *PrometheusExporter) SetNamespace(namespace string) {
	pe.namespace = namespace
}

// WriteMetrics writes all metrics in Prometheus text format to the writer
// Format: https://prometheus.io/docs/instrumenting/exposition_formats/
func (pe *PrometheusExporter) WriteMetrics(w io.Writer) error {
	// Uptime
	uptime := time.Since(pe.collector.startTime).Seconds()
	if err := pe.writeGauge(w, "uptime_seconds", "Process uptime in seconds", uptime); err != nil {
		return err
	}

	// Task counters
	tasksSubmitted := atomic.LoadUint64(&pe.collector.tasksSubmitted)
	tasksCompleted := atomic.LoadUint64(&pe.collector.tasksCompleted)
	tasksFailed := atomic.LoadUint64(&pe.collector.tasksFailed)
	tasksDropped := atomic.LoadUint64(&pe.collector.tasksDropped)
	totalTaskTime := atomic.LoadUint64(&pe.collector.totalTaskTime)

	if err := pe.writeCounter(w, "tasks_submitted_total", "Total number of tasks submitted to the pool", tasksSubmitted); err != nil {
		return err
	}
	if err := pe.writeCounter(w, "tasks_completed_total", "Total number of tasks executed", tasksCompleted); err != nil {
		return err
	}
	if err := pe.writeCounter(w, "tasks_failed_total", "Total number of tasks that returned an error or panicked", tasksFailed); err != nil {
		return err
	}
	if err := pe.writeCounter(w, "tasks_dropped_total", "Total number of tasks discarded at shutdown", tasksDropped); err != nil {
		return err
	}
	if err := pe.writeCounter(w, "task_duration_nanoseconds_total", "Total task execution time in nanoseconds", totalTaskTime); err != nil {
		return err
	}

	// Task timing histogram and percentiles
	timings := pe.collector.TaskTimings()
	if err := pe.writeHistogram(w, "task_duration_seconds", "Task execution duration histogram", timings); err != nil {
		return err
	}
	if err := pe.writePercentiles(w, "task_duration_seconds", timings); err != nil {
		return err
	}

	// Stack counters
	stackPushes := atomic.LoadUint64(&pe.collector.stackPushes)
	stackPops := atomic.LoadUint64(&pe.collector.stackPops)
	stackEmptyPops := atomic.LoadUint64(&pe.collector.stackEmptyPops)

	if err := pe.writeCounter(w, "stack_pushes_total", "Total number of stack push operations", stackPushes); err != nil {
		return err
	}
	if err := pe.writeCounter(w, "stack_pops_total", "Total number of stack pop operations", stackPops); err != nil {
		return err
	}
	if err := pe.writeCounter(w, "stack_empty_pops_total", "Total number of pops that found the stack empty", stackEmptyPops); err != nil {
		return err
	}

	// Resource metrics
	if pe.resourceTracker != nil {
		rs := pe.resourceTracker.GetStats()
		if err := pe.writeGauge(w, "heap_in_use_bytes", "Heap memory currently in use", float64(rs.HeapInUse)); err != nil {
			return err
		}
		if err := pe.writeGauge(w, "goroutines", "Current number of goroutines", float64(rs.NumGoroutines)); err != nil {
			return err
		}
		if err := pe.writeCounter(w, "gc_runs_total", "Total number of completed GC cycles", uint64(rs.GCRuns)); err != nil {
			return err
		}
	}

	return nil
}

// writeCounter writes a counter metric
func (pe *PrometheusExporter) writeCounter(w io.Writer, name, help string, value uint64) error {
	fullName := pe.namespace + "_" + name
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n", fullName, help); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# TYPE %s counter\n", fullName); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s %d\n", fullName, value)
	return err
}

// writeGauge writes a gauge metric
func (pe *PrometheusExporter) writeGauge(w io.Writer, name, help string, value float64) error {
	fullName := pe.namespace + "_" + name
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n", fullName, help); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# TYPE %s gauge\n", fullName); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s %g\n", fullName, value)
	return err
}

// writeHistogram writes histogram buckets in cumulative le-label form
func (pe *PrometheusExporter) writeHistogram(w io.Writer, name, help string, th *TimingHistogram) error {
	fullName := pe.namespace + "_" + name
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n", fullName, help); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# TYPE %s histogram\n", fullName); err != nil {
		return err
	}

	buckets := th.Buckets()
	bounds := []string{"0.001", "0.01", "0.1", "1"}
	cumulative := uint64(0)
	for i, bound := range bounds {
		cumulative += buckets[i]
		if _, err := fmt.Fprintf(w, "%s_bucket{le=\"%s\"} %d\n", fullName, bound, cumulative); err != nil {
			return err
		}
	}
	cumulative += buckets[4]
	_, err := fmt.Fprintf(w, "%s_bucket{le=\"+Inf\"} %d\n", fullName, cumulative)
	return err
}

// writePercentiles writes P50/P95/P99 summary series from the recent window
func (pe *PrometheusExporter) writePercentiles(w io.Writer, name string, th *TimingHistogram) error {
	fullName := pe.namespace + "_" + name
	for _, q := range []struct {
		label string
		p     float64
	}{
		{"0.5", 50},
		{"0.95", 95},
		{"0.99", 99},
	} {
		v := th.Percentile(q.p).Seconds()
		if _, err := fmt.Fprintf(w, "%s{quantile=\"%s\"} %g\n", fullName, q.label, v); err != nil {
			return err
		}
	}
	return nil
}
