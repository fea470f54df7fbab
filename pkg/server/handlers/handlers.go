package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mnohosten/taskpool/pkg/metrics"
	"github.com/mnohosten/taskpool/pkg/pool"
)

// Handlers holds the observed pool and its instrumentation, and provides
// HTTP handlers
type Handlers struct {
	pool      *pool.Pool
	collector *metrics.MetricsCollector
	tracker   *metrics.ResourceTracker
	slowLog   *metrics.SlowTaskLog
}

// New creates a new Handlers instance
func New(p *pool.Pool, collector *metrics.MetricsCollector, tracker *metrics.ResourceTracker, slowLog *metrics.SlowTaskLog) *Handlers {
	return &Handlers{
		pool:      p,
		collector: collector,
		tracker:   tracker,
		slowLog:   slowLog,
	}
}

// Error types for consistent error handling

type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return e.Message
}

// writeError writes an error response with appropriate HTTP status code
func writeError(w http.ResponseWriter, err error) {
	var statusCode int
	var errorType string

	switch err.(type) {
	case *BadRequestError:
		statusCode = http.StatusBadRequest
		errorType = "bad_request"
	default:
		statusCode = http.StatusInternalServerError
		errorType = "internal_error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"type":    errorType,
			"message": err.Error(),
		},
	})
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// Health returns a handler for the health endpoint
func (h *Handlers) Health(startTime time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		if h.pool.IsShuttingDown() {
			status = "shutting_down"
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":         status,
			"uptime_seconds": time.Since(startTime).Seconds(),
			"num_workers":    h.pool.NumWorkers(),
		})
	}
}

// StatsResponse bundles pool stats with the metrics snapshot
type StatsResponse struct {
	Pool    pool.Stats       `json:"pool"`
	Metrics metrics.Snapshot `json:"metrics"`
}

// GetStats serves the combined pool and metrics snapshot
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		Pool:    h.pool.Stats(),
		Metrics: h.collector.GetSnapshot(),
	})
}

// GetResources serves current runtime resource usage and sampling history
func (h *Handlers) GetResources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"current": h.tracker.GetStats(),
		"samples": h.tracker.GetSamples(),
	})
}

// GetSlowTasks serves the recent slow-task entries
func (h *Handlers) GetSlowTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"threshold_ms": float64(h.slowLog.Threshold()) / float64(time.Millisecond),
		"entries":      h.slowLog.Entries(),
	})
}

// ShutdownPool initiates pool shutdown. The `drain` query parameter picks
// the policy: drain=true executes queued tasks, anything else discards
// them. The pool cannot be restarted afterwards.
func (h *Handlers) ShutdownPool(w http.ResponseWriter, r *http.Request) {
	drain := r.URL.Query().Get("drain") == "true"

	if drain {
		h.pool.ShutdownAndDrain()
	} else {
		h.pool.Shutdown()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"shutdown": true,
		"drained":  drain,
		"stats":    h.pool.Stats(),
	})
}
