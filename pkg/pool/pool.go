// Package pool provides a fixed-size worker pool that drains a FIFO queue
// of tasks under a mutex and condition variable, with graceful shutdown.
package pool

import (
	"fmt"
	"sync"

	"github.com/mnohosten/taskpool/pkg/concurrent"
)

// Task represents a unit of work to be executed by the worker pool
type Task interface {
	Execute() error
}

// TaskFunc is a function that implements the Task interface
type TaskFunc func() error

// Execute implements the Task interface for TaskFunc
func (f TaskFunc) Execute() error {
	return f()
}

// FailureHandler receives errors from tasks that returned a non-nil error
// or panicked. It is invoked on the worker goroutine, outside the pool
// mutex, after the failure has been counted.
type FailureHandler func(err error)

// Config holds configuration for creating a worker pool
type Config struct {
	// NumWorkers is the number of worker goroutines to spawn.
	// Values below 1 are clamped to 1.
	NumWorkers int

	// OnFailure, if set, is called for every task that fails.
	// Failures are always counted in Stats regardless.
	OnFailure FailureHandler
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		NumWorkers: 4,
	}
}

// Pool executes submitted tasks on a fixed set of long-lived worker
// goroutines. Tasks are dispatched in FIFO order from a single queue
// guarded by the pool mutex; workers park on a condition variable until
// a task arrives or shutdown is signaled.
//
// A task that returns an error or panics never kills its worker: failures
// are recovered at the loop boundary, counted, and optionally reported
// through the configured FailureHandler.
type Pool struct {
	numWorkers int
	onFailure  FailureHandler

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []Task
	stopped bool // no new submissions accepted
	drain   bool // execute remaining queued tasks before exiting

	wg     sync.WaitGroup // worker goroutines
	taskWg sync.WaitGroup // accepted tasks, for Wait

	tasksSubmitted *concurrent.Counter
	tasksActive    *concurrent.Counter
	tasksDone      *concurrent.Counter
	tasksFailed    *concurrent.Counter
	tasksDropped   *concurrent.Counter
}

// Stats holds statistics about the worker pool
type Stats struct {
	NumWorkers     int   `json:"num_workers"`
	TasksSubmitted int64 `json:"tasks_submitted"`
	TasksActive    int64 `json:"tasks_active"`
	TasksDone      int64 `json:"tasks_done"`
	TasksFailed    int64 `json:"tasks_failed"`
	TasksDropped   int64 `json:"tasks_dropped"`
	TasksQueued    int64 `json:"tasks_queued"`
}

// New creates a worker pool and spawns its workers immediately.
// Exactly config.NumWorkers workers exist between New and shutdown.
func New(config *Config) *Pool {
	if config == nil {
		config = DefaultConfig()
	}

	numWorkers := config.NumWorkers
	if numWorkers < 1 {
		numWorkers = 1
	}

	p := &Pool{
		numWorkers:     numWorkers,
		onFailure:      config.OnFailure,
		tasksSubmitted: concurrent.NewCounter(),
		tasksActive:    concurrent.NewCounter(),
		tasksDone:      concurrent.NewCounter(),
		tasksFailed:    concurrent.NewCounter(),
		tasksDropped:   concurrent.NewCounter(),
	}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	return p
}

// worker is the main loop for a worker goroutine
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		p.mu.Lock()

		// Guard against spurious wakeups: re-check the predicate
		// every time the condition variable returns.
		for len(p.queue) == 0 && !p.stopped {
			p.cond.Wait()
		}

		if p.stopped {
			if !p.drain {
				// Discard policy: drop whatever is still queued.
				dropped := len(p.queue)
				p.queue = nil
				p.mu.Unlock()
				for i := 0; i < dropped; i++ {
					p.tasksDropped.Inc()
					p.taskWg.Done()
				}
				return
			}
			if len(p.queue) == 0 {
				p.mu.Unlock()
				return
			}
			// Drain policy with tasks remaining: fall through and execute.
		}

		task := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		// Invoke outside the mutex so submitters and other workers
		// are never blocked on a running task.
		p.tasksActive.Inc()
		p.runTask(task)
		p.tasksActive.Dec()
		p.tasksDone.Inc()
		p.taskWg.Done()
	}
}

// runTask executes a single task, containing failures at the loop boundary
func (p *Pool) runTask(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.recordFailure(fmt.Errorf("task panicked: %v", r))
		}
	}()

	if err := task.Execute(); err != nil {
		p.recordFailure(err)
	}
}

func (p *Pool) recordFailure(err error) {
	p.tasksFailed.Inc()
	if p.onFailure != nil {
		p.onFailure(err)
	}
}

// Submit enqueues a task and wakes one waiting worker.
// Returns ErrShutdown if shutdown has begun; the task is not enqueued.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return ErrNilTask
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrShutdown
	}
	p.queue = append(p.queue, task)
	p.taskWg.Add(1)
	p.mu.Unlock()

	p.tasksSubmitted.Inc()
	p.cond.Signal()
	return nil
}

// SubmitFunc is a convenience method to submit a function as a task
func (p *Pool) SubmitFunc(fn func() error) error {
	if fn == nil {
		return ErrNilTask
	}
	return p.Submit(TaskFunc(fn))
}

// Shutdown gracefully stops the worker pool.
// Tasks already dequeued complete normally; tasks still in the queue are
// DISCARDED without execution (see ShutdownAndDrain for the alternative).
// Blocks until all workers are joined. Idempotent.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		p.drain = false
	}
	p.mu.Unlock()

	p.cond.Broadcast()
	p.wg.Wait()
}

// ShutdownAndDrain gracefully stops the worker pool after executing every
// task remaining in the queue. Blocks until all workers are joined.
// Idempotent; has no effect on the policy if Shutdown was called first.
func (p *Pool) ShutdownAndDrain() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		p.drain = true
	}
	p.mu.Unlock()

	p.cond.Broadcast()
	p.wg.Wait()
}

// Wait blocks until every accepted task has been executed or discarded.
// It does not shut down the pool.
func (p *Pool) Wait() {
	p.taskWg.Wait()
}

// IsShuttingDown returns true if shutdown has begun
func (p *Pool) IsShuttingDown() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// NumWorkers returns the fixed number of workers
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Stats returns statistics about the worker pool
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	queued := int64(len(p.queue))
	p.mu.Unlock()

	return Stats{
		NumWorkers:     p.numWorkers,
		TasksSubmitted: p.tasksSubmitted.Load(),
		TasksActive:    p.tasksActive.Load(),
		TasksDone:      p.tasksDone.Load(),
		TasksFailed:    p.tasksFailed.Load(),
		TasksDropped:   p.tasksDropped.Load(),
		TasksQueued:    queued,
	}
}
