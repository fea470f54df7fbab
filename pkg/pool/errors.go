package pool

import "errors"

var (
	// ErrShutdown is returned when submitting to a pool whose shutdown has begun
	ErrShutdown = errors.New("pool is shut down")

	// ErrNilTask is returned when submitting a nil task
	ErrNilTask = errors.New("task cannot be nil")
)
