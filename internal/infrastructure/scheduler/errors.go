package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when a job is submitted before Start or after Stop
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when a round has more projects than free queue slots
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrInvalidConfig is returned for non-positive workers, queue size, timeout or interval
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
