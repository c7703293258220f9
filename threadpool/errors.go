package threadpool

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidSize is returned by New when the worker count is not positive.
	ErrInvalidSize = errors.New("threadpool: worker count must be positive")

	// ErrRejected is returned by Submit once shutdown has begun.
	// It is an expected outcome during shutdown races, not a failure of the pool.
	ErrRejected = errors.New("threadpool: submission rejected")

	// ErrNilTask is returned by Submit for a nil callback.
	ErrNilTask = errors.New("threadpool: nil task")

	// ErrAlreadyDestroyed is returned by every Destroy call but the first.
	ErrAlreadyDestroyed = errors.New("threadpool: already destroyed")

	// ErrTaskExited is the PanicError value reported for a task that called
	// runtime.Goexit instead of returning.
	ErrTaskExited = errors.New("threadpool: task called runtime.Goexit")
)

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("threadpool: task panicked: %v", e.Value)
}

// Unwrap exposes the recovered value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
