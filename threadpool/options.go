package threadpool

import "github.com/sirupsen/logrus"

// Hooks let you observe pool lifecycle events. Hooks run on the goroutine
// that triggered them and must not block for long.
type Hooks struct {
	// OnWorkerStart runs on each new worker goroutine before it accepts work.
	// A non-nil error aborts pool creation.
	OnWorkerStart func(workerID int) error

	OnSubmit  func(taskID uint64)
	OnStart   func(workerID int, taskID uint64)
	OnFinish  func(workerID int, taskID uint64, err error)
	OnDiscard func(taskID uint64)
}

// Options configure the pool.
type Options struct {
	// Name labels logs and metrics. Defaults to "pool-" plus a random suffix.
	Name    string
	Logger  logrus.FieldLogger
	Metrics *Metrics
	Hooks   Hooks
}
