package threadpool

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ThreadPool runs submitted tasks on a fixed set of worker goroutines.
type ThreadPool struct {
	name    string
	size    int
	log     logrus.FieldLogger
	metrics *Metrics
	hooks   Hooks

	cell    *stateCell
	workers []*worker
	wg      sync.WaitGroup
	offline chan struct{}

	live      atomic.Int32
	active    atomic.Int32
	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	rejected  atomic.Int64
	discarded atomic.Int64
}

// Stats is a point-in-time view of a pool.
type Stats struct {
	Name      string
	Size      int
	State     State
	Workers   int
	Active    int
	Pending   int
	Submitted int64
	Completed int64
	Failed    int64
	Rejected  int64
	Discarded int64
}

// New creates a pool with size workers and default options.
func New(size int) (*ThreadPool, error) {
	return NewWithOptions(size, Options{})
}

// NewWithOptions creates a pool with size workers. It returns once every
// worker is live. If a worker fails to start, the workers already running
// are stopped and joined before the error is returned.
func NewWithOptions(size int, opts Options) (*ThreadPool, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "got %d", size)
	}

	name := opts.Name
	if name == "" {
		name = "pool-" + uuid.NewString()[:8]
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	tp := &ThreadPool{
		name:    name,
		size:    size,
		log:     logger.WithField("pool", name),
		metrics: opts.Metrics,
		hooks:   opts.Hooks,
		cell:    newStateCell(),
		workers: make([]*worker, 0, size),
		offline: make(chan struct{}),
	}

	if m := tp.metrics; m != nil {
		tp.cell.observe = func(depth int) { m.SetQueueSize(name, depth) }
	}

	for i := 0; i < size; i++ {
		if err := tp.spawn(i); err != nil {
			tp.log.WithError(err).Debugf("worker %d failed to start, stopping %d started workers", i, len(tp.workers))
			tp.abort()
			return nil, errors.Wrapf(err, "threadpool: start worker %d", i)
		}
	}

	if tp.metrics != nil {
		tp.metrics.SetState(name, Online)
		tp.metrics.SetQueueSize(name, 0)
		tp.metrics.SetActiveWorkers(name, 0)
	}
	tp.log.WithField("workers", size).Info("thread pool online")
	return tp, nil
}

// spawn starts worker id and waits until it is ready or has failed.
func (tp *ThreadPool) spawn(id int) error {
	w := &worker{id: id, pool: tp}
	ready := make(chan error, 1)

	tp.wg.Add(1)
	go w.run(ready)

	if err := <-ready; err != nil {
		return err
	}
	tp.workers = append(tp.workers, w)
	return nil
}

// abort stops the workers started by a failed New. The caller never sees
// the pool, so it leaves no metric series behind.
func (tp *ThreadPool) abort() {
	tp.cell.transition(HardShutdown)
	tp.wg.Wait()
	tp.cell.close()
	close(tp.offline)

	if tp.metrics != nil {
		tp.metrics.forget(tp.name)
	}
}

// Submit queues fn to be called with arg on a worker. It never blocks
// waiting for a free worker. Once Destroy has begun every call returns an
// error wrapping ErrRejected.
//
// Tasks may call Submit on their own pool, but must not call Destroy.
func (tp *ThreadPool) Submit(fn TaskFunc, arg any) error {
	if fn == nil {
		return ErrNilTask
	}

	t, _, st := tp.cell.admit(fn, arg)
	if t == nil {
		tp.rejected.Add(1)
		if tp.metrics != nil {
			tp.metrics.RecordTaskRejected(tp.name)
		}
		tp.log.WithField("state", st).Debug("submission rejected")
		return errors.Wrapf(ErrRejected, "pool is %s", st)
	}

	tp.submitted.Add(1)
	if tp.metrics != nil {
		tp.metrics.RecordTaskSubmitted(tp.name)
	}
	if tp.hooks.OnSubmit != nil {
		tp.hooks.OnSubmit(t.id)
	}
	return nil
}

// Go submits a task that takes no argument.
func (tp *ThreadPool) Go(fn func()) error {
	if fn == nil {
		return ErrNilTask
	}
	return tp.Submit(func(any) { fn() }, nil)
}

// Destroy stops the pool and blocks until every worker has exited.
//
// With waitForPendingTasks the workers drain the queue first. Without it
// each worker finishes the task it is running, if any, and the tasks still
// queued are discarded without running.
//
// Only the first call performs the shutdown. Later or concurrent calls wait
// for the pool to go offline and return ErrAlreadyDestroyed. A later
// Destroy(false) during a graceful drain first escalates it to an immediate
// shutdown, discarding whatever is still queued.
func (tp *ThreadPool) Destroy(waitForPendingTasks bool) error {
	target := HardShutdown
	if waitForPendingTasks {
		target = SoftShutdown
	}

	if _, ok := tp.cell.transition(target); !ok {
		if !waitForPendingTasks && tp.cell.escalate() {
			if tp.metrics != nil {
				tp.metrics.SetState(tp.name, HardShutdown)
			}
			tp.log.WithField("mode", HardShutdown).Info("thread pool drain escalated")
		}
		<-tp.offline
		return ErrAlreadyDestroyed
	}

	if tp.metrics != nil {
		tp.metrics.SetState(tp.name, target)
	}
	tp.log.WithField("mode", target).Info("thread pool shutting down")

	tp.wg.Wait()

	rest := tp.cell.close()
	for _, t := range rest {
		if tp.hooks.OnDiscard != nil {
			tp.hooks.OnDiscard(t.id)
		}
	}
	tp.discarded.Add(int64(len(rest)))

	if tp.metrics != nil {
		tp.metrics.RecordTasksDiscarded(tp.name, len(rest))
		tp.metrics.SetState(tp.name, Offline)
	}
	tp.log.WithFields(logrus.Fields{
		"completed": tp.completed.Load(),
		"failed":    tp.failed.Load(),
		"discarded": len(rest),
	}).Info("thread pool offline")

	close(tp.offline)
	return nil
}

// Done is closed once the pool is offline.
func (tp *ThreadPool) Done() <-chan struct{} {
	return tp.offline
}

// Name returns the pool name used in logs and metrics.
func (tp *ThreadPool) Name() string {
	return tp.name
}

// Size returns the fixed worker count the pool was created with.
func (tp *ThreadPool) Size() int {
	return tp.size
}

// State returns the current lifecycle state.
func (tp *ThreadPool) State() State {
	st, _ := tp.cell.snapshot()
	return st
}

// Workers returns the number of live worker goroutines.
func (tp *ThreadPool) Workers() int {
	return int(tp.live.Load())
}

// Active returns the number of workers currently running a task.
func (tp *ThreadPool) Active() int {
	return int(tp.active.Load())
}

// Pending returns the number of queued tasks not yet picked up.
func (tp *ThreadPool) Pending() int {
	_, pending := tp.cell.snapshot()
	return pending
}

// WorkerStates reports what each worker is doing, indexed by worker ID.
func (tp *ThreadPool) WorkerStates() []WorkerState {
	states := make([]WorkerState, len(tp.workers))
	for i, w := range tp.workers {
		states[i] = WorkerState(w.state.Load())
	}
	return states
}

// Stats returns a snapshot of the pool counters.
func (tp *ThreadPool) Stats() Stats {
	st, pending := tp.cell.snapshot()
	return Stats{
		Name:      tp.name,
		Size:      tp.size,
		State:     st,
		Workers:   tp.Workers(),
		Active:    tp.Active(),
		Pending:   pending,
		Submitted: tp.submitted.Load(),
		Completed: tp.completed.Load(),
		Failed:    tp.failed.Load(),
		Rejected:  tp.rejected.Load(),
		Discarded: tp.discarded.Load(),
	}
}

func (tp *ThreadPool) workerStarted() {
	n := tp.live.Add(1)
	if tp.metrics != nil {
		tp.metrics.SetWorkerCount(tp.name, int(n))
	}
}

func (tp *ThreadPool) workerExited() {
	n := tp.live.Add(-1)
	if tp.metrics != nil {
		tp.metrics.SetWorkerCount(tp.name, int(n))
	}
}

func (tp *ThreadPool) taskStarted(workerID int, t *task) {
	n := tp.active.Add(1)
	if tp.metrics != nil {
		tp.metrics.SetActiveWorkers(tp.name, int(n))
	}
	if tp.hooks.OnStart != nil {
		tp.hooks.OnStart(workerID, t.id)
	}
}

func (tp *ThreadPool) taskFinished(workerID int, t *task, err error, duration time.Duration) {
	n := tp.active.Add(-1)

	if err != nil {
		tp.failed.Add(1)
		tp.log.WithFields(logrus.Fields{
			"worker": workerID,
			"task":   t.id,
		}).WithError(err).Error("task failed")
	} else {
		tp.completed.Add(1)
	}

	if tp.metrics != nil {
		tp.metrics.SetActiveWorkers(tp.name, int(n))
		tp.metrics.ObserveTaskDuration(tp.name, duration.Seconds())
		if err != nil {
			tp.metrics.RecordTaskFailed(tp.name)
			tp.metrics.RecordTaskCompleted(tp.name, "failed")
		} else {
			tp.metrics.RecordTaskCompleted(tp.name, "success")
		}
	}

	if tp.hooks.OnFinish != nil {
		tp.hooks.OnFinish(workerID, t.id, err)
	}
}
