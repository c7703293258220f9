package threadpool

import (
	"runtime/debug"
	"sync/atomic"
	"time"
)

// worker is one goroutine of the pool.
type worker struct {
	id    int
	pool  *ThreadPool
	state atomic.Int32
}

// run reports readiness on ready, then loops taking tasks from the pool
// until shutdown tells it to stop.
func (w *worker) run(ready chan<- error) {
	tp := w.pool
	defer tp.wg.Done()

	if hook := tp.hooks.OnWorkerStart; hook != nil {
		if err := hook(w.id); err != nil {
			ready <- err
			return
		}
	}

	tp.workerStarted()
	ready <- nil

	tp.log.Debugf("worker %d started", w.id)
	w.loop()
}

// loop processes tasks until the pool stops it. If a task ends the
// goroutine with runtime.Goexit, the loop carries on in a new goroutine so
// the pool keeps its size.
func (w *worker) loop() {
	tp := w.pool
	stopped := false
	defer func() {
		if stopped {
			tp.workerExited()
			return
		}
		tp.log.Warnf("worker %d lost its goroutine to runtime.Goexit, restarting", w.id)
		tp.wg.Add(1)
		go func() {
			defer tp.wg.Done()
			w.loop()
		}()
	}()

	for {
		t, _, ok := tp.cell.next()
		if !ok {
			stopped = true
			tp.log.Debugf("worker %d exiting", w.id)
			return
		}
		if t == nil {
			stopped = true
			tp.log.Fatalf("worker %d dequeued a nil task", w.id)
			return
		}

		w.execute(t)
	}
}

// execute runs t outside the pool lock. A panic becomes a *PanicError and
// a runtime.Goexit becomes ErrTaskExited, so every task that starts is
// reported as finished.
func (w *worker) execute(t *task) {
	tp := w.pool
	w.state.Store(int32(WorkerRunning))
	tp.taskStarted(w.id, t)

	start := time.Now()
	returned := false
	defer func() {
		var err error
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		} else if !returned {
			err = &PanicError{Value: ErrTaskExited, Stack: debug.Stack()}
		}
		tp.taskFinished(w.id, t, err, time.Since(start))
		w.state.Store(int32(WorkerWaiting))
	}()

	t.run()
	returned = true
}
