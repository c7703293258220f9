package threadpool

import (
	"sync"

	"github.com/majiddarvishan/threadpool/internal/fifo"
)

// stateCell bundles the lifecycle state and the task queue behind one mutex
// and one condition variable. Nothing outside this file touches state or
// queue directly, so "is there work" and "has shutdown begun" are always
// observed together.
type stateCell struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state State
	queue *fifo.Queue[*task]
	seq   uint64

	// observe, if set, is called with the queue length after every change,
	// under the lock, so observers see depths in order.
	observe func(depth int)
}

func newStateCell() *stateCell {
	c := &stateCell{
		state: Online,
		queue: fifo.New[*task](),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// admit enqueues a new task if the pool is online. On rejection t is nil and
// st is the state that caused it. depth is the queue length after the call.
func (c *stateCell) admit(fn TaskFunc, arg any) (t *task, depth int, st State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Online {
		return nil, c.queue.Len(), c.state
	}

	c.seq++
	t = &task{id: c.seq, fn: fn, arg: arg}
	c.queue.Enqueue(t)
	c.cond.Broadcast()
	c.observed()
	return t, c.queue.Len(), Online
}

// next blocks until a task is available or shutdown makes the caller exit.
// ok is false when the worker must stop: on hard shutdown regardless of the
// queue, or on soft shutdown once the queue is drained.
func (c *stateCell) next() (t *task, depth int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.queue.IsEmpty() && c.state == Online {
		c.cond.Wait()
	}

	if c.state == HardShutdown {
		return nil, c.queue.Len(), false
	}

	t, ok = c.queue.Dequeue()
	if ok {
		c.observed()
	}
	return t, c.queue.Len(), ok
}

// transition moves an online pool to a shutdown state and wakes every
// waiting worker. It fails if shutdown has already begun.
func (c *stateCell) transition(to State) (from State, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	from = c.state
	if from != Online {
		return from, false
	}
	c.state = to
	c.cond.Broadcast()
	return from, true
}

// escalate turns a graceful drain into a hard shutdown. Workers finish
// their current task and leave the rest of the queue behind. It reports
// false unless the pool was in SoftShutdown.
func (c *stateCell) escalate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != SoftShutdown {
		return false
	}
	c.state = HardShutdown
	c.cond.Broadcast()
	return true
}

// close destroys the queue, returning the tasks that never ran, and marks
// the pool offline. Call only after every worker has exited.
func (c *stateCell) close() []*task {
	c.mu.Lock()
	defer c.mu.Unlock()

	rest := c.queue.Destroy()
	c.state = Offline
	c.observed()
	return rest
}

func (c *stateCell) snapshot() (st State, pending int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.queue.Len()
}

func (c *stateCell) observed() {
	if c.observe != nil {
		c.observe(c.queue.Len())
	}
}
