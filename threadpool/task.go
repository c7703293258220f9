package threadpool

// TaskFunc is the callback a task runs. arg is the value passed to Submit.
type TaskFunc func(arg any)

// task is one submission: a callback and its argument.
type task struct {
	id  uint64
	fn  TaskFunc
	arg any
}

func (t *task) run() {
	t.fn(t.arg)
}
