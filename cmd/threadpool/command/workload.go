package command

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/majiddarvishan/threadpool/threadpool"
)

// Job is the argument every workload task receives.
type Job struct {
	RunID    string
	Index    int
	Duration time.Duration
	Counter  *atomic.Int64
}

// Workload is a named task body the run command can submit.
type Workload interface {
	Describe() string
	Handle(job Job)
}

type sleepWorkload struct{}

func (sleepWorkload) Describe() string { return "sleep for --duration" }
func (sleepWorkload) Handle(job Job)   { time.Sleep(job.Duration) }

type spinWorkload struct{}

func (spinWorkload) Describe() string { return "hash in a loop for --duration" }

func (spinWorkload) Handle(job Job) {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s/%d", job.RunID, job.Index)))
	for deadline := time.Now().Add(job.Duration); time.Now().Before(deadline); {
		sum = sha256.Sum256(sum[:])
	}
}

type countWorkload struct{}

func (countWorkload) Describe() string { return "increment a shared counter" }
func (countWorkload) Handle(job Job)   { job.Counter.Add(1) }

type panicWorkload struct{}

func (panicWorkload) Describe() string { return "panic on every tenth task, count the rest" }

func (panicWorkload) Handle(job Job) {
	if job.Index%10 == 0 {
		panic(fmt.Sprintf("task %d of run %s refused to run", job.Index, job.RunID))
	}
	job.Counter.Add(1)
}

var workloads = map[string]Workload{
	"sleep": sleepWorkload{},
	"spin":  spinWorkload{},
	"count": countWorkload{},
	"panic": panicWorkload{},
}

// lookupWorkload returns the named workload as a pool callback.
func lookupWorkload(name string) (threadpool.TaskFunc, error) {
	w, ok := workloads[name]
	if !ok {
		return nil, errors.Errorf("unknown workload %q, have %v", name, workloadNames())
	}
	return func(arg any) {
		w.Handle(arg.(Job))
	}, nil
}

func workloadNames() []string {
	names := make([]string, 0, len(workloads))
	for name := range workloads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
