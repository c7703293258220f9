package threadpool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors shared by every pool that is given
// them. Series are labelled by pool_name.
type Metrics struct {
	TasksSubmitted *prometheus.CounterVec
	TasksCompleted *prometheus.CounterVec
	TasksFailed    *prometheus.CounterVec
	TasksRejected  *prometheus.CounterVec
	TasksDiscarded *prometheus.CounterVec
	TaskDuration   *prometheus.HistogramVec
	QueueSize      *prometheus.GaugeVec
	ActiveWorkers  *prometheus.GaugeVec
	WorkerCount    *prometheus.GaugeVec
	State          *prometheus.GaugeVec
}

// NewMetrics creates the pool metrics and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TasksSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "threadpool_tasks_submitted_total",
				Help: "Total number of tasks accepted by the thread pool",
			},
			[]string{"pool_name"},
		),
		TasksCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "threadpool_tasks_completed_total",
				Help: "Total number of tasks run by the thread pool",
			},
			[]string{"pool_name", "status"},
		),
		TasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "threadpool_tasks_failed_total",
				Help: "Total number of tasks that panicked",
			},
			[]string{"pool_name"},
		),
		TasksRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "threadpool_tasks_rejected_total",
				Help: "Total number of tasks rejected because the pool was shutting down",
			},
			[]string{"pool_name"},
		),
		TasksDiscarded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "threadpool_tasks_discarded_total",
				Help: "Total number of queued tasks dropped by an immediate shutdown",
			},
			[]string{"pool_name"},
		),
		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "threadpool_task_duration_seconds",
				Help:    "Duration of task execution in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"pool_name"},
		),
		QueueSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "threadpool_queue_size",
				Help: "Current number of tasks waiting in the queue",
			},
			[]string{"pool_name"},
		),
		ActiveWorkers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "threadpool_active_workers",
				Help: "Current number of workers running a task",
			},
			[]string{"pool_name"},
		),
		WorkerCount: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "threadpool_worker_count",
				Help: "Current number of live workers in the pool",
			},
			[]string{"pool_name"},
		),
		State: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "threadpool_state",
				Help: "Lifecycle state: 0 online, 1 soft shutdown, 2 hard shutdown, 3 offline",
			},
			[]string{"pool_name"},
		),
	}
}

// RecordTaskSubmitted increments the submitted tasks counter
func (m *Metrics) RecordTaskSubmitted(poolName string) {
	m.TasksSubmitted.WithLabelValues(poolName).Inc()
}

// RecordTaskCompleted increments the completed tasks counter
func (m *Metrics) RecordTaskCompleted(poolName string, status string) {
	m.TasksCompleted.WithLabelValues(poolName, status).Inc()
}

// RecordTaskFailed increments the failed tasks counter
func (m *Metrics) RecordTaskFailed(poolName string) {
	m.TasksFailed.WithLabelValues(poolName).Inc()
}

// RecordTaskRejected increments the rejected tasks counter
func (m *Metrics) RecordTaskRejected(poolName string) {
	m.TasksRejected.WithLabelValues(poolName).Inc()
}

// RecordTasksDiscarded adds n to the discarded tasks counter
func (m *Metrics) RecordTasksDiscarded(poolName string, n int) {
	m.TasksDiscarded.WithLabelValues(poolName).Add(float64(n))
}

// ObserveTaskDuration records task execution duration
func (m *Metrics) ObserveTaskDuration(poolName string, duration float64) {
	m.TaskDuration.WithLabelValues(poolName).Observe(duration)
}

// SetQueueSize sets the current queue size
func (m *Metrics) SetQueueSize(poolName string, size int) {
	m.QueueSize.WithLabelValues(poolName).Set(float64(size))
}

// SetActiveWorkers sets the current number of active workers
func (m *Metrics) SetActiveWorkers(poolName string, count int) {
	m.ActiveWorkers.WithLabelValues(poolName).Set(float64(count))
}

// SetWorkerCount sets the number of live workers
func (m *Metrics) SetWorkerCount(poolName string, count int) {
	m.WorkerCount.WithLabelValues(poolName).Set(float64(count))
}

// SetState records the pool lifecycle state
func (m *Metrics) SetState(poolName string, st State) {
	m.State.WithLabelValues(poolName).Set(float64(st))
}

// forget deletes every series labelled with poolName.
func (m *Metrics) forget(poolName string) {
	labels := prometheus.Labels{"pool_name": poolName}
	m.TasksSubmitted.DeletePartialMatch(labels)
	m.TasksCompleted.DeletePartialMatch(labels)
	m.TasksFailed.DeletePartialMatch(labels)
	m.TasksRejected.DeletePartialMatch(labels)
	m.TasksDiscarded.DeletePartialMatch(labels)
	m.TaskDuration.DeletePartialMatch(labels)
	m.QueueSize.DeletePartialMatch(labels)
	m.ActiveWorkers.DeletePartialMatch(labels)
	m.WorkerCount.DeletePartialMatch(labels)
	m.State.DeletePartialMatch(labels)
}
