package command

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/majiddarvishan/threadpool/config"
	"github.com/majiddarvishan/threadpool/threadpool"
)

type Run struct {
	Logger   *log.Logger
	Registry *prometheus.Registry
}

type runFlags struct {
	configPath  string
	workers     int
	tasks       int
	workload    string
	duration    time.Duration
	wait        bool
	metricsAddr string
}

func (cmd Run) Command(ctx context.Context) *cobra.Command {
	var flags runFlags

	c := &cobra.Command{
		Use:   "run",
		Short: "submit a batch of tasks to a pool, then destroy it",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if c.Flags().Changed("workers") {
				cfg.Pool.Workers = flags.workers
			}
			if c.Flags().Changed("wait") {
				cfg.Pool.WaitForPendingTasks = flags.wait
			}
			if c.Flags().Changed("metrics-addr") {
				cfg.Metrics.Addr = flags.metricsAddr
				cfg.Metrics.Enabled = flags.metricsAddr != ""
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			_, err = cmd.main(ctx, cfg, flags)
			return err
		},
	}

	c.Flags().StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	c.Flags().IntVarP(&flags.workers, "workers", "w", 0, "worker count (overrides config)")
	c.Flags().IntVarP(&flags.tasks, "tasks", "n", 100, "number of tasks to submit")
	c.Flags().StringVar(&flags.workload, "workload", "sleep", "workload name, see the workloads command")
	c.Flags().DurationVar(&flags.duration, "duration", 10*time.Millisecond, "per-task duration for sleep and spin")
	c.Flags().BoolVar(&flags.wait, "wait", true, "drain queued tasks on shutdown (overrides config)")
	c.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve /metrics on this address, empty disables (overrides config)")

	return c
}

func (cmd Run) main(ctx context.Context, cfg *config.Config, flags runFlags) (threadpool.Stats, error) {
	cfg.Log.Apply(cmd.Logger)

	handler, err := lookupWorkload(flags.workload)
	if err != nil {
		return threadpool.Stats{}, err
	}

	if cmd.Registry == nil {
		cmd.Registry = prometheus.NewRegistry()
	}
	metrics := threadpool.NewMetrics(cmd.Registry)
	if cfg.Metrics.Enabled {
		srv := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           promhttp.HandlerFor(cmd.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				cmd.Logger.WithContext(ctx).Errorf("metrics server: %v", err)
			}
		}()
		defer srv.Close()
		cmd.Logger.WithContext(ctx).Infof("serving metrics on %s/metrics", cfg.Metrics.Addr)
	}

	pool, err := threadpool.NewWithOptions(cfg.Pool.Workers, threadpool.Options{
		Name:    cfg.Pool.Name,
		Logger:  cmd.Logger,
		Metrics: metrics,
	})
	if err != nil {
		return threadpool.Stats{}, errors.Wrap(err, "create pool")
	}

	runID := uuid.NewString()
	var counter atomic.Int64
	logger := cmd.Logger.WithContext(ctx).WithFields(log.Fields{
		"run":      runID,
		"workload": flags.workload,
	})

	submitted := 0
	for i := 0; i < flags.tasks && ctx.Err() == nil; i++ {
		err := pool.Submit(handler, Job{
			RunID:    runID,
			Index:    i,
			Duration: flags.duration,
			Counter:  &counter,
		})
		if err != nil {
			logger.Warnf("stopped submitting after %d tasks: %v", submitted, err)
			break
		}
		submitted++
	}
	logger.Infof("submitted %d tasks", submitted)

	wait := cfg.Pool.WaitForPendingTasks
	if ctx.Err() != nil {
		logger.Info("interrupted, discarding queued tasks")
		wait = false
	}
	destroyed := make(chan error, 1)
	go func() { destroyed <- pool.Destroy(wait) }()

	select {
	case err = <-destroyed:
	case <-ctx.Done():
		if wait {
			logger.Info("interrupted during drain, discarding queued tasks")
			// Escalates the drain, or wins outright if the drain has not
			// started yet; either way one of the two calls sees ErrAlreadyDestroyed.
			_ = pool.Destroy(false)
		}
		err = <-destroyed
	}
	if err != nil && !errors.Is(err, threadpool.ErrAlreadyDestroyed) {
		return threadpool.Stats{}, errors.Wrap(err, "destroy pool")
	}

	stats := pool.Stats()
	logger.WithFields(log.Fields{
		"completed": stats.Completed,
		"failed":    stats.Failed,
		"discarded": stats.Discarded,
		"counted":   counter.Load(),
	}).Info("run finished")

	return stats, nil
}
