// Package threadpool provides a fixed-size worker pool with an unbounded
// FIFO task queue, panic isolation, lifecycle hooks, and Prometheus metrics
// integration.
//
// A pool is created with a fixed number of workers and destroyed once.
// Destroy(true) stops accepting work and drains the queue; Destroy(false)
// stops accepting work, lets running tasks finish, and discards the rest.
//
// Typical usage:
//
//	metrics := threadpool.NewMetrics(prometheus.DefaultRegisterer)
//	pool, err := threadpool.NewWithOptions(4, threadpool.Options{
//	    Name:    "resize",
//	    Metrics: metrics,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, img := range images {
//	    if err := pool.Submit(resize, img); err != nil {
//	        // errors.Is(err, threadpool.ErrRejected): shutting down
//	    }
//	}
//
//	pool.Destroy(true)
//
// Tasks are dequeued in submission order. With more than one worker they
// may complete in any order. A task may submit more work to its own pool,
// but calling Destroy from inside a task deadlocks.
package threadpool
