package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/majiddarvishan/threadpool/cmd/threadpool/command"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	const description = "Fixed-size thread pool driver"
	root := &cobra.Command{
		Use:          "threadpool",
		Short:        description,
		SilenceUsage: true,
	}

	logger := log.New()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	root.AddCommand(
		command.Run{Logger: logger, Registry: registry}.Command(ctx),
		command.Workloads{}.Command(),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		logger.WithContext(ctx).Fatalf("failed to execute root command: \n%v", err)
	}
}
