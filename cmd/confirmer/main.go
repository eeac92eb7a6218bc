package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/travelcities/internal/adapters/nats"
	"github.com/samirrijal/travelcities/internal/pkg/config"
	"github.com/samirrijal/travelcities/internal/pkg/logging"
	"github.com/samirrijal/travelcities/internal/pkg/telemetry"
	"github.com/samirrijal/travelcities/internal/workflows"
)

func main() {
	cfg, err := config.Load("travelcities-confirmer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer publisher.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.RouteSummaryWorkflow)
	w.RegisterActivity(&workflows.RouteActivities{Publisher: publisher})

	subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer subscriber.Close()

	starter := &workflows.Starter{Client: c, TaskQueue: cfg.Temporal.TaskQueue}
	if err := subscriber.SubscribeJourneyConfirmed(ctx, starter.HandleConfirmed); err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("confirmer worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
