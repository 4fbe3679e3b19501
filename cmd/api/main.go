package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grocery/internal/interfaces/scheduler"
	"grocery/internal/shared/config"
	"grocery/internal/shared/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  cfg.Telemetry.Environment,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
			SampleRatio:  cfg.Telemetry.SampleRatio,
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(shutdownCtx); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	deps, err := NewDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.NewScheduler(scheduler.Config{
			ScheduleTimes: cfg.Scheduler.ScheduleTimes,
			Location:      deps.Retention.Location,
			WorkerCount:   cfg.Scheduler.WorkerCount,
			JobDelay:      cfg.Scheduler.JobDelay,
			QueueSize:     cfg.Scheduler.QueueSize,
			RunOnStartup:  cfg.Scheduler.RunOnStartup,
			JobProvider:   scheduler.SweepJobProvider(deps.ItemService),
		})
		if err != nil {
			return err
		}
		sched.Start()
	} else {
		log.Println("Scheduler is disabled")
	}

	handler := SetupRoutes(deps, cfg)
	servers := StartServers(NewServerConfigFromConfig(handler, cfg))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	trigger := make(chan os.Signal, 1)
	signal.Notify(trigger, syscall.SIGHUP)

	err = waitForShutdown(quit, trigger, servers.Errors, sched)

	GracefulShutdown(servers, sched, shutdownTimeout)
	return err
}

// waitForShutdown blocks until a stop signal or a server failure. SIGHUP runs
// an expiry sweep right away.
func waitForShutdown(quit, trigger <-chan os.Signal, serverErrs <-chan error, sched *scheduler.Scheduler) error {
	for {
		select {
		case sig := <-quit:
			log.Printf("Received %s", sig)
			return nil
		case err := <-serverErrs:
			log.Printf("Server failed: %v", err)
			return err
		case <-trigger:
			if sched == nil {
				log.Println("Sweep requested but the scheduler is disabled")
				continue
			}
			log.Println("Sweep requested")
			sched.TriggerNow()
		}
	}
}
