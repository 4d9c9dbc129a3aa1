package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qazaqtalk/backend/internal/config"
	"github.com/qazaqtalk/backend/internal/infrastructure/container"
	"github.com/qazaqtalk/backend/internal/infrastructure/database"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize dependency injection container
	app, err := container.NewContainer(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.Log.Error("error closing application", "err", err)
		}
	}()

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(schemaCtx, app.DB); err != nil {
		cancelSchema()
		app.Log.Error("failed to apply schema", "err", err)
		os.Exit(1)
	}
	cancelSchema()

	// Review scheduler runs independently of the request path and
	// stops on shutdown.
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	go app.Scheduler.Run(schedulerCtx)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		if err := app.Server.Start(); err != nil {
			app.Log.Error("server error", "err", err)
			quit <- syscall.SIGTERM
		}
	}()

	app.Log.Info("server started",
		"host", cfg.Server.Host, "port", cfg.Server.Port,
		"scheduler_interval", cfg.Matching.SchedulerInterval)

	// Wait for interrupt signal
	<-quit
	stopScheduler()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Error("server shutdown error", "err", err)
		os.Exit(1)
	}

	app.Log.Info("server exited properly")
}
