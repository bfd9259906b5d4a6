package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"survey-payout-be/internal/bootstrap"
	"survey-payout-be/internal/config"
	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/server"
	"survey-payout-be/internal/tracer"
	"survey-payout-be/pkg/database"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	shutdownTracer := tracer.InitTracer(cfg.Tracing, sysLogger)
	defer shutdownTracer(context.Background())

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	container, err := bootstrap.NewContainer(gormDB, cfg, sysLogger, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.Start(ctx); err != nil {
		log.Fatalf("start background services: %v", err)
	}

	srv := server.New(cfg, container, prometheus.DefaultGatherer)
	go func() {
		if err := srv.Run(); err != nil {
			sysLogger.Error(logger.ModuleServer, "Server stopped", map[string]interface{}{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	sysLogger.Info(logger.ModuleServer, "Shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sysLogger.Error(logger.ModuleServer, "HTTP shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := container.Close(); err != nil {
		sysLogger.Error(logger.ModuleServer, "Container close failed", map[string]interface{}{"error": err.Error()})
	}
}
