package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"hireline/internal/config"
	"hireline/internal/daemon"
	"hireline/internal/logging"
	"hireline/internal/metrics"
	"hireline/internal/notifications"
	"hireline/internal/store"
	"hireline/internal/workflow"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return
	}

	collector := metrics.New()
	sink := notifications.NewSink(cfg)
	service := workflow.NewService(st, sink, logger, collector, cfg)

	d, err := daemon.New(cfg, st, service, collector, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = st.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("hirelined shutting down")
}
