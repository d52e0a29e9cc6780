package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"sla-monitor/internal/api"
	"sla-monitor/internal/config"
	"sla-monitor/internal/db"
	"sla-monitor/internal/kafka"
	"sla-monitor/internal/logging"
	"sla-monitor/internal/notify"
	"sla-monitor/internal/sla"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// Connect to database
	dbConn, err := db.New(cfg.DB.DSN)
	if err != nil {
		logger.Errorf("Failed to connect to database: %v", err)
		log.Fatalf("Database connection failed: %v", err)
	}
	defer dbConn.Close()

	// Assemble the SLA engine
	registry := sla.NewRegistry(sla.DefaultRules())
	dispatcher := sla.NewDispatcher(dbConn, nil, logger)
	hub := notify.NewHub(logger)
	engine := sla.NewEngine(dbConn, registry, dispatcher, hub, logger)

	// Start the notifier worker pool
	var wg sync.WaitGroup
	notifier := notify.New(dbConn, hub, logger, cfg)
	notifier.Start(&wg)

	// Automatic monitoring mode
	if cfg.Monitor.IntervalMinutes > 0 {
		engine.Start(time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute)
	}

	// Kafka task-event consumer, optional
	ctx, cancel := context.WithCancel(context.Background())
	var consumer *kafka.Consumer
	if cfg.Kafka.Broker != "" {
		consumer = kafka.NewConsumer([]string{cfg.Kafka.Broker}, cfg.Kafka.Topic, cfg.Kafka.GroupID, engine, logger)
		consumer.Start(ctx, &wg)
	}

	// Start API server
	router := api.NewRouter(engine, dbConn, hub, logger, cfg)
	go func() {
		logger.Infof("Starting API server on %s", cfg.API.Port)
		if err := router.Run(cfg.API.Port); err != nil {
			logger.Errorf("API server failed: %v", err)
		}
	}()

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Infof("Shutting down...")

	cancel()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Errorf("Kafka consumer close failed: %v", err)
		}
	}
	engine.Stop()
	notifier.Stop()
	wg.Wait()
	logger.Infof("Service stopped")
}
