package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/travel-data/reco-pipeline/internal/infrastructure/config"
	"github.com/travel-data/reco-pipeline/internal/infrastructure/persistence"
	"github.com/travel-data/reco-pipeline/internal/infrastructure/stream"
	recoRepo "github.com/travel-data/reco-pipeline/internal/interface/repository"
	"github.com/travel-data/reco-pipeline/internal/usecase"
	"github.com/travel-data/reco-pipeline/pkg/logger"
	"github.com/travel-data/reco-pipeline/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWriterConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting reco writer", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up PostgreSQL connection
	log.Info("Connecting to PostgreSQL", "host", cfg.PGHost, "database", cfg.PGDatabase)
	gormDB, err := persistence.NewPostgresDB(persistence.PostgresConfig{
		Host:     cfg.PGHost,
		Port:     cfg.PGPort,
		Database: cfg.PGDatabase,
		User:     cfg.PGUser,
		Password: cfg.PGPassword,
	})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}
	rowRepository := recoRepo.NewGormRecoRowRepository(gormDB, cfg.PGTable)

	// Set up stream
	subscriber, err := stream.NewNATSSubscriber(stream.SubscriberConfig{
		URL:            cfg.NatsURL,
		DurableName:    cfg.GroupID,
		QueueGroup:     cfg.GroupID,
		MaxReconnects:  cfg.NatsMaxReconnects,
		ReconnectWait:  cfg.NatsReconnectWait,
		AckWaitTimeout: 30 * time.Second,
		CloseTimeout:   30 * time.Second,
	}, logger.NewWatermillAdapter(log))
	if err != nil {
		log.Fatal("Failed to create stream subscriber", "error", err)
	}

	m := metrics.NewMetrics("reco_writer", prometheus.DefaultRegisterer)
	writer := usecase.NewRecoWriter(subscriber, cfg.Topic, cfg.PollTimeout, rowRepository, m, log)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := writer.Run(ctx); err != nil {
			log.Error("Writer stopped with error", "error", err)
		}
	}()

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal or the writer giving up
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		log.Info("Received signal", "signal", sig)
	case <-done:
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()
	<-done

	if err := subscriber.Close(); err != nil {
		log.Error("Subscriber close error", "error", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info("Reco writer stopped")
}
