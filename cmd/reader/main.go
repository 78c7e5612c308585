package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/travel-data/reco-pipeline/internal/domain/repository"
	"github.com/travel-data/reco-pipeline/internal/infrastructure/config"
	"github.com/travel-data/reco-pipeline/internal/infrastructure/persistence"
	"github.com/travel-data/reco-pipeline/internal/infrastructure/stream"
	"github.com/travel-data/reco-pipeline/internal/interface/geo"
	rejectRepo "github.com/travel-data/reco-pipeline/internal/interface/repository"
	"github.com/travel-data/reco-pipeline/internal/usecase"
	"github.com/travel-data/reco-pipeline/pkg/currency"
	"github.com/travel-data/reco-pipeline/pkg/logger"
	"github.com/travel-data/reco-pipeline/pkg/metrics"
	"github.com/travel-data/reco-pipeline/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load configuration
	cfg, err := config.LoadReaderConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting reco reader", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load reference data
	rates, err := currency.LoadRates(cfg.RatesFile)
	if err != nil {
		log.Fatal("Failed to load currency rates", "file", cfg.RatesFile, "error", err)
	}
	log.Info("Currency rates loaded", "date", rates.Date(), "currencies", rates.Len())

	geoIndex, err := geo.LoadIndex(cfg.GeoFile)
	if err != nil {
		log.Fatal("Failed to load geo reference", "file", cfg.GeoFile, "error", err)
	}
	log.Info("Geo reference loaded", "locations", geoIndex.Len())

	// Optional reject store
	var rejects repository.RejectRepository
	var mongoClient *mongo.Client
	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		client, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		mongoClient = client
		rejects = rejectRepo.NewMongoRejectRepository(db, log)
	}

	// Set up stream
	wmLogger := logger.NewWatermillAdapter(log)
	subscriber, err := stream.NewNATSSubscriber(stream.SubscriberConfig{
		URL:            cfg.NatsURL,
		DurableName:    cfg.GroupID,
		QueueGroup:     cfg.GroupID,
		MaxReconnects:  cfg.NatsMaxReconnects,
		ReconnectWait:  cfg.NatsReconnectWait,
		AckWaitTimeout: 30 * time.Second,
		CloseTimeout:   30 * time.Second,
	}, wmLogger)
	if err != nil {
		log.Fatal("Failed to create stream subscriber", "error", err)
	}

	publisherCfg := stream.PublisherConfig{
		URL:              cfg.NatsURL,
		MaxReconnects:    cfg.NatsMaxReconnects,
		ReconnectWait:    cfg.NatsReconnectWait,
		BreakerName:      "decorated-recos-publisher",
		FailureThreshold: 5,
		BreakerTimeout:   30 * time.Second,
	}
	natsPublisher, err := stream.NewNATSPublisher(publisherCfg, wmLogger)
	if err != nil {
		log.Fatal("Failed to create stream publisher", "error", err)
	}
	publisher := stream.NewPublisher(natsPublisher, stream.NewCircuitBreaker(publisherCfg, log))

	// Set up pipeline
	m := metrics.NewMetrics("reco_reader", prometheus.DefaultRegisterer)
	reader := usecase.NewRecoReader(
		subscriber,
		cfg.InputTopic,
		cfg.PollTimeout,
		utils.NewRecoParser(cfg.StrictDecode, log),
		usecase.NewSearchAggregator(log),
		usecase.NewSearchEnricher(geoIndex, rates, log),
		usecase.NewSearchPublisher(publisher, cfg.OutputTopic, cfg.OutputFormat, log),
		rejects,
		m,
		log,
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := reader.Run(ctx); err != nil {
			log.Error("Reader stopped with error", "error", err)
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

	// Wait for interrupt signal or the reader giving up
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

	// The reader flushes its pending search before returning
	cancel()
	<-done

	if err := subscriber.Close(); err != nil {
		log.Error("Subscriber close error", "error", err)
	}
	if err := publisher.Close(); err != nil {
		log.Error("Publisher close error", "error", err)
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}

	log.Info("Reco reader stopped")
}
