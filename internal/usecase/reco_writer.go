package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/travel-data/reco-pipeline/internal/domain/entity"
	"github.com/travel-data/reco-pipeline/internal/domain/repository"
	"github.com/travel-data/reco-pipeline/pkg/logger"
	"github.com/travel-data/reco-pipeline/pkg/metrics"
)

const searchTimeLayout = "2006-01-02T15:04:05"

// RecoWriter persists every reco of the decorated searches it consumes, one
// committed row at a time. A message is acknowledged once all its rows were
// attempted, whatever their outcome: delivery is at least once and a replayed
// message produces duplicate rows.
type RecoWriter struct {
	subscriber  message.Subscriber
	topic       string
	pollTimeout time.Duration
	repo        repository.RecoRowRepository
	metrics     *metrics.Metrics
	logger      logger.Logger
}

// NewRecoWriter creates a writer.
func NewRecoWriter(
	subscriber message.Subscriber,
	topic string,
	pollTimeout time.Duration,
	repo repository.RecoRowRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *RecoWriter {
	return &RecoWriter{
		subscriber:  subscriber,
		topic:       topic,
		pollTimeout: pollTimeout,
		repo:        repo,
		metrics:     metrics,
		logger:      logger,
	}
}

// Run ensures the table exists, then consumes the topic until ctx is canceled.
func (w *RecoWriter) Run(ctx context.Context) error {
	if err := w.repo.EnsureTable(ctx); err != nil {
		return fmt.Errorf("ensure reco table: %w", err)
	}

	messages, err := w.subscriber.Subscribe(ctx, w.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", w.topic, err)
	}
	w.logger.Info("Consumer started", "topic", w.topic)

	idle := time.NewTimer(w.pollTimeout)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Consumer stopped")
			return nil
		case msg, ok := <-messages:
			if !ok {
				w.logger.Info("Subscription closed")
				return nil
			}
			w.HandleMessage(ctx, msg.Payload)
			msg.Ack()
		case <-idle.C:
			w.logger.Debug("No message within poll timeout", "topic", w.topic)
		}
		idle.Reset(w.pollTimeout)
	}
}

// HandleMessage writes the rows of one decorated search and returns how many
// were committed.
func (w *RecoWriter) HandleMessage(ctx context.Context, payload []byte) int {
	timer := prometheus.NewTimer(w.metrics.ProcessingTime)
	defer timer.ObserveDuration()

	search, err := DecodeSearch(payload)
	if err != nil {
		w.metrics.ErrorsCount.WithLabelValues("parse").Inc()
		w.logger.Error("Skipping unreadable message", "error", err)
		return 0
	}

	rows, err := FlattenSearch(search)
	if err != nil {
		w.metrics.ErrorsCount.WithLabelValues("parse").Inc()
		w.logger.Error("Skipping search", "searchID", search.SearchID, "error", err)
		return 0
	}

	written := 0
	for i := range rows {
		if err := w.repo.Insert(ctx, &rows[i]); err != nil {
			w.metrics.ErrorsCount.WithLabelValues("insert").Inc()
			w.logger.Error("Failed to insert reco row", "searchID", search.SearchID, "reco", i, "error", err)
			continue
		}
		written++
		w.metrics.RowsWritten.Inc()
	}

	w.logger.Debug("Search persisted", "searchID", search.SearchID, "rows", written, "recos", len(rows))
	return written
}

// FlattenSearch produces one row per reco, copying the search fields onto each.
func FlattenSearch(search *entity.DecoratedSearch) ([]entity.RecoRow, error) {
	searchTime, err := time.Parse(searchTimeLayout, search.SearchDate+"T"+search.SearchTime)
	if err != nil {
		return nil, fmt.Errorf("search timestamp: %w", err)
	}
	stayDuration := StayDuration(search.RequestDepDate, search.RequestReturnDate)

	rows := make([]entity.RecoRow, 0, len(search.Recos))
	for _, reco := range search.Recos {
		rows = append(rows, entity.RecoRow{
			SearchID:        search.SearchID,
			SearchCountry:   search.SearchCountry,
			OnD:             search.OnD,
			TripType:        search.TripType,
			MainAirline:     reco.MainMarketingAirline,
			PriceEUR:        reco.PriceEUR,
			AdvancePurchase: search.AdvancePurchase,
			NumberOfFlights: reco.NbOfFlights,
			SearchTime:      searchTime,
			Passengers:      search.PassengersString,
			Cabin:           reco.MainCabin,
			StayDuration:    stayDuration,
		})
	}
	return rows, nil
}

// StayDuration recomputes the stay from the requested dates, independently of
// the upstream value. It is -1 whenever either date is missing or invalid.
func StayDuration(depDate, returnDate string) int {
	if len(depDate) <= 1 {
		return -1
	}
	dep, err := time.Parse(dateLayout, depDate)
	if err != nil {
		return -1
	}
	ret, err := time.Parse(dateLayout, returnDate)
	if err != nil {
		return -1
	}
	return daysBetween(dep, ret)
}
