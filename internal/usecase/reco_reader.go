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
	"github.com/travel-data/reco-pipeline/pkg/utils"
)

// statsLogEvery is how many searches pass between two progress logs.
const statsLogEvery = 1000

const rejectSaveTimeout = 5 * time.Second

// ReaderStats counts what went through the reader since it started.
type ReaderStats struct {
	RecoRead        int
	RecoDecoded     int
	SearchRead      int
	SearchEncoded   int
	SearchPublished int
}

// RecoReader consumes raw reco messages, groups them per search, decorates
// each search and publishes it. Messages are handled one at a time.
type RecoReader struct {
	subscriber  message.Subscriber
	topic       string
	pollTimeout time.Duration

	parser     *utils.RecoParser
	aggregator *SearchAggregator
	enricher   *SearchEnricher
	publisher  *SearchPublisher
	rejects    repository.RejectRepository

	stats   ReaderStats
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewRecoReader wires the pipeline. rejects may be nil.
func NewRecoReader(
	subscriber message.Subscriber,
	topic string,
	pollTimeout time.Duration,
	parser *utils.RecoParser,
	aggregator *SearchAggregator,
	enricher *SearchEnricher,
	publisher *SearchPublisher,
	rejects repository.RejectRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *RecoReader {
	return &RecoReader{
		subscriber:  subscriber,
		topic:       topic,
		pollTimeout: pollTimeout,
		parser:      parser,
		aggregator:  aggregator,
		enricher:    enricher,
		publisher:   publisher,
		rejects:     rejects,
		metrics:     metrics,
		logger:      logger,
	}
}

// Run consumes the input topic until ctx is canceled or the subscription ends.
// The pending search is flushed before returning.
func (r *RecoReader) Run(ctx context.Context) error {
	messages, err := r.subscriber.Subscribe(ctx, r.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", r.topic, err)
	}

	start := time.Now()
	r.logger.Info("Decoding/encoding", "topic", r.topic)
	defer func() {
		r.Flush(context.WithoutCancel(ctx))
		r.logger.Info("Reader stopped",
			"elapsed", time.Since(start).Round(10*time.Millisecond).String(),
			"stats", r.stats)
	}()

	idle := time.NewTimer(r.pollTimeout)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.HandleMessage(ctx, msg.Payload)
			msg.Ack()
		case <-idle.C:
			r.logger.Debug("No message within poll timeout", "topic", r.topic, "pending", r.aggregator.Pending())
		}
		idle.Reset(r.pollTimeout)
	}
}

// HandleMessage processes one input message. Failures are logged and the
// record or search is dropped; nothing is returned to the loop.
func (r *RecoReader) HandleMessage(ctx context.Context, payload []byte) {
	timer := prometheus.NewTimer(r.metrics.ProcessingTime)
	defer timer.ObserveDuration()

	r.stats.RecoRead++
	r.metrics.RecordsRead.Inc()

	line, err := r.parser.DecodeEnvelope(payload)
	if err != nil {
		r.metrics.ErrorsCount.WithLabelValues(entity.StageDecode).Inc()
		r.logger.Warn("Dropping message with invalid envelope", "error", err)
		r.reject(ctx, entity.StageDecode, "", err, []string{string(payload)})
		return
	}

	reco, err := r.parser.Decode(line)
	if err != nil {
		r.metrics.ErrorsCount.WithLabelValues(entity.StageDecode).Inc()
		r.reject(ctx, entity.StageDecode, "", err, []string{string(line)})
		return
	}
	r.stats.RecoDecoded++
	r.metrics.RecordsDecoded.Inc()

	if batch, ok := r.aggregator.Add(*reco); ok {
		r.processBatch(ctx, batch)
	}
}

// Flush decorates and publishes the search still being accumulated.
func (r *RecoReader) Flush(ctx context.Context) {
	if batch, ok := r.aggregator.Flush(); ok {
		r.logger.Info("Flushing pending search", "searchID", batch.SearchID(), "recos", len(batch))
		r.processBatch(ctx, batch)
	}
}

// Stats returns a copy of the counters. Not safe to call while Run is active.
func (r *RecoReader) Stats() ReaderStats {
	return r.stats
}

func (r *RecoReader) processBatch(ctx context.Context, batch entity.SearchBatch) {
	if r.stats.SearchRead%statsLogEvery == 0 {
		r.logger.Info("Running", "stats", r.stats)
	}
	r.stats.SearchRead++
	r.metrics.SearchesRead.Inc()

	search, err := r.enricher.Decorate(batch)
	if err != nil {
		r.metrics.ErrorsCount.WithLabelValues(entity.StageDecorate).Inc()
		r.reject(ctx, entity.StageDecorate, batch.SearchID(), err, r.encodeBatch(batch))
		return
	}
	r.stats.SearchEncoded++
	r.metrics.SearchesDecorated.Inc()

	if err := r.publisher.Publish(ctx, search); err != nil {
		r.metrics.ErrorsCount.WithLabelValues(entity.StagePublish).Inc()
		r.logger.Error("Failed to send message to output topic", "searchID", search.SearchID, "error", err)
		r.reject(ctx, entity.StagePublish, search.SearchID, err, r.encodeBatch(batch))
		return
	}
	r.stats.SearchPublished++
	r.metrics.SearchesPublished.Inc()
}

func (r *RecoReader) encodeBatch(batch entity.SearchBatch) []string {
	lines := make([]string, len(batch))
	for i := range batch {
		lines[i] = r.parser.Encode(&batch[i])
	}
	return lines
}

func (r *RecoReader) reject(ctx context.Context, stage, searchID string, cause error, input []string) {
	if r.rejects == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, rejectSaveTimeout)
	defer cancel()

	record := &entity.RejectedRecord{
		Stage:      stage,
		SearchID:   searchID,
		Reason:     cause.Error(),
		Input:      input,
		RejectedAt: time.Now().UTC(),
	}
	if err := r.rejects.Save(ctx, record); err != nil {
		r.logger.Error("Failed to save rejected record", "stage", stage, "searchID", searchID, "error", err)
	}
}
