package usecase

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/travel-data/reco-pipeline/internal/domain/entity"
	"github.com/travel-data/reco-pipeline/pkg/logger"
)

// Output formats
const (
	FormatJSON       = "json"
	FormatPrettyJSON = "pretty_json"
)

// SearchPublisher encodes decorated searches and sends them to the output topic.
type SearchPublisher struct {
	publisher message.Publisher
	topic     string
	format    string
	logger    logger.Logger
}

// NewSearchPublisher creates a publisher. Unknown formats fall back to json.
func NewSearchPublisher(publisher message.Publisher, topic, format string, logger logger.Logger) *SearchPublisher {
	if format != FormatPrettyJSON {
		format = FormatJSON
	}
	return &SearchPublisher{
		publisher: publisher,
		topic:     topic,
		format:    format,
		logger:    logger,
	}
}

// Encode serializes a decorated search in the configured format.
func (p *SearchPublisher) Encode(search *entity.DecoratedSearch) ([]byte, error) {
	if p.format == FormatPrettyJSON {
		return json.MarshalIndent(search, "", "  ")
	}
	return json.Marshal(search)
}

// Publish sends one message for the search and returns once the broker
// acknowledged it.
func (p *SearchPublisher) Publish(ctx context.Context, search *entity.DecoratedSearch) error {
	data, err := p.Encode(search)
	if err != nil {
		return fmt.Errorf("encode search %s: %w", search.SearchID, err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.Metadata.Set("search_id", search.SearchID)
	msg.Metadata.Set("OnD", search.OnD)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish search %s to %s: %w", search.SearchID, p.topic, err)
	}

	p.logger.Debug("Search published", "searchID", search.SearchID, "topic", p.topic, "messageID", msg.UUID)
	return nil
}

// DecodeSearch parses a decorated search message payload.
func DecodeSearch(data []byte) (*entity.DecoratedSearch, error) {
	var search entity.DecoratedSearch
	if err := json.Unmarshal(data, &search); err != nil {
		return nil, fmt.Errorf("unmarshal search: %w", err)
	}
	return &search, nil
}
