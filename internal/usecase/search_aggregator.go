package usecase

import (
	"github.com/travel-data/reco-pipeline/internal/domain/entity"
	"github.com/travel-data/reco-pipeline/pkg/logger"
)

// recentlyClosedLimit bounds the ids remembered to spot interleaved searches.
const recentlyClosedLimit = 1024

// SearchAggregator groups contiguous recos sharing a search id.
//
// Records of one search are assumed to arrive contiguously. When an id shows up
// again after its batch was emitted, the aggregator logs it and starts a new
// batch; it never reorders.
type SearchAggregator struct {
	buffer    entity.SearchBatch
	currentID string
	started   bool

	closed      map[string]struct{}
	closedOrder []string
	reappeared  int

	logger logger.Logger
}

// NewSearchAggregator creates an empty aggregator.
func NewSearchAggregator(logger logger.Logger) *SearchAggregator {
	return &SearchAggregator{
		closed: make(map[string]struct{}),
		logger: logger,
	}
}

// Add appends reco to the pending batch. When reco starts a new search, the
// previous batch is returned as complete.
func (a *SearchAggregator) Add(reco entity.RawRecoLine) (entity.SearchBatch, bool) {
	var completed entity.SearchBatch
	var ok bool

	if !a.started || reco.SearchID != a.currentID {
		if len(a.buffer) > 0 {
			completed, ok = a.buffer, true
			a.remember(a.currentID)
		}
		a.buffer = nil
		a.currentID = reco.SearchID
		a.started = true

		if _, seen := a.closed[reco.SearchID]; seen {
			a.reappeared++
			a.logger.Warn("Search id reappeared after its batch was emitted",
				"searchID", reco.SearchID,
				"reappearances", a.reappeared)
		}
	}

	a.buffer = append(a.buffer, reco)
	return completed, ok
}

// Flush returns the pending batch, if any, and resets the aggregator.
func (a *SearchAggregator) Flush() (entity.SearchBatch, bool) {
	if len(a.buffer) == 0 {
		return nil, false
	}
	completed := a.buffer
	a.remember(a.currentID)
	a.buffer = nil
	a.started = false
	a.currentID = ""
	return completed, true
}

// Pending returns the number of buffered recos.
func (a *SearchAggregator) Pending() int {
	return len(a.buffer)
}

// Reappearances counts search ids seen again after their batch was closed.
func (a *SearchAggregator) Reappearances() int {
	return a.reappeared
}

func (a *SearchAggregator) remember(id string) {
	if _, ok := a.closed[id]; ok {
		return
	}
	a.closed[id] = struct{}{}
	a.closedOrder = append(a.closedOrder, id)
	if len(a.closedOrder) > recentlyClosedLimit {
		oldest := a.closedOrder[0]
		a.closedOrder = a.closedOrder[1:]
		delete(a.closed, oldest)
	}
}
