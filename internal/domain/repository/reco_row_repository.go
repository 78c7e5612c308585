package repository

import (
	"context"

	"github.com/travel-data/reco-pipeline/internal/domain/entity"
)

// RecoRowRepository defines the interface for reco row storage
type RecoRowRepository interface {
	// EnsureTable creates the target table when it does not exist yet.
	EnsureTable(ctx context.Context) error
	// Insert writes and commits a single row.
	Insert(ctx context.Context, row *entity.RecoRow) error
}
