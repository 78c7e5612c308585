package repository

import (
	"context"

	"github.com/travel-data/reco-pipeline/internal/domain/entity"
)

// RejectRepository stores dropped inputs for later diagnosis
type RejectRepository interface {
	Save(ctx context.Context, record *entity.RejectedRecord) error
}
