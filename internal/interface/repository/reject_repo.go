package repository

import (
	"context"

	"github.com/travel-data/reco-pipeline/internal/domain/entity"
	"github.com/travel-data/reco-pipeline/internal/domain/repository"
	"github.com/travel-data/reco-pipeline/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RejectCollection is where dropped inputs are kept
const RejectCollection = "rejected_records"

// MongoRejectRepository implements RejectRepository
type MongoRejectRepository struct {
	collection *mongo.Collection
}

// NewMongoRejectRepository creates a new reject repository
func NewMongoRejectRepository(db *mongo.Database, logger logger.Logger) repository.RejectRepository {
	collection := db.Collection(RejectCollection)

	// Indexes for lookups by search and by stage over time
	ctx := context.Background()
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"searchId": 1}},
		{Keys: bson.D{
			{Key: "stage", Value: 1},
			{Key: "rejectedAt", Value: -1},
		}},
	})
	if err != nil {
		logger.Warn("Failed to create reject indexes", "collection", RejectCollection, "error", err)
	}

	return &MongoRejectRepository{
		collection: collection,
	}
}

// Save stores a rejected record
func (r *MongoRejectRepository) Save(ctx context.Context, record *entity.RejectedRecord) error {
	if record.ID == "" {
		record.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.collection.InsertOne(ctx, record)
	return err
}
