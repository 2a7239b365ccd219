package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoLeadStore keeps leads in a MongoDB collection.
type MongoLeadStore struct {
	collection *mongo.Collection
	logger     *logging.SafeLogger
}

func NewMongoLeadStore(db *mongo.Database, collection string, logger *logging.SafeLogger) *MongoLeadStore {
	if logger == nil {
		logger = logging.Logger
	}
	return &MongoLeadStore{
		collection: db.Collection(collection),
		logger:     logger.Named("lead_store"),
	}
}

// EnsureIndexes creates the lookup indexes used by sales follow-up.
func (s *MongoLeadStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}, Options: options.Index().SetName("created_at_desc")},
		{Keys: bson.D{{Key: "phone_e164", Value: 1}}, Options: options.Index().SetName("phone_e164")},
		{Keys: bson.D{{Key: "session_id", Value: 1}}, Options: options.Index().SetName("session_id").SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create lead indexes: %w", err)
	}
	return nil
}

func (s *MongoLeadStore) Save(ctx context.Context, lead *models.Lead) error {
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": lead.ID}, lead, options.Replace().SetUpsert(true))
	observability.DatabaseOperations.WithLabelValues("leads_save", observability.StatusLabel(err)).Inc()
	if err != nil {
		s.logger.Error("failed to save lead", zap.String("lead_id", lead.ID), zap.Error(err))
		return fmt.Errorf("failed to save lead: %w", err)
	}
	return nil
}

func (s *MongoLeadStore) Get(ctx context.Context, id string) (*models.Lead, error) {
	var lead models.Lead
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&lead)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NewNotFoundError("lead", id)
	}
	observability.DatabaseOperations.WithLabelValues("leads_get", observability.StatusLabel(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

func (s *MongoLeadStore) List(ctx context.Context, limit int) ([]models.Lead, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(clampLimit(limit)))
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	observability.DatabaseOperations.WithLabelValues("leads_list", observability.StatusLabel(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Lead{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode leads: %w", err)
	}
	return out, nil
}
