package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoQuestionStore keeps questions in a MongoDB collection keyed by step.
type MongoQuestionStore struct {
	collection *mongo.Collection
	logger     *logging.SafeLogger

	txOnce       sync.Once
	transactions bool
}

func NewMongoQuestionStore(db *mongo.Database, collection string, logger *logging.SafeLogger) *MongoQuestionStore {
	if logger == nil {
		logger = logging.Logger
	}
	return &MongoQuestionStore{
		collection: db.Collection(collection),
		logger:     logger.Named("question_store"),
	}
}

// EnsureIndexes creates the unique step index and the ordering index.
func (s *MongoQuestionStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "step", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("step_unique"),
		},
		{
			Keys:    bson.D{{Key: "is_active", Value: 1}, {Key: "order_index", Value: 1}},
			Options: options.Index().SetName("active_order"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create question indexes: %w", err)
	}
	return nil
}

func (s *MongoQuestionStore) All(ctx context.Context) ([]models.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order_index", Value: 1}, {Key: "step", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	observability.DatabaseOperations.WithLabelValues("questions_find", observability.StatusLabel(err)).Inc()
	if err != nil {
		s.logger.Error("failed to list questions", zap.Error(err))
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Question
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	return out, nil
}

func (s *MongoQuestionStore) Get(ctx context.Context, step string) (*models.Question, error) {
	var q models.Question
	err := s.collection.FindOne(ctx, bson.M{"step": step}).Decode(&q)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NewNotFoundError("question", step)
	}
	observability.DatabaseOperations.WithLabelValues("questions_get", observability.StatusLabel(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}

func (s *MongoQuestionStore) Insert(ctx context.Context, q models.Question) error {
	_, err := s.collection.InsertOne(ctx, q)
	observability.DatabaseOperations.WithLabelValues("questions_insert", observability.StatusLabel(err)).Inc()
	if mongo.IsDuplicateKeyError(err) {
		return models.NewValidationError("step", "%q already exists", q.Step)
	}
	if err != nil {
		s.logger.Error("failed to insert question", zap.String("step", q.Step), zap.Error(err))
		return fmt.Errorf("failed to insert question: %w", err)
	}
	return nil
}

func (s *MongoQuestionStore) Replace(ctx context.Context, q models.Question) error {
	res, err := s.collection.ReplaceOne(ctx, bson.M{"step": q.Step}, q)
	observability.DatabaseOperations.WithLabelValues("questions_replace", observability.StatusLabel(err)).Inc()
	if err != nil {
		return fmt.Errorf("failed to replace question: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("question", q.Step)
	}
	return nil
}

func (s *MongoQuestionStore) Delete(ctx context.Context, step string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"step": step})
	observability.DatabaseOperations.WithLabelValues("questions_delete", observability.StatusLabel(err)).Inc()
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("question", step)
	}
	return nil
}

func (s *MongoQuestionStore) SetOrder(ctx context.Context, order map[string]int) error {
	if len(order) == 0 {
		return nil
	}
	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(order))
	for step, idx := range order {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"step": step}).
			SetUpdate(bson.M{"$set": bson.M{"order_index": idx, "updated_at": now}}))
	}
	res, err := s.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	observability.DatabaseOperations.WithLabelValues("questions_reorder", observability.StatusLabel(err)).Inc()
	if err != nil {
		return fmt.Errorf("failed to reorder questions: %w", err)
	}
	if int(res.MatchedCount) != len(order) {
		s.logger.Warn("reorder matched fewer questions than requested",
			zap.Int64("matched", res.MatchedCount),
			zap.Int("requested", len(order)))
	}
	return nil
}

// Atomically runs fn inside a session transaction. Standalone servers have no
// transactions; there fn runs directly and the repository lock is the only guard.
func (s *MongoQuestionStore) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.supportsTransactions(ctx) {
		return fn(ctx)
	}

	session, err := s.collection.Database().Client().StartSession()
	if err != nil {
		s.logger.Error("failed to start database session", zap.Error(err))
		return fmt.Errorf("failed to start database session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	observability.DatabaseOperations.WithLabelValues("questions_transaction", observability.StatusLabel(err)).Inc()
	return err
}

// supportsTransactions asks the server once whether it is a replica set member or mongos.
func (s *MongoQuestionStore) supportsTransactions(ctx context.Context) bool {
	s.txOnce.Do(func() {
		var hello struct {
			SetName string `bson:"setName"`
			Msg     string `bson:"msg"`
		}
		err := s.collection.Database().RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
		if err != nil {
			s.logger.Warn("could not detect transaction support", zap.Error(err))
			return
		}
		s.transactions = hello.SetName != "" || hello.Msg == "isdbgrid"
		s.logger.Info("question store transactions", zap.Bool("enabled", s.transactions))
	})
	return s.transactions
}
