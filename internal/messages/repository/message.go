package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	messageserrors "skillex/internal/messages/errors"
	"skillex/pkg/config"
	mongotx "skillex/pkg/db/mongo"
	"skillex/pkg/model"
)

const CollectionName = "messages"

// ThreadSummary is the raw per-thread aggregation row before user embedding.
type ThreadSummary struct {
	ThreadID    string        `bson:"_id"`
	LastMessage model.Message `bson:"last_message"`
	UnreadCount int           `bson:"unread_count"`
}

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	FindThreads(ctx context.Context, userID string) ([]ThreadSummary, error)
	FindByThread(ctx context.Context, threadID string, limit int, skip int64) ([]*model.Message, error)
	CountByThread(ctx context.Context, threadID string) (int64, error)
	// MarkThreadRead flips every unread message addressed to recipientID in
	// the thread.
	MarkThreadRead(ctx context.Context, threadID, recipientID string) error
	MarkRead(ctx context.Context, id, recipientID string) (bool, error)
}

type mongoMessageRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoMessageRepository(cfg *config.Config) MessageRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoMessageRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoMessageRepository) Create(ctx context.Context, message *model.Message) error {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.WriteTimeout)
	defer cancel()

	message.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		message.ID = oid.Hex()
	}
	return nil
}

func (r *mongoMessageRepository) FindThreads(ctx context.Context, userID string) ([]ThreadSummary, error) {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": []bson.M{
			{"sender_id": userID},
			{"recipient_id": userID},
		}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$thread_id",
			"last_message": bson.M{"$first": "$$ROOT"},
			"unread_count": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$recipient_id", userID}},
					bson.M{"$eq": bson.A{"$is_read", false}},
				}},
				1,
				0,
			}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "last_message.created_at", Value: -1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate threads: %w", err)
	}
	defer cursor.Close(ctx)

	var threads []ThreadSummary
	if err = cursor.All(ctx, &threads); err != nil {
		return nil, fmt.Errorf("failed to decode threads: %w", err)
	}
	return threads, nil
}

func (r *mongoMessageRepository) FindByThread(ctx context.Context, threadID string, limit int, skip int64) ([]*model.Message, error) {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(skip)

	cursor, err := r.collection.Find(ctx, bson.M{"thread_id": threadID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*model.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}

func (r *mongoMessageRepository) CountByThread(ctx context.Context, threadID string) (int64, error) {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"thread_id": threadID})
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

func (r *mongoMessageRepository) MarkThreadRead(ctx context.Context, threadID, recipientID string) error {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"thread_id":    threadID,
		"recipient_id": recipientID,
		"is_read":      false,
	}
	_, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark thread read: %w", err)
	}
	return nil
}

func (r *mongoMessageRepository) MarkRead(ctx context.Context, id, recipientID string) (bool, error) {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", messageserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "recipient_id": recipientID}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return false, fmt.Errorf("failed to mark message read: %w", err)
	}
	return result.MatchedCount == 1, nil
}
