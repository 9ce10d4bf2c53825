package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"legal-companion/internal/domain"
)

type searchDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Query     string             `bson:"query"`
	UserID    string             `bson:"user_id,omitempty"`
	Action    string             `bson:"action"`
	Timestamp time.Time          `bson:"timestamp"`
}

// MongoSearchHistoryRepository implementa SearchHistoryRepository sobre Mongo.
type MongoSearchHistoryRepository struct {
	coll *mongo.Collection
}

func NewMongoSearchHistoryRepository(coll *mongo.Collection) *MongoSearchHistoryRepository {
	return &MongoSearchHistoryRepository{coll: coll}
}

func (r *MongoSearchHistoryRepository) Create(ctx context.Context, entry domain.SearchEntry) error {
	_, err := r.coll.InsertOne(ctx, searchDoc{
		Query:     entry.Query,
		UserID:    entry.UserID,
		Action:    entry.Action,
		Timestamp: entry.Timestamp,
	})
	return mapMongoErr(err)
}

func (r *MongoSearchHistoryRepository) Count(ctx context.Context, q SearchQuery) (int64, error) {
	filter := bson.M{}
	if q.Action != "" {
		filter["action"] = q.Action
	}
	ts := bson.M{}
	if !q.From.IsZero() {
		ts["$gte"] = q.From
	}
	if !q.To.IsZero() {
		ts["$lt"] = q.To
	}
	if len(ts) > 0 {
		filter["timestamp"] = ts
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	return n, mapMongoErr(err)
}

func (r *MongoSearchHistoryRepository) TopQueries(ctx context.Context, action string, since time.Time, limit int) ([]domain.TopicCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"action": action, "timestamp": bson.M{"$gte": since}}}},
		{{Key: "$project", Value: bson.M{"topic": bson.M{"$toLower": bson.M{"$trim": bson.M{"input": "$query"}}}}}},
		{{Key: "$match", Value: bson.M{"topic": bson.M{"$ne": ""}}}},
		{{Key: "$group", Value: bson.M{"_id": "$topic", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	defer cursor.Close(ctx)

	topics := make([]domain.TopicCount, 0, limit)
	for cursor.Next(ctx) {
		var row struct {
			Topic string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		topics = append(topics, domain.TopicCount{Topic: row.Topic, Count: row.Count})
	}
	return topics, cursor.Err()
}

func (r *MongoSearchHistoryRepository) Recent(ctx context.Context, action string, limit int) ([]domain.SearchEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	filter := bson.M{}
	if action != "" {
		filter["action"] = action
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	defer cursor.Close(ctx)

	entries := make([]domain.SearchEntry, 0, limit)
	for cursor.Next(ctx) {
		var doc searchDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		entries = append(entries, domain.SearchEntry{
			ID:        doc.ID.Hex(),
			Query:     doc.Query,
			UserID:    doc.UserID,
			Action:    doc.Action,
			Timestamp: doc.Timestamp.UTC(),
		})
	}
	return entries, cursor.Err()
}
