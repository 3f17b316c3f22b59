package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"investimmo-bot/models"
)

const mongoCollection = "scored_listings"

// MongoWriter upserts scored listings into a MongoDB collection keyed by URL.
type MongoWriter struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoWriter connects to uri and makes sure the url index exists.
func NewMongoWriter(ctx context.Context, uri, database string) (*MongoWriter, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	collection := client.Database(database).Collection(mongoCollection)
	_, err = collection.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "url", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: create index: %w", err)
	}

	return &MongoWriter{client: client, collection: collection}, nil
}

func (mw *MongoWriter) Write(ctx context.Context, listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	if _, err := mw.collection.BulkWrite(ctx, upsertModels(listings), options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("mongo: write: %w", err)
	}
	return nil
}

func upsertModels(listings []*models.Listing) []mongo.WriteModel {
	writes := make([]mongo.WriteModel, 0, len(listings))
	for _, l := range listings {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"url": l.URL}).
			SetReplacement(l).
			SetUpsert(true))
	}
	return writes
}

func (mw *MongoWriter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return mw.client.Disconnect(ctx)
}
