package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Test connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	if err := createIndexes(client, cfg.DBName); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return client, nil
}

func createIndexes(client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	mediaCollection := db.Collection("media")
	mediaIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "public", Value: 1}, {Key: "added_at", Value: -1}}},
		{Keys: bson.D{{Key: "media_type", Value: 1}}},
		{Keys: bson.D{{Key: "categories", Value: 1}}},
		{Keys: bson.D{{Key: "files.s3_key", Value: 1}}},
	}
	if _, err := mediaCollection.Indexes().CreateMany(context.Background(), mediaIndexes); err != nil {
		return err
	}

	showsCollection := db.Collection("shows")
	showIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: -1}}},
	}
	if _, err := showsCollection.Indexes().CreateMany(context.Background(), showIndexes); err != nil {
		return err
	}

	updatesCollection := db.Collection("updates")
	updateIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "visible", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "pinned", Value: 1}}},
	}
	if _, err := updatesCollection.Indexes().CreateMany(context.Background(), updateIndexes); err != nil {
		return err
	}

	pressCollection := db.Collection("press")
	pressIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "public", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := pressCollection.Indexes().CreateMany(context.Background(), pressIndexes); err != nil {
		return err
	}

	auditCollection := db.Collection("audit_events")
	auditIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}
	if _, err := auditCollection.Indexes().CreateMany(context.Background(), auditIndexes); err != nil {
		return err
	}

	return nil
}
