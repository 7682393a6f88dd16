package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ows-backend/models"
)

// MediaRepository is the MongoDB persistence layer for media records.
type MediaRepository struct {
	collection *mongo.Collection
}

func NewMediaRepository(db *mongo.Database) *MediaRepository {
	return &MediaRepository{collection: db.Collection("media")}
}

// Get returns (nil, nil) when no record exists, so callers distinguish
// absence from infrastructure failure.
func (r *MediaRepository) Get(ctx context.Context, id string) (*models.MediaItem, error) {
	var item models.MediaItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Upsert writes the record keyed on its id. Provenance fields are written
// only on first insert, so a retried commit cannot rewrite who added the
// item or when.
func (r *MediaRepository) Upsert(ctx context.Context, item *models.MediaItem) error {
	update := bson.M{
		"$set": bson.M{
			"title":             item.Title,
			"media_type":        item.MediaType,
			"format":            item.Format,
			"filesize":          item.Filesize,
			"s3_key":            item.S3Key,
			"thumbnail_key":     item.ThumbnailKey,
			"thumbnail_pending": item.ThumbnailPending,
			"files":             item.Files,
			"categories":        item.Categories,
			"public":            item.Public,
			"updated_at":        time.Now().UTC(),
		},
		"$setOnInsert": bson.M{
			"added_by": item.AddedBy,
			"added_at": item.AddedAt,
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": item.ID}, update, options.Update().SetUpsert(true))
	return err
}

func (r *MediaRepository) List(ctx context.Context, publicOnly bool) ([]*models.MediaItem, error) {
	filter := bson.M{}
	if publicOnly {
		filter["public"] = true
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "added_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []*models.MediaItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MediaRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// CountFiles returns how many files the record already holds, 0 when the
// record does not exist yet.
func (r *MediaRepository) CountFiles(ctx context.Context, id string) (int, error) {
	item, err := r.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if item == nil {
		return 0, nil
	}
	return len(item.Files), nil
}

// SetThumbnailIfPending is a conditional write: the filter demands the
// record still be pending, so a concurrent explicit selection makes this a
// no-op instead of an overwrite.
func (r *MediaRepository) SetThumbnailIfPending(ctx context.Context, id, key string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "thumbnail_pending": true},
		bson.M{"$set": bson.M{
			"thumbnail_key":     key,
			"thumbnail_pending": false,
			"updated_at":        time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// SetSummary is last-write-wins.
func (r *MediaRepository) SetSummary(ctx context.Context, id, summary string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"ai_summary": summary,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// ReferencesKey reports whether any record points at the storage key, in
// any of the slots that can hold one.
func (r *MediaRepository) ReferencesKey(ctx context.Context, key string) (bool, error) {
	filter := bson.M{"$or": []bson.M{
		{"s3_key": key},
		{"thumbnail_key": key},
		{"files.s3_key": key},
	}}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
