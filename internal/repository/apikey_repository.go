package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"ows-backend/models"
)

// APIKeyRepository stores the embed API keys used by third-party sites.
type APIKeyRepository struct {
	collection *mongo.Collection
}

func NewAPIKeyRepository(db *mongo.Database) *APIKeyRepository {
	return &APIKeyRepository{collection: db.Collection("api_keys")}
}

// Create mints a random key value and stores the record.
func (r *APIKeyRepository) Create(ctx context.Context, label string, scopes []string, createdBy string) (*models.APIKey, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}

	key := &models.APIKey{
		ID:        "ows_" + hex.EncodeToString(raw),
		Label:     label,
		Scopes:    scopes,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.collection.InsertOne(ctx, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Lookup resolves a presented key value, (nil, nil) when unknown or revoked.
func (r *APIKeyRepository) Lookup(ctx context.Context, keyValue string) (*models.APIKey, error) {
	var key models.APIKey
	err := r.collection.FindOne(ctx, bson.M{"_id": keyValue}).Decode(&key)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *APIKeyRepository) List(ctx context.Context) ([]*models.APIKey, error) {
	return listAll[models.APIKey](ctx, r.collection, bson.M{}, bson.D{{Key: "created_at", Value: -1}})
}

// Revoke removes the key. Embed callers presenting it fail on the next
// lookup.
func (r *APIKeyRepository) Revoke(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.collection, id)
}
