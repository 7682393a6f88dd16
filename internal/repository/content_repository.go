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

// ContentRepository covers the site's editorial collections: shows, venues,
// updates, press kits and categories. All of them are flat CRUD with string
// ids, so one repository holds them.
type ContentRepository struct {
	shows      *mongo.Collection
	venues     *mongo.Collection
	updates    *mongo.Collection
	press      *mongo.Collection
	categories *mongo.Collection
}

func NewContentRepository(db *mongo.Database) *ContentRepository {
	return &ContentRepository{
		shows:      db.Collection("shows"),
		venues:     db.Collection("venues"),
		updates:    db.Collection("updates"),
		press:      db.Collection("press"),
		categories: db.Collection("categories"),
	}
}

func getByID[T any](ctx context.Context, coll *mongo.Collection, id string) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func listAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, sort bson.D) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) (bool, error) {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *ContentRepository) GetShow(ctx context.Context, id string) (*models.Show, error) {
	return getByID[models.Show](ctx, r.shows, id)
}

func (r *ContentRepository) ListShows(ctx context.Context, upcomingOnly bool) ([]*models.Show, error) {
	filter := bson.M{}
	if upcomingOnly {
		// Dates are stored as YYYY-MM-DD strings, so the lexicographic
		// comparison is also the chronological one.
		filter["date"] = bson.M{"$gte": time.Now().UTC().Format("2006-01-02")}
	}
	return listAll[models.Show](ctx, r.shows, filter, bson.D{{Key: "date", Value: 1}})
}

func (r *ContentRepository) SaveShow(ctx context.Context, show *models.Show) error {
	_, err := r.shows.ReplaceOne(ctx, bson.M{"_id": show.ID}, show, options.Replace().SetUpsert(true))
	return err
}

func (r *ContentRepository) DeleteShow(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.shows, id)
}

func (r *ContentRepository) GetVenue(ctx context.Context, id string) (*models.Venue, error) {
	return getByID[models.Venue](ctx, r.venues, id)
}

func (r *ContentRepository) ListVenues(ctx context.Context) ([]*models.Venue, error) {
	return listAll[models.Venue](ctx, r.venues, bson.M{}, bson.D{{Key: "name", Value: 1}})
}

func (r *ContentRepository) SaveVenue(ctx context.Context, venue *models.Venue) error {
	_, err := r.venues.ReplaceOne(ctx, bson.M{"_id": venue.ID}, venue, options.Replace().SetUpsert(true))
	return err
}

func (r *ContentRepository) DeleteVenue(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.venues, id)
}

func (r *ContentRepository) GetUpdate(ctx context.Context, id string) (*models.Update, error) {
	return getByID[models.Update](ctx, r.updates, id)
}

// ListUpdates returns pinned posts first, newest after.
func (r *ContentRepository) ListUpdates(ctx context.Context, visibleOnly bool) ([]*models.Update, error) {
	filter := bson.M{}
	if visibleOnly {
		filter["visible"] = true
	}
	return listAll[models.Update](ctx, r.updates, filter,
		bson.D{{Key: "pinned", Value: -1}, {Key: "created_at", Value: -1}})
}

func (r *ContentRepository) SaveUpdate(ctx context.Context, update *models.Update) error {
	_, err := r.updates.ReplaceOne(ctx, bson.M{"_id": update.ID}, update, options.Replace().SetUpsert(true))
	return err
}

func (r *ContentRepository) DeleteUpdate(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.updates, id)
}

func (r *ContentRepository) GetPress(ctx context.Context, id string) (*models.Press, error) {
	return getByID[models.Press](ctx, r.press, id)
}

func (r *ContentRepository) ListPress(ctx context.Context) ([]*models.Press, error) {
	return listAll[models.Press](ctx, r.press, bson.M{}, bson.D{{Key: "created_at", Value: -1}})
}

func (r *ContentRepository) SavePress(ctx context.Context, press *models.Press) error {
	_, err := r.press.ReplaceOne(ctx, bson.M{"_id": press.ID}, press, options.Replace().SetUpsert(true))
	return err
}

func (r *ContentRepository) DeletePress(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.press, id)
}

// ReferencesKey reports whether any press kit attaches the storage key.
func (r *ContentRepository) ReferencesKey(ctx context.Context, key string) (bool, error) {
	count, err := r.press.CountDocuments(ctx,
		bson.M{"file_attachments.s3_key": key},
		options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ContentRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return listAll[models.Category](ctx, r.categories, bson.M{}, bson.D{{Key: "name", Value: 1}})
}

func (r *ContentRepository) SaveCategory(ctx context.Context, category *models.Category) error {
	_, err := r.categories.ReplaceOne(ctx, bson.M{"_id": category.ID}, category, options.Replace().SetUpsert(true))
	return err
}

func (r *ContentRepository) DeleteCategory(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.categories, id)
}
