package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ExperiencesRepo interface {
	CreateExperience(ctx context.Context, experience *Experience) (*Experience, error)
	GetExperienceByID(ctx context.Context, id string) (*Experience, error)
	ListExperiences(ctx context.Context, offset, limit int) ([]*Experience, int, error)
	QueryExperiences(ctx context.Context, filter ExperienceFilter, offset, limit int) ([]*Experience, int, error)
	ListExperiencesByHost(ctx context.Context, hostId string, offset, limit int) ([]*Experience, int, error)
	UpdateExperience(ctx context.Context, id string, updates map[string]interface{}) (*Experience, error)
	DeleteExperience(ctx context.Context, id string) error
}

// ExperienceFilter narrows ListExperiences to what the search bar supports.
type ExperienceFilter struct {
	Category Category
	Location string
	MinPrice float64
	MaxPrice float64
}

func (f ExperienceFilter) toBson() bson.M {
	query := bson.M{}
	if f.Category != "" && f.Category != CategoryAll {
		query["category"] = f.Category
	}
	if f.Location != "" {
		query["location"] = bson.M{"$regex": f.Location, "$options": "i"}
	}
	price := bson.M{}
	if f.MinPrice > 0 {
		price["$gte"] = f.MinPrice
	}
	if f.MaxPrice > 0 {
		price["$lte"] = f.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}
	return query
}

func (mdb *MongodbRepo) CreateExperience(ctx context.Context, experience *Experience) (*Experience, error) {
	col, err := mdb.GetCollection(ctx, DBName, ExperiencesCol)
	if err != nil {
		return nil, err
	}

	if _, err := col.InsertOne(ctx, experience); err != nil {
		return nil, fmt.Errorf("error inserting experience: %v: %w", err, ErrStore)
	}

	return experience, nil
}

func (mdb *MongodbRepo) GetExperienceByID(ctx context.Context, id string) (*Experience, error) {
	col, err := mdb.GetCollection(ctx, DBName, ExperiencesCol)
	if err != nil {
		return nil, err
	}

	var experience Experience
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&experience)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("experience %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error finding experience: %v: %w", err, ErrStore)
	}

	return &experience, nil
}

func (mdb *MongodbRepo) ListExperiences(ctx context.Context, offset, limit int) ([]*Experience, int, error) {
	return mdb.QueryExperiences(ctx, ExperienceFilter{}, offset, limit)
}

func (mdb *MongodbRepo) QueryExperiences(ctx context.Context, filter ExperienceFilter, offset, limit int) ([]*Experience, int, error) {
	col, err := mdb.GetCollection(ctx, DBName, ExperiencesCol)
	if err != nil {
		return nil, 0, err
	}

	query := filter.toBson()
	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting experiences: %v: %w", err, ErrStore)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding experiences: %v: %w", err, ErrStore)
	}
	defer cursor.Close(ctx)

	var experiences []*Experience
	if err := cursor.All(ctx, &experiences); err != nil {
		return nil, 0, fmt.Errorf("error decoding experiences: %v: %w", err, ErrStore)
	}

	return experiences, int(total), nil
}

func (mdb *MongodbRepo) ListExperiencesByHost(ctx context.Context, hostId string, offset, limit int) ([]*Experience, int, error) {
	col, err := mdb.GetCollection(ctx, DBName, ExperiencesCol)
	if err != nil {
		return nil, 0, err
	}

	query := bson.M{"host.id": hostId}
	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting host experiences: %v: %w", err, ErrStore)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding host experiences: %v: %w", err, ErrStore)
	}
	defer cursor.Close(ctx)

	var experiences []*Experience
	if err := cursor.All(ctx, &experiences); err != nil {
		return nil, 0, fmt.Errorf("error decoding host experiences: %v: %w", err, ErrStore)
	}

	return experiences, int(total), nil
}

func (mdb *MongodbRepo) UpdateExperience(ctx context.Context, id string, updates map[string]interface{}) (*Experience, error) {
	col, err := mdb.GetCollection(ctx, DBName, ExperiencesCol)
	if err != nil {
		return nil, err
	}

	updates["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated Experience
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": updates}, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("experience %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error updating experience: %v: %w", err, ErrStore)
	}

	return &updated, nil
}

// DeleteExperience removes the catalog record only. Existing bookings are
// orphaned on purpose; the ledger keeps them for guests' history.
func (mdb *MongodbRepo) DeleteExperience(ctx context.Context, id string) error {
	col, err := mdb.GetCollection(ctx, DBName, ExperiencesCol)
	if err != nil {
		return err
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting experience: %v: %w", err, ErrStore)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("experience %s: %w", id, ErrNotFound)
	}

	return nil
}
