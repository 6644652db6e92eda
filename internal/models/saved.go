package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SavedItem struct {
	ExperienceID string    `bson:"experience_id" json:"experienceId"`
	AddedAt      time.Time `bson:"added_at" json:"addedAt"`
}

// SavedList is one user's wishlist of experiences, stored as a single
// document keyed by user so add/remove are single upserts.
type SavedList struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID    string               `bson:"user_id" json:"userId" validate:"required"`
	Items     map[string]SavedItem `bson:"items" json:"items"`
	CreatedAt time.Time            `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time            `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

type SavedRepo interface {
	SaveExperience(ctx context.Context, userId, experienceId string) (*SavedList, error)
	UnsaveExperience(ctx context.Context, userId, experienceId string) error
	GetSavedByUserID(ctx context.Context, userId string) (*SavedList, error)
}

func (mdb *MongodbRepo) SaveExperience(ctx context.Context, userId, experienceId string) (*SavedList, error) {
	col, err := mdb.GetCollection(ctx, DBName, SavedCol)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	filter := bson.M{"user_id": userId}
	update := bson.M{
		"$set": bson.M{
			"updated_at": now,
			fmt.Sprintf("items.%s", experienceId): SavedItem{
				ExperienceID: experienceId,
				AddedAt:      now,
			},
		},
		"$setOnInsert": bson.M{
			"user_id":    userId,
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result SavedList
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		return nil, fmt.Errorf("error upserting saved list: %v: %w", err, ErrStore)
	}

	return &result, nil
}

func (mdb *MongodbRepo) UnsaveExperience(ctx context.Context, userId, experienceId string) error {
	col, err := mdb.GetCollection(ctx, DBName, SavedCol)
	if err != nil {
		return err
	}

	filter := bson.M{"user_id": userId}
	update := bson.M{
		"$unset": bson.M{
			fmt.Sprintf("items.%s", experienceId): "",
		},
		"$set": bson.M{
			"updated_at": time.Now(),
		},
	}

	if _, err := col.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("error removing saved experience: %v: %w", err, ErrStore)
	}
	return nil
}

func (mdb *MongodbRepo) GetSavedByUserID(ctx context.Context, userId string) (*SavedList, error) {
	col, err := mdb.GetCollection(ctx, DBName, SavedCol)
	if err != nil {
		return nil, err
	}

	var list SavedList
	err = col.FindOne(ctx, bson.M{"user_id": userId}).Decode(&list)
	if err == mongo.ErrNoDocuments {
		// An empty wishlist rather than an error when nothing was saved yet.
		return &SavedList{UserID: userId, Items: map[string]SavedItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding saved experiences: %v: %w", err, ErrStore)
	}

	return &list, nil
}
