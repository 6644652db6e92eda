package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const MaxMessageLength = 500

// BookingMessage is one entry in a per-booking chat thread. Append-only,
// listed ascending by timestamp.
type BookingMessage struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookingID  string             `bson:"booking_id" json:"bookingId" validate:"required"`
	SenderID   string             `bson:"sender_id" json:"senderId" validate:"required"`
	SenderName string             `bson:"sender_name" json:"senderName"`
	Message    string             `bson:"message" json:"message"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
	IsFromHost bool               `bson:"is_from_host" json:"isFromHost"`
}

func (m *BookingMessage) BeforeCreate() error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	return nil
}

func (m *BookingMessage) ValidateMessage() error {
	if strings.TrimSpace(m.Message) == "" {
		return fmt.Errorf("message cannot be empty: %w", ErrValidation)
	}
	if len(m.Message) > MaxMessageLength {
		return fmt.Errorf("message exceeds %d characters: %w", MaxMessageLength, ErrValidation)
	}
	return nil
}

type MessagesRepo interface {
	CreateMessage(ctx context.Context, message *BookingMessage) (*BookingMessage, error)
	ListMessagesByBooking(ctx context.Context, bookingId string) ([]*BookingMessage, error)

	// LastMessageAt returns the timestamp of the sender's most recent message
	// in the thread, or the zero time when there is none.
	LastMessageAt(ctx context.Context, bookingId, senderId string) (time.Time, error)

	// CountMessagesSince counts the sender's messages in the thread at or
	// after the cutoff. Backs the daily cap.
	CountMessagesSince(ctx context.Context, bookingId, senderId string, since time.Time) (int64, error)
}

func (mdb *MongodbRepo) CreateMessage(ctx context.Context, message *BookingMessage) (*BookingMessage, error) {
	if err := message.ValidateMessage(); err != nil {
		return nil, err
	}
	if err := message.BeforeCreate(); err != nil {
		return nil, err
	}

	col, err := mdb.GetCollection(ctx, DBName, BookingMessagesCol)
	if err != nil {
		return nil, err
	}

	if _, err := col.InsertOne(ctx, message); err != nil {
		return nil, fmt.Errorf("error inserting message: %v: %w", err, ErrStore)
	}

	return message, nil
}

func (mdb *MongodbRepo) ListMessagesByBooking(ctx context.Context, bookingId string) ([]*BookingMessage, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingMessagesCol)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := col.Find(ctx, bson.M{"booking_id": bookingId}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding messages: %v: %w", err, ErrStore)
	}
	defer cursor.Close(ctx)

	var messages []*BookingMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("error decoding messages: %v: %w", err, ErrStore)
	}

	return messages, nil
}

func (mdb *MongodbRepo) LastMessageAt(ctx context.Context, bookingId, senderId string) (time.Time, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingMessagesCol)
	if err != nil {
		return time.Time{}, err
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	var last BookingMessage
	err = col.FindOne(ctx, bson.M{"booking_id": bookingId, "sender_id": senderId}, opts).Decode(&last)
	if err == mongo.ErrNoDocuments {
		// No prior message is the common case for a fresh thread.
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("error finding last message: %v: %w", err, ErrStore)
	}
	return last.Timestamp, nil
}

func (mdb *MongodbRepo) CountMessagesSince(ctx context.Context, bookingId, senderId string, since time.Time) (int64, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingMessagesCol)
	if err != nil {
		return 0, err
	}

	count, err := col.CountDocuments(ctx, bson.M{
		"booking_id": bookingId,
		"sender_id":  senderId,
		"timestamp":  bson.M{"$gte": since},
	})
	if err != nil {
		return 0, fmt.Errorf("error counting messages: %v: %w", err, ErrStore)
	}
	return count, nil
}
