package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookingsRepo is the booking ledger. Occupancy is always derived fresh from
// it; nothing caches per-slot counts across requests.
type BookingsRepo interface {
	// CreateBooking re-checks slot occupancy and inserts the booking as one
	// atomic unit. maxAttendees is the capacity of the target slot. Returns
	// ErrCapacityExceeded without writing when the slot cannot fit the
	// requested participants.
	CreateBooking(ctx context.Context, booking *Booking, maxAttendees int) (*Booking, error)

	// SlotOccupancy sums participants across capacity-holding bookings for
	// one (experience, date, time) slot.
	SlotOccupancy(ctx context.Context, experienceId, date, timeStr string) (int, error)

	// DateOccupancy is the per-date mode: summed participants keyed by time
	// string, covering every time that has at least one active booking.
	DateOccupancy(ctx context.Context, experienceId, date string) (map[string]int, error)

	// ActiveParticipants sums participants across all active bookings of an
	// experience, for the derived attendee counter on the detail view.
	ActiveParticipants(ctx context.Context, experienceId string) (int, error)

	GetBookingByID(ctx context.Context, id string) (*Booking, error)
	ListBookingsByGuest(ctx context.Context, guestId string) ([]*Booking, error)
	ListBookingsByHost(ctx context.Context, hostId string) ([]*Booking, error)

	// UpdateBookingStatus moves a booking from one status to another. The
	// expected current status is part of the filter so two racing
	// transitions cannot both apply.
	UpdateBookingStatus(ctx context.Context, id string, from, to BookingStatus, hostResponse string) (*Booking, error)
}

func capacityHoldingFilter(experienceId string) bson.M {
	statuses := CapacityHoldingStatuses()
	in := make([]BookingStatus, len(statuses))
	copy(in, statuses)
	return bson.M{
		"experience_id": experienceId,
		"status":        bson.M{"$in": in},
	}
}

func (mdb *MongodbRepo) SlotOccupancy(ctx context.Context, experienceId, date, timeStr string) (int, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsCol)
	if err != nil {
		return 0, err
	}
	return slotOccupancy(ctx, col, experienceId, date, timeStr)
}

// slotOccupancy runs against an explicit collection handle so the booking
// insert can reuse it inside a session context.
func slotOccupancy(ctx context.Context, col *mongo.Collection, experienceId, date, timeStr string) (int, error) {
	match := capacityHoldingFilter(experienceId)
	match["date"] = date
	match["time"] = timeStr

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$participants"},
		}}},
	}

	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("error aggregating slot occupancy: %v: %w", err, ErrStore)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("error decoding slot occupancy: %v: %w", err, ErrStore)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

func (mdb *MongodbRepo) DateOccupancy(ctx context.Context, experienceId, date string) (map[string]int, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsCol)
	if err != nil {
		return nil, err
	}

	match := capacityHoldingFilter(experienceId)
	match["date"] = date

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$time",
			"total": bson.M{"$sum": "$participants"},
		}}},
	}

	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating date occupancy: %v: %w", err, ErrStore)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Time  string `bson:"_id"`
		Total int    `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("error decoding date occupancy: %v: %w", err, ErrStore)
	}

	occupancy := make(map[string]int, len(results))
	for _, r := range results {
		occupancy[r.Time] = r.Total
	}
	return occupancy, nil
}

func (mdb *MongodbRepo) ActiveParticipants(ctx context.Context, experienceId string) (int, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsCol)
	if err != nil {
		return 0, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: capacityHoldingFilter(experienceId)}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$participants"},
		}}},
	}

	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("error aggregating active participants: %v: %w", err, ErrStore)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("error decoding active participants: %v: %w", err, ErrStore)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// CreateBooking wraps the occupancy re-check and the insert in a single
// transaction. Checking availability in one round-trip and inserting in
// another would let two guests racing for the last spot both get in;
// re-reading the aggregate inside the transaction closes that window.
func (mdb *MongodbRepo) CreateBooking(ctx context.Context, booking *Booking, maxAttendees int) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsCol)
	if err != nil {
		return nil, err
	}

	session, err := mdb.mongodbClient.StartSession()
	if err != nil {
		return nil, fmt.Errorf("error starting session: %v: %w", err, ErrStore)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		occupied, err := slotOccupancy(sc, col, booking.ExperienceID, booking.Date, booking.Time)
		if err != nil {
			return nil, err
		}

		// Raw subtraction on purpose; only reporting clamps to zero.
		if maxAttendees-occupied < booking.Participants {
			return nil, fmt.Errorf("slot %s %s has %d of %d spots taken: %w",
				booking.Date, booking.Time, occupied, maxAttendees, ErrCapacityExceeded)
		}

		if _, err := col.InsertOne(sc, booking); err != nil {
			return nil, fmt.Errorf("error inserting booking: %v: %w", err, ErrStore)
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

func (mdb *MongodbRepo) GetBookingByID(ctx context.Context, id string) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsCol)
	if err != nil {
		return nil, err
	}

	var booking Booking
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error finding booking: %v: %w", err, ErrStore)
	}

	return &booking, nil
}

func (mdb *MongodbRepo) ListBookingsByGuest(ctx context.Context, guestId string) ([]*Booking, error) {
	return mdb.listBookings(ctx, bson.M{"guest_id": guestId})
}

func (mdb *MongodbRepo) ListBookingsByHost(ctx context.Context, hostId string) ([]*Booking, error) {
	return mdb.listBookings(ctx, bson.M{"host_id": hostId})
}

func (mdb *MongodbRepo) listBookings(ctx context.Context, filter bson.M) ([]*Booking, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsCol)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %v: %w", err, ErrStore)
	}
	defer cursor.Close(ctx)

	var bookings []*Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %v: %w", err, ErrStore)
	}

	return bookings, nil
}

func (mdb *MongodbRepo) UpdateBookingStatus(ctx context.Context, id string, from, to BookingStatus, hostResponse string) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsCol)
	if err != nil {
		return nil, err
	}

	set := bson.M{
		"status":     to,
		"updated_at": time.Now(),
	}
	if hostResponse != "" {
		set["host_response"] = hostResponse
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated Booking
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set}, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		// Either the booking is gone or its status moved underneath us.
		if _, getErr := mdb.GetBookingByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("booking %s is no longer %s: %w", id, from, ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("error updating booking status: %v: %w", err, ErrStore)
	}

	return &updated, nil
}
