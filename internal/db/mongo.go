package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/ride-booking/internal/models"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// NewMongoStore wires the collections of one database.
func NewMongoStore(ctx context.Context, database *mongo.Database) (Store, error) {
	users := &MongoUserCollection{Collection: database.Collection("users")}
	if err := users.EnsureIndexes(ctx); err != nil {
		return Store{}, fmt.Errorf("user indexes: %w", err)
	}
	trips := &MongoTripCollection{Collection: database.Collection("trips")}
	if err := trips.EnsureIndexes(ctx); err != nil {
		return Store{}, fmt.Errorf("trip indexes: %w", err)
	}
	return Store{
		Users:    users,
		Vehicles: &MongoVehicleCollection{Collection: database.Collection("vehicles")},
		Trips:    trips,
	}, nil
}

// MongoVehicleCollection wraps the vehicles collection.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// InsertVehicle inserts a vehicle record into the collection.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.InsertOne(ctx, vehicle)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: vehicle %s", ErrDuplicate, vehicle.ID)
	}
	return err
}

// FindVehicles returns the whole catalog ordered by id.
func (c *MongoVehicleCollection) FindVehicles(ctx context.Context) ([]models.Vehicle, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	vehicles := []models.Vehicle{}
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// FindVehicleByID finds a vehicle by its ID.
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	var vehicle models.Vehicle
	if err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&vehicle); err != nil {
		return nil, notFound(err, "vehicle "+id)
	}
	return &vehicle, nil
}

// MongoTripCollection wraps the trips collection.
type MongoTripCollection struct {
	Collection *mongo.Collection
}

// EnsureIndexes indexes trips by user and start time.
func (c *MongoTripCollection) EnsureIndexes(ctx context.Context) error {
	_, err := c.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "start_time", Value: 1}},
	})
	return err
}

// InsertTrip inserts a trip record into the collection.
func (c *MongoTripCollection) InsertTrip(ctx context.Context, trip models.Trip) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.InsertOne(ctx, trip)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: trip %s", ErrDuplicate, trip.ID)
	}
	return err
}

// UpdateTripRating sets the rating of a trip.
func (c *MongoTripCollection) UpdateTripRating(ctx context.Context, id string, rating int) error {
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"rating": rating}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: trip %s", ErrNotFound, id)
	}
	return nil
}

// FindTrips returns every trip ordered by start time, then id.
func (c *MongoTripCollection) FindTrips(ctx context.Context) ([]models.Trip, error) {
	return c.find(ctx, bson.M{})
}

// FindTripsByUser returns one user's trips ordered by start time.
func (c *MongoTripCollection) FindTripsByUser(ctx context.Context, userID string) ([]models.Trip, error) {
	return c.find(ctx, bson.M{"user_id": userID})
}

func (c *MongoTripCollection) find(ctx context.Context, filter bson.M) ([]models.Trip, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	// trips are appended at their start time, so this is insertion order
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	trips := []models.Trip{}
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}
