package dataaccess

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultDatabase is the database used when none is configured.
	DefaultDatabase DatabaseName = "tickets"

	panelsCollection = "ticket_panels"

	statsCollection = "staff_stats"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// DatabaseName is the name of the mongo database.
type DatabaseName string

// NewDatabase returns the database handle for the given client.
func NewDatabase(client *mongo.Client, name DatabaseName) *mongo.Database {
	if name == "" {
		name = DefaultDatabase
	}
	return client.Database(string(name))
}

// EnsureIndexes creates the indexes that back the uniqueness guarantees of the collections.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	// One panel per guild.
	if _, err := db.Collection(panelsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "guild_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("error creating panel index: %w", err)
	}

	// One counter per guild and user.
	if _, err := db.Collection(statsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "guild_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "guild_id", Value: 1}, {Key: "claimed_count", Value: -1}},
		},
	}); err != nil {
		return fmt.Errorf("error creating stats indexes: %w", err)
	}
	return nil
}

// notFound translates the mongo no documents error to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
