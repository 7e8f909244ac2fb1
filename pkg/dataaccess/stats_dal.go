package dataaccess

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/custom"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const statsDalName = "stats_dal"

type StatsDal interface {
	// IncrementClaim atomically creates or increments the claim counter of a user and returns the updated stat.
	IncrementClaim(ctx context.Context, guildID, userID string) (*entities.StaffStat, error)

	// TopClaimers gets the stats of a guild ordered by claim count, highest first.
	TopClaimers(ctx context.Context, guildID string, limit int) ([]*entities.StaffStat, error)

	// ResetUser sets the claim counter of a user to zero.
	ResetUser(ctx context.Context, guildID, userID string) error

	// ResetGuild sets every claim counter of a guild to zero.
	ResetGuild(ctx context.Context, guildID string) error
}

type statsDal struct {
	// l is the logger.
	l *slog.Logger

	// db is the database.
	db *mongo.Database
}

// NewStatsDal creates a new staff stats data access layer.
func NewStatsDal(l *slog.Logger, db *mongo.Database) StatsDal {
	return &statsDal{
		l:  l.With(slog.String(logging.KeyDal, statsDalName)),
		db: db,
	}
}

func (d *statsDal) track(query string) func() {
	t := monitoring.Track(statsDalName, query, d.db.Name(), statsCollection)
	return func() { t.ObserveDuration() }
}

func (d *statsDal) IncrementClaim(ctx context.Context, guildID, userID string) (*entities.StaffStat, error) {
	defer d.track("increment_claim")()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	stat := new(entities.StaffStat)
	err := d.db.Collection(statsCollection).FindOneAndUpdate(ctx,
		bson.M{"guild_id": guildID, "user_id": userID},
		bson.M{
			"$inc": bson.M{"claimed_count": 1},
			"$set": bson.M{"updated_at": custom.Now()},
		},
		opts,
	).Decode(stat)
	if err != nil {
		return nil, fmt.Errorf("error incrementing claim count: %w", err)
	}
	return stat, nil
}

// topClaimersSort orders by claims, highest first. Ties are broken by user ID so positions are stable.
var topClaimersSort = bson.D{
	{Key: "claimed_count", Value: -1},
	{Key: "user_id", Value: 1},
}

func (d *statsDal) TopClaimers(ctx context.Context, guildID string, limit int) ([]*entities.StaffStat, error) {
	defer d.track("top_claimers")()

	opts := options.Find().
		SetSort(topClaimersSort).
		SetLimit(int64(limit))

	cur, err := d.db.Collection(statsCollection).Find(ctx, bson.M{"guild_id": guildID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding stats: %w", err)
	}

	stats := make([]*entities.StaffStat, 0)
	if err := cur.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("error decoding stats: %w", err)
	}
	return stats, nil
}

func (d *statsDal) ResetUser(ctx context.Context, guildID, userID string) error {
	defer d.track("reset_user")()

	_, err := d.db.Collection(statsCollection).UpdateOne(ctx,
		bson.M{"guild_id": guildID, "user_id": userID},
		bson.M{"$set": bson.M{"claimed_count": 0, "updated_at": custom.Now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("error resetting user stats: %w", err)
	}
	return nil
}

func (d *statsDal) ResetGuild(ctx context.Context, guildID string) error {
	defer d.track("reset_guild")()

	res, err := d.db.Collection(statsCollection).UpdateMany(ctx,
		bson.M{"guild_id": guildID},
		bson.M{"$set": bson.M{"claimed_count": 0, "updated_at": custom.Now()}},
	)
	if err != nil {
		return fmt.Errorf("error resetting guild stats: %w", err)
	}

	d.l.Info("Reset guild claim stats",
		slog.String(logging.KeyGuild, guildID),
		slog.Int64("matched", res.MatchedCount),
	)
	return nil
}
