package ticketing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
)

const (
	// DefaultTopLimit is the number of claimers returned when no limit is given.
	DefaultTopLimit = 10

	// MaxTopLimit is the most claimers that can be requested.
	MaxTopLimit = 50
)

// Stats aggregates the claim counters of staff members.
type Stats struct {
	l   *slog.Logger
	dal dataaccess.StatsDal
}

// NewStats creates a new stats aggregator.
func NewStats(l *slog.Logger, dal dataaccess.StatsDal) *Stats {
	return &Stats{
		l:   l,
		dal: dal,
	}
}

// IncrementClaim adds one claim to the user and returns the new count.
func (s *Stats) IncrementClaim(ctx context.Context, guildID, userID string) (int, error) {
	stat, err := s.dal.IncrementClaim(ctx, guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("error incrementing claims: %w", err)
	}
	return stat.ClaimedCount, nil
}

// TopClaimers returns the guild's claimers, most claims first. The limit is clamped to [1, MaxTopLimit] and
// defaults to DefaultTopLimit.
func (s *Stats) TopClaimers(ctx context.Context, guildID string, limit int) ([]*entities.StaffStat, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	} else if limit > MaxTopLimit {
		limit = MaxTopLimit
	}

	stats, err := s.dal.TopClaimers(ctx, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("error getting top claimers: %w", err)
	}
	return stats, nil
}

// ResetClaims zeroes the counter of the user, or of every user in the guild when userID is empty.
func (s *Stats) ResetClaims(ctx context.Context, guildID, userID string) error {
	if userID != "" {
		if err := s.dal.ResetUser(ctx, guildID, userID); err != nil {
			return fmt.Errorf("error resetting claims: %w", err)
		}
	} else if err := s.dal.ResetGuild(ctx, guildID); err != nil {
		return fmt.Errorf("error resetting claims: %w", err)
	}

	s.l.Info("Claim stats reset",
		slog.String(logging.KeyGuild, guildID),
		slog.String(logging.KeyUser, userID),
	)
	return nil
}
