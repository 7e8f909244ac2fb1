package entities

import "github.com/Jacobbrewer1/tickets/pkg/custom"

// StaffStat is the claim counter of a staff member in a guild.
type StaffStat struct {
	GuildID      string          `json:"guildId" bson:"guild_id"`
	UserID       string          `json:"userId" bson:"user_id"`
	ClaimedCount int             `json:"claimedCount" bson:"claimed_count"`
	UpdatedAt    custom.Datetime `json:"updatedAt" bson:"updated_at"`

	// DisplayName is resolved from discord when the stats are served, it is never stored.
	DisplayName string `json:"displayName,omitempty" bson:"-"`
}
