package ticketing

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Gateway is the subset of the chat platform the ticket system talks to.
type Gateway interface {
	// Channel fetches a channel. ErrUnknownChannel is returned if it does not exist.
	Channel(ctx context.Context, channelID string) (*discordgo.Channel, error)

	// Guild returns a guild the bot is a member of, or ErrUnknownGuild.
	Guild(ctx context.Context, guildID string) (*discordgo.Guild, error)

	// CreatePrivateChannel creates a guild channel with the given overwrites.
	CreatePrivateChannel(ctx context.Context, guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)

	// DeleteChannel deletes a channel.
	DeleteChannel(ctx context.Context, channelID string) error

	// SendMessage sends a message to a channel.
	SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)

	// EditMessageComponents replaces the components of a message.
	EditMessageComponents(ctx context.Context, channelID, messageID string, components []discordgo.MessageComponent) error

	// PinMessage pins a message in its channel.
	PinMessage(ctx context.Context, channelID, messageID string) error

	// SendDirectMessage sends a direct message to a user.
	SendDirectMessage(ctx context.Context, userID, content string) error

	// Member fetches a guild member.
	Member(ctx context.Context, guildID, userID string) (*discordgo.Member, error)

	// BotPermissions returns the permissions the bot holds in a channel.
	BotPermissions(ctx context.Context, channelID string) (int64, error)
}

// Responder answers the interaction that triggered an action.
type Responder interface {
	// Defer acknowledges the interaction with a pending ephemeral reply.
	Defer(ctx context.Context) error

	// DeferUpdate acknowledges the interaction without a reply.
	DeferUpdate(ctx context.Context) error

	// Reply sends an ephemeral reply, or fills in the pending reply if the interaction was deferred.
	Reply(ctx context.Context, content string) error

	// Replied reports whether a reply was sent or the interaction was acknowledged as an update.
	Replied() bool
}

// Actor is the user performing an action.
type Actor struct {
	ID       string
	Username string

	// Roles is the role set of the member. Nil means unknown and is fetched when needed.
	Roles []string
}

// Selection is a choice made in a published panel menu.
type Selection struct {
	CustomID  string
	GuildID   string
	ChannelID string
	Values    []string
	Actor     Actor
}

// ButtonPress is a press of one of the ticket controls.
type ButtonPress struct {
	CustomID  string
	GuildID   string
	ChannelID string

	// Message is the message carrying the pressed button, as delivered with the interaction.
	Message *discordgo.Message

	Actor Actor
}
