package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Jacobbrewer1/tickets/pkg/ticketing"
	"github.com/bwmarrin/discordgo"
)

// sessionGateway is the discord session as seen by the ticket system.
type sessionGateway struct {
	s *discordgo.Session
}

// NewSessionGateway creates a new gateway over the session.
func NewSessionGateway(s *discordgo.Session) *sessionGateway {
	return &sessionGateway{
		s: s,
	}
}

func (g *sessionGateway) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	if ch, err := g.s.State.Channel(channelID); err == nil {
		return ch, nil
	}

	ch, err := g.s.Channel(channelID, discordgo.WithContext(ctx))
	if isUnknown(err, discordgo.ErrCodeUnknownChannel) {
		return nil, fmt.Errorf("%w: %s", ticketing.ErrUnknownChannel, channelID)
	}
	return ch, err
}

// Guild only consults the state, which holds every guild the bot is a member of.
func (g *sessionGateway) Guild(_ context.Context, guildID string) (*discordgo.Guild, error) {
	guild, err := g.s.State.Guild(guildID)
	if errors.Is(err, discordgo.ErrStateNotFound) {
		return nil, fmt.Errorf("%w: %s", ticketing.ErrUnknownGuild, guildID)
	}
	return guild, err
}

func (g *sessionGateway) CreatePrivateChannel(ctx context.Context, guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	return g.s.GuildChannelCreateComplex(guildID, data, discordgo.WithContext(ctx))
}

func (g *sessionGateway) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := g.s.ChannelDelete(channelID, discordgo.WithContext(ctx))
	return err
}

func (g *sessionGateway) SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	return g.s.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
}

func (g *sessionGateway) EditMessageComponents(ctx context.Context, channelID, messageID string, components []discordgo.MessageComponent) error {
	_, err := g.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         messageID,
		Channel:    channelID,
		Components: &components,
	}, discordgo.WithContext(ctx))
	return err
}

func (g *sessionGateway) PinMessage(ctx context.Context, channelID, messageID string) error {
	return g.s.ChannelMessagePin(channelID, messageID, discordgo.WithContext(ctx))
}

func (g *sessionGateway) SendDirectMessage(ctx context.Context, userID, content string) error {
	dm, err := g.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("error opening direct message channel: %w", err)
	}

	if _, err := g.s.ChannelMessageSend(dm.ID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("error sending direct message: %w", err)
	}
	return nil
}

func (g *sessionGateway) Member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if m, err := g.s.State.Member(guildID, userID); err == nil {
		return m, nil
	}
	return g.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
}

func (g *sessionGateway) BotPermissions(ctx context.Context, channelID string) (int64, error) {
	if g.s.State.User == nil {
		return 0, fmt.Errorf("session is not ready")
	}
	return g.s.UserChannelPermissions(g.s.State.User.ID, channelID, discordgo.WithContext(ctx))
}

// isUnknown reports whether err is a discord "not found" response carrying the given error code.
func isUnknown(err error, code int) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == code {
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
