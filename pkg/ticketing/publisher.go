package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/bwmarrin/discordgo"
)

// Publisher posts the panel menu of a guild.
type Publisher struct {
	l       *slog.Logger
	gateway Gateway
	panels  *PanelManager
	dal     dataaccess.PanelDal
}

// NewPublisher creates a new panel publisher.
func NewPublisher(l *slog.Logger, gateway Gateway, panels *PanelManager, dal dataaccess.PanelDal) *Publisher {
	return &Publisher{
		l:       l,
		gateway: gateway,
		panels:  panels,
		dal:     dal,
	}
}

// Publish sends the panel of the guild to its configured channel. A new message is sent on every call.
func (p *Publisher) Publish(ctx context.Context, guildID string) (*entities.TicketPanel, error) {
	panel, err := p.panels.LoadPanel(ctx, guildID)
	if err != nil {
		return nil, err
	}

	p.l.Info("Publishing ticket panel",
		slog.String(logging.KeyGuild, guildID),
		slog.String(logging.KeyChannel, panel.ChannelID),
		slog.Int("options", len(panel.MenuOptions)),
		slog.Int("roles", len(panel.StaffRoleIDs)),
	)

	channel, err := p.gateway.Channel(ctx, panel.ChannelID)
	if err != nil && !errors.Is(err, ErrUnknownChannel) {
		return nil, &PlatformError{Op: "fetch panel channel", Err: err}
	} else if err != nil || channel == nil || channel.Type != discordgo.ChannelTypeGuildText {
		return nil, &ValidationError{Message: "the configured channel is invalid or is not a text channel", Values: []string{panel.ChannelID}}
	}

	perms, err := p.gateway.BotPermissions(ctx, channel.ID)
	if err != nil {
		return nil, &PlatformError{Op: "fetch bot permissions", Err: err}
	} else if perms&discordgo.PermissionManageChannels == 0 {
		return nil, &PermissionError{Permission: "ManageChannels"}
	}

	msg, err := panelMessage(panel)
	if err != nil {
		return nil, err
	}

	sent, err := p.gateway.SendMessage(ctx, channel.ID, msg)
	if err != nil {
		return nil, &PlatformError{Op: "send panel message", Err: err}
	}

	if err := p.dal.SetPublishedMessage(ctx, panel.ID, sent.ID); err != nil {
		return nil, fmt.Errorf("error recording published message: %w", err)
	}
	panel.PublishedMessageID = sent.ID

	return panel, nil
}

// panelMessage renders the panel as an embed with a select menu.
func panelMessage(panel *entities.TicketPanel) (*discordgo.MessageSend, error) {
	options := make([]discordgo.SelectMenuOption, 0, maxMenuOptions)
	for idx, o := range panel.MenuOptions {
		if idx == maxMenuOptions {
			break
		}

		opt := discordgo.SelectMenuOption{
			Label:       o.Label,
			Value:       o.Value,
			Description: truncate(o.Description, maxOptionDescription),
		}
		if opt.Label == "" {
			opt.Label = fmt.Sprintf("Option %d", idx+1)
		}
		if opt.Value == "" {
			opt.Value = fmt.Sprintf("option_%d", idx+1)
		}
		options = append(options, opt)
	}
	if len(options) == 0 {
		return nil, &ValidationError{Message: "at least one menu option is required"}
	}

	embed := &discordgo.MessageEmbed{
		Title:       panel.EmbedTitle,
		Description: panel.EmbedDescription,
		Color:       panel.EmbedColor,
	}
	if panel.EmbedImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: panel.EmbedImageURL}
	}

	placeholder := panel.SelectPlaceholder
	if placeholder == "" {
		placeholder = defaultPlaceholder
	}
	minValues := 1

	return &discordgo.MessageSend{
		Content: panel.PanelContent,
		Embeds:  []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						MenuType:    discordgo.StringSelectMenu,
						CustomID:    panelSelectID(panel),
						Placeholder: placeholder,
						MinValues:   &minValues,
						MaxValues:   1,
						Options:     options,
					},
				},
			},
		},
	}, nil
}
