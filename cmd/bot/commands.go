package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/tickets/pkg/messages"
	"github.com/Jacobbrewer1/tickets/pkg/ticketing"
	"github.com/bwmarrin/discordgo"
)

const (
	// ticketsCmdName is the command for managing the ticket panel.
	ticketsCmdName = "tickets"

	// publishCmdName is the sub command for publishing the panel.
	publishCmdName = "publish"

	// leaderboardCmdName is the sub command for showing the top claimers.
	leaderboardCmdName = "leaderboard"

	// limitOptionName is the option for the number of claimers shown.
	limitOptionName = "limit"
)

var (
	leaderboardMinLimit = float64(1)

	// ticketsCmd is the command for managing the ticket panel.
	ticketsCmd = &discordgo.ApplicationCommand{
		Name:        ticketsCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Manage the ticket panel of this server.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        publishCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Publish the ticket panel to its configured channel.",
			},
			{
				Name:        leaderboardCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Show the staff members that claimed the most tickets.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        limitOptionName,
						Type:        discordgo.ApplicationCommandOptionInteger,
						Description: "The number of staff members to show.",
						MinValue:    &leaderboardMinLimit,
						MaxValue:    ticketing.MaxTopLimit,
					},
				},
			},
		},
	}

	// slashCommands are registered in every guild.
	slashCommands = []*discordgo.ApplicationCommand{
		ticketsCmd,
	}
)

func ticketsCmdController(_ *App, subCmd string) (slashProcessor, error) {
	switch subCmd {
	case publishCmdName:
		return publishCmdProcessor, nil
	case leaderboardCmdName:
		return leaderboardCmdProcessor, nil
	default:
		return nil, fmt.Errorf("unhandled sub command %s", subCmd)
	}
}

// publishCmdProcessor publishes the panel of the guild. Only administrators may publish.
func publishCmdProcessor(ctx context.Context, a *App, i *discordgo.InteractionCreate, r *interactionResponder) error {
	if !isAdministrator(i) {
		return r.Reply(ctx, messages.ErrAdministratorOnly)
	}

	if err := r.Defer(ctx); err != nil {
		return fmt.Errorf("error deferring interaction: %w", err)
	}

	panel, err := a.publisher.Publish(ctx, i.GuildID)
	if msg, ok := userError(err); ok {
		return r.Reply(ctx, msg)
	} else if err != nil {
		return fmt.Errorf("error publishing panel: %w", err)
	}

	return r.Reply(ctx, fmt.Sprintf(messages.PanelPublished, panel.ChannelID))
}

// leaderboardCmdProcessor shows the top claimers of the guild.
func leaderboardCmdProcessor(ctx context.Context, a *App, i *discordgo.InteractionCreate, r *interactionResponder) error {
	if err := r.Defer(ctx); err != nil {
		return fmt.Errorf("error deferring interaction: %w", err)
	}

	limit := 0
	for _, opt := range i.ApplicationCommandData().Options[0].Options {
		if opt.Name == limitOptionName {
			limit = int(opt.IntValue())
		}
	}

	leaders, err := a.topClaimers(ctx, i.GuildID, limit)
	if err != nil {
		return err
	}

	var sb strings.Builder
	for idx, l := range leaders {
		if l.ClaimedCount == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("%d. **%s**: %d\n", idx+1, l.DisplayName, l.ClaimedCount))
	}
	if sb.Len() == 0 {
		return r.Reply(ctx, messages.NoClaimsYet)
	}
	return r.Reply(ctx, sb.String())
}

// userError returns the message to show the actor for errors caused by the panel configuration.
func userError(err error) (string, bool) {
	var (
		verr *ticketing.ValidationError
		perr *ticketing.PermissionError
		nf   *ticketing.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Error(), true
	case errors.As(err, &perr):
		return perr.Error(), true
	case errors.As(err, &nf):
		return messages.ErrPanelNotConfigured, true
	default:
		return "", false
	}
}

func (a *App) registerGuildCommands(guildID string) error {
	if _, err := a.s.ApplicationCommandBulkOverwrite(a.cfg.ApplicationId, guildID, slashCommands); err != nil {
		return fmt.Errorf("error creating commands for guild %s: %w", guildID, err)
	}
	return nil
}

func (a *App) registerSlashCommands() error {
	// Register slash commands for each guild.
	for _, id := range a.joinedGuildIDs() {
		if err := a.registerGuildCommands(id); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) unregisterSlashCommands() error {
	// Delete slash commands for each guild.
	for _, id := range a.joinedGuildIDs() {
		if _, err := a.s.ApplicationCommandBulkOverwrite(a.cfg.ApplicationId, id, []*discordgo.ApplicationCommand{}); err != nil {
			return fmt.Errorf("error deleting commands for guild %s: %w", id, err)
		}
	}
	return nil
}
