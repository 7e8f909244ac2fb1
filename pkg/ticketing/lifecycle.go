package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/messages"
	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultCloseDelay is how long a closed ticket stays visible before the channel is deleted.
	DefaultCloseDelay = 3 * time.Second

	// deleteTimeout bounds the deletion of a closed ticket channel.
	deleteTimeout = 10 * time.Second

	// ticketAccess is granted to the owner and staff of a ticket.
	ticketAccess = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages

	closeLogColor = 0xED4245
	claimLogColor = 0x57F287
)

// Action is a ticket action.
type Action string

const (
	ActionOpen  Action = "open"
	ActionClose Action = "close"
	ActionCome  Action = "come"
	ActionClaim Action = "claim"
)

// actionOf maps a ticket control to its action.
func actionOf(customID string) (Action, bool) {
	switch customID {
	case CloseButtonID:
		return ActionClose, true
	case ComeButtonID:
		return ActionCome, true
	case ClaimButtonID:
		return ActionClaim, true
	default:
		return "", false
	}
}

// Controller drives tickets through their lifecycle.
type Controller struct {
	l        *slog.Logger
	gateway  Gateway
	panels   dataaccess.PanelDal
	resolver *Resolver
	stats    *Stats

	closeDelay time.Duration

	// schedule runs f after d.
	schedule func(d time.Duration, f func())
}

// NewController creates a new ticket lifecycle controller.
func NewController(l *slog.Logger, gateway Gateway, panels dataaccess.PanelDal, resolver *Resolver, stats *Stats) *Controller {
	return &Controller{
		l:          l,
		gateway:    gateway,
		panels:     panels,
		resolver:   resolver,
		stats:      stats,
		closeDelay: DefaultCloseDelay,
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Open creates a ticket channel for the option chosen in a published panel menu.
func (c *Controller) Open(ctx context.Context, sel *Selection, r Responder) (err error) {
	timer := prometheus.NewTimer(TicketDuration.WithLabelValues(string(ActionOpen)))
	defer timer.ObserveDuration()
	defer func() {
		c.record(ActionOpen, err)
	}()

	panelID, _ := PanelIDFromSelect(sel.CustomID)
	panel, err := c.panels.GetPanelByID(ctx, panelID)
	if errors.Is(err, dataaccess.ErrNotFound) {
		return r.Reply(ctx, messages.ErrPanelNotFound)
	} else if err != nil {
		return fmt.Errorf("error getting ticket panel: %w", err)
	}

	if err := r.Defer(ctx); err != nil {
		return &PlatformError{Op: "defer interaction", Err: err}
	}

	owner := sel.Actor
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   sel.GuildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    owner.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: ticketAccess,
		},
	}
	for _, roleID := range panel.StaffRoleIDs {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: ticketAccess,
		})
	}

	channel, err := c.gateway.CreatePrivateChannel(ctx, sel.GuildID, discordgo.GuildChannelCreateData{
		Name:                 fmt.Sprintf("ticket-%s", owner.Username),
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                TicketTopic(owner.ID, panel.ID.Hex()),
		PermissionOverwrites: overwrites,
		ParentID:             panel.TicketCategoryID,
	})
	if err != nil {
		if rErr := r.Reply(ctx, messages.ErrTicketOpenFailed); rErr != nil {
			c.l.Warn("Error replying to interaction", slog.String(logging.KeyError, rErr.Error()))
		}
		return &PlatformError{Op: "create ticket channel", Err: err}
	}

	var value string
	if len(sel.Values) > 0 {
		value = sel.Values[0]
	}
	display := value
	if opt, ok := panel.Option(value); ok && opt.Label != "" {
		display = opt.Label
	}

	description := panel.TicketMessage
	if description == "" {
		description = messages.DefaultTicketMessage
	}

	mentions := make([]string, 0, len(panel.StaffRoleIDs))
	for _, roleID := range panel.StaffRoleIDs {
		mentions = append(mentions, fmt.Sprintf("<@&%s>", roleID))
	}
	content := fmt.Sprintf("<@%s>", owner.ID)
	if len(mentions) > 0 {
		content = fmt.Sprintf("%s - %s", strings.Join(mentions, " "), content)
	}

	msg, err := c.gateway.SendMessage(ctx, channel.ID, &discordgo.MessageSend{
		Content: content,
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       fmt.Sprintf("%s %s", TicketEmoji, display),
				Description: description,
				Color:       panel.EmbedColor,
				Fields: []*discordgo.MessageEmbedField{
					{
						Name:   "Ticket owner",
						Value:  fmt.Sprintf("<@%s>", owner.ID),
						Inline: true,
					},
					{
						Name:   "Selected option",
						Value:  display,
						Inline: true,
					},
				},
			},
		},
		Components: ticketControls(),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
			Roles: panel.StaffRoleIDs,
			Users: []string{owner.ID},
		},
	})
	if err != nil {
		return &PlatformError{Op: "send ticket message", Err: err}
	}

	if err := c.gateway.PinMessage(ctx, channel.ID, msg.ID); err != nil {
		c.l.Warn("Error pinning ticket message",
			slog.String(logging.KeyChannel, channel.ID),
			slog.String(logging.KeyError, err.Error()),
		)
	}

	c.l.Info("Ticket opened",
		slog.String(logging.KeyGuild, sel.GuildID),
		slog.String(logging.KeyChannel, channel.ID),
		slog.String(logging.KeyUser, owner.ID),
		slog.String("option", value),
		slog.String("state", StateOpen.String()),
	)

	return r.Reply(ctx, fmt.Sprintf(messages.TicketOpened, channel.ID))
}

// HandleButton performs the action of a ticket control. Presses in channels that are not tickets are ignored.
func (c *Controller) HandleButton(ctx context.Context, press *ButtonPress, r Responder) (err error) {
	action, ok := actionOf(press.CustomID)
	if !ok {
		return nil
	}

	timer := prometheus.NewTimer(TicketDuration.WithLabelValues(string(action)))
	defer timer.ObserveDuration()

	channel, err := c.gateway.Channel(ctx, press.ChannelID)
	if err != nil {
		return &PlatformError{Op: "fetch channel", Err: err}
	} else if channel == nil || channel.Type != discordgo.ChannelTypeGuildText {
		return nil
	}

	tc, err := c.resolver.Resolve(ctx, channel)
	nf := new(NotFoundError)
	switch {
	case errors.Is(err, ErrNotTicketChannel):
		return nil
	case errors.As(err, &nf):
		c.record(action, err)
		return r.Reply(ctx, messages.ErrPanelNotConfigured)
	case err != nil:
		return err
	}

	actor := press.Actor
	if actor.Roles == nil {
		member, err := c.gateway.Member(ctx, press.GuildID, actor.ID)
		if err != nil {
			return &PlatformError{Op: "fetch member", Err: err}
		}
		actor.Roles = member.Roles
	}

	if reply := denial(action, Authorize(actor, tc), press.Message); reply != "" {
		TicketActions.WithLabelValues(string(action), outcomeDenied).Inc()
		c.l.Debug("Ticket action denied",
			slog.String(logging.KeyAction, string(action)),
			slog.String(logging.KeyChannel, channel.ID),
			slog.String(logging.KeyUser, actor.ID),
		)
		return r.Reply(ctx, reply)
	}

	defer func() {
		c.record(action, err)
	}()

	switch action {
	case ActionClose:
		return c.close(ctx, press, channel, tc, r)
	case ActionCome:
		return c.come(ctx, press, channel, tc, r)
	case ActionClaim:
		return c.claim(ctx, press, channel, tc, r)
	}
	return nil
}

// denial returns the reply for an actor that may not perform the action, or an empty string when it is allowed.
func denial(action Action, access Access, msg *discordgo.Message) string {
	if !access.Allows(PolicyOwnerOrStaff) {
		return messages.ErrNoTicketPermission
	}
	if action != ActionClaim {
		return ""
	}

	if !access.Allows(PolicyStaff) {
		return messages.ErrClaimStaffOnly
	} else if StateOf(msg) == StateClaimed {
		return messages.ErrAlreadyClaimed
	}
	return ""
}

func (c *Controller) close(ctx context.Context, press *ButtonPress, channel *discordgo.Channel, tc *TicketContext, r Responder) error {
	if err := r.Defer(ctx); err != nil {
		return &PlatformError{Op: "defer interaction", Err: err}
	}

	if _, err := c.gateway.SendMessage(ctx, channel.ID, &discordgo.MessageSend{
		Content: fmt.Sprintf(messages.TicketClosedBy, press.Actor.ID),
	}); err != nil {
		return &PlatformError{Op: "announce closure", Err: err}
	}

	if err := r.Reply(ctx, messages.TicketClosingSoon); err != nil {
		return &PlatformError{Op: "reply to interaction", Err: err}
	}

	c.sendLog(ctx, tc.Panel.CloseLogChannelID, &discordgo.MessageEmbed{
		Title: "Ticket closed",
		Color: closeLogColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Channel", Value: fmt.Sprintf("<#%s>", channel.ID), Inline: true},
			{Name: "Ticket owner", Value: fmt.Sprintf("<@%s>", tc.OwnerID), Inline: true},
			{Name: "Closed by", Value: fmt.Sprintf("<@%s>", press.Actor.ID), Inline: true},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	l := c.l.With(
		slog.String(logging.KeyGuild, press.GuildID),
		slog.String(logging.KeyChannel, channel.ID),
	)
	l.Info("Ticket closing", slog.String("state", StateClosing.String()), slog.Duration("delay", c.closeDelay))

	// The request context is gone by the time the channel is deleted.
	c.schedule(c.closeDelay, func() {
		dctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
		defer cancel()

		if err := c.gateway.DeleteChannel(dctx, channel.ID); err != nil {
			l.Error("Error deleting ticket channel", slog.String(logging.KeyError, err.Error()))
			return
		}
		l.Info("Ticket closed", slog.String("state", StateClosed.String()))
	})

	return nil
}

func (c *Controller) come(ctx context.Context, press *ButtonPress, channel *discordgo.Channel, tc *TicketContext, r Responder) error {
	if err := r.Defer(ctx); err != nil {
		return &PlatformError{Op: "defer interaction", Err: err}
	}

	link := fmt.Sprintf("https://discord.com/channels/%s/%s", press.GuildID, channel.ID)
	if err := c.gateway.SendDirectMessage(ctx, tc.OwnerID, fmt.Sprintf(messages.TicketReminder, channel.Name, link)); err != nil {
		c.l.Warn("Error sending ticket reminder",
			slog.String(logging.KeyUser, tc.OwnerID),
			slog.String(logging.KeyError, err.Error()),
		)
		return r.Reply(ctx, messages.ErrReminderFailed)
	}

	return r.Reply(ctx, messages.ReminderSent)
}

func (c *Controller) claim(ctx context.Context, press *ButtonPress, channel *discordgo.Channel, tc *TicketContext, r Responder) error {
	if press.Message == nil {
		return errors.New("claim pressed without a message")
	}

	if err := r.DeferUpdate(ctx); err != nil {
		return &PlatformError{Op: "defer interaction", Err: err}
	}

	// Best effort: a second claim racing this one may pass the check before the edit lands.
	if err := c.gateway.EditMessageComponents(ctx, channel.ID, press.Message.ID, claimedComponents(press.Message.Components)); err != nil {
		return &PlatformError{Op: "disable claim control", Err: err}
	}

	if _, err := c.gateway.SendMessage(ctx, channel.ID, &discordgo.MessageSend{
		Content: fmt.Sprintf(messages.TicketClaimedBy, press.Actor.ID),
	}); err != nil {
		return &PlatformError{Op: "announce claim", Err: err}
	}

	count, err := c.stats.IncrementClaim(ctx, press.GuildID, press.Actor.ID)
	if err != nil {
		c.l.Error("Error updating claim stats",
			slog.String(logging.KeyGuild, press.GuildID),
			slog.String(logging.KeyUser, press.Actor.ID),
			slog.String(logging.KeyError, err.Error()),
		)
		return nil
	}

	c.l.Info("Ticket claimed",
		slog.String(logging.KeyGuild, press.GuildID),
		slog.String(logging.KeyChannel, channel.ID),
		slog.String(logging.KeyUser, press.Actor.ID),
		slog.Int("claimed_count", count),
		slog.String("state", StateClaimed.String()),
	)

	c.sendLog(ctx, tc.Panel.ClaimLogChannelID, &discordgo.MessageEmbed{
		Title: "Ticket claimed",
		Color: claimLogColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Channel", Value: fmt.Sprintf("<#%s>", channel.ID), Inline: true},
			{Name: "Claimed by", Value: fmt.Sprintf("<@%s>", press.Actor.ID), Inline: true},
			{Name: "Ticket owner", Value: fmt.Sprintf("<@%s>", tc.OwnerID), Inline: true},
			{Name: "Claimed tickets", Value: fmt.Sprintf("%d", count), Inline: true},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	return nil
}

// sendLog posts the embed to the log channel if it is set and is a text channel. Failures are logged only.
func (c *Controller) sendLog(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) {
	if channelID == "" {
		return
	}

	logChannel, err := c.gateway.Channel(ctx, channelID)
	if err != nil {
		c.l.Warn("Error fetching log channel",
			slog.String(logging.KeyChannel, channelID),
			slog.String(logging.KeyError, err.Error()),
		)
		return
	} else if logChannel == nil || logChannel.Type != discordgo.ChannelTypeGuildText {
		return
	}

	if _, err := c.gateway.SendMessage(ctx, logChannel.ID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	}); err != nil {
		c.l.Error("Error sending ticket log",
			slog.String(logging.KeyChannel, channelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}

func (c *Controller) record(action Action, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFailed
	}
	TicketActions.WithLabelValues(string(action), outcome).Inc()
}

// ReplyInternalError logs a failed ticket action and tells the actor, unless they already have a reply.
func ReplyInternalError(ctx context.Context, l *slog.Logger, r Responder, err error) {
	l.Error("Error handling ticket interaction", slog.String(logging.KeyError, err.Error()))
	if r.Replied() {
		return
	}

	if rErr := r.Reply(ctx, messages.ErrUserErrorProcessing); rErr != nil {
		l.Error("Error replying to interaction", slog.String(logging.KeyError, rErr.Error()))
	}
}
