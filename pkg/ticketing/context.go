package ticketing

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/bwmarrin/discordgo"
)

// topicPattern is the channel topic written when a ticket is opened: ticket:<ownerId>:panel:<panelId>.
var topicPattern = regexp.MustCompile(`^ticket:(\d+):panel:(\S+)$`)

// TicketTopic is the channel topic that marks a channel as a ticket of the owner, opened from the panel.
func TicketTopic(ownerID, panelID string) string {
	return fmt.Sprintf("ticket:%s:panel:%s", ownerID, panelID)
}

// TicketContext is the ownership of a ticket channel.
type TicketContext struct {
	OwnerID string

	// Panel is the live panel the ticket was opened from.
	Panel *entities.TicketPanel
}

// TicketState is the lifecycle state of a ticket.
type TicketState int

const (
	StateOpen TicketState = iota
	StateClaimed
	StateClosing
	StateClosed
)

func (s TicketState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClaimed:
		return "claimed"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StateOf infers the state of a ticket from its control message.
func StateOf(msg *discordgo.Message) TicketState {
	if msg != nil && isClaimed(msg.Components) {
		return StateClaimed
	}
	return StateOpen
}

// Resolver recovers the ticket context of a channel.
type Resolver struct {
	panels dataaccess.PanelDal
}

// NewResolver creates a new ticket context resolver.
func NewResolver(panels dataaccess.PanelDal) *Resolver {
	return &Resolver{
		panels: panels,
	}
}

// parseTopic returns the owner and panel IDs encoded in a channel topic.
func parseTopic(topic string) (ownerID, panelID string, err error) {
	m := topicPattern.FindStringSubmatch(topic)
	if m == nil {
		return "", "", ErrNotTicketChannel
	}
	return m[1], m[2], nil
}

// Resolve reads the ticket context of the channel. The panel is fetched live, so edits to a panel apply to tickets
// that are already open.
func (r *Resolver) Resolve(ctx context.Context, channel *discordgo.Channel) (*TicketContext, error) {
	if channel == nil {
		return nil, ErrNotTicketChannel
	}

	ownerID, panelID, err := parseTopic(channel.Topic)
	if err != nil {
		return nil, err
	}

	panel, err := r.panels.GetPanelByID(ctx, panelID)
	if errors.Is(err, dataaccess.ErrNotFound) {
		return nil, &NotFoundError{Resource: "ticket panel", Err: err}
	} else if err != nil {
		return nil, fmt.Errorf("error getting ticket panel: %w", err)
	}

	return &TicketContext{
		OwnerID: ownerID,
		Panel:   panel,
	}, nil
}
