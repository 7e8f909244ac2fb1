package ticketing

import (
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/bwmarrin/discordgo"
)

const (
	// PanelSelectPrefix prefixes the custom ID of a published panel menu. The panel ID follows it.
	PanelSelectPrefix = "ticket-panel:"

	// CloseButtonID is the custom ID of the close control.
	CloseButtonID = "ticket:close"

	// ComeButtonID is the custom ID of the come control.
	ComeButtonID = "ticket:come"

	// ClaimButtonID is the custom ID of the claim control.
	ClaimButtonID = "ticket:claim"
)

const (
	// CloseEmoji is used on the close control. (Wastebasket)
	CloseEmoji = "\U0001F5D1\uFE0F"

	// ComeEmoji is used on the come control. (Loudspeaker)
	ComeEmoji = "\U0001F4E3"

	// ClaimEmoji is used on the claim control. (Memo)
	ClaimEmoji = "\U0001F4DD"

	// TicketEmoji prefixes the title of an opened ticket. (Admission tickets)
	TicketEmoji = "\U0001F39F\uFE0F"
)

const (
	maxMenuOptions = 25

	defaultPlaceholder = "Choose a ticket type"
)

// panelSelectID is the custom ID of the menu published for a panel.
func panelSelectID(panel *entities.TicketPanel) string {
	return PanelSelectPrefix + panel.ID.Hex()
}

// PanelIDFromSelect returns the panel ID encoded in a menu custom ID.
func PanelIDFromSelect(customID string) (string, bool) {
	if !strings.HasPrefix(customID, PanelSelectPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(customID, PanelSelectPrefix)
	return id, id != ""
}

// IsTicketButton reports whether the custom ID is one of the ticket controls.
func IsTicketButton(customID string) bool {
	switch customID {
	case CloseButtonID, ComeButtonID, ClaimButtonID:
		return true
	default:
		return false
	}
}

// ticketControls are the buttons attached to a newly opened ticket.
func ticketControls() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    fmt.Sprintf("%s Close", CloseEmoji),
					Style:    discordgo.DangerButton,
					CustomID: CloseButtonID,
				},
				discordgo.Button{
					Label:    fmt.Sprintf("%s Come", ComeEmoji),
					Style:    discordgo.PrimaryButton,
					CustomID: ComeButtonID,
				},
				discordgo.Button{
					Label:    fmt.Sprintf("%s Claim", ClaimEmoji),
					Style:    discordgo.SuccessButton,
					CustomID: ClaimButtonID,
				},
			},
		},
	}
}

// rowComponents returns the children of an action row, whether decoded from the API (pointer) or built locally.
func rowComponents(c discordgo.MessageComponent) ([]discordgo.MessageComponent, bool) {
	switch row := c.(type) {
	case *discordgo.ActionsRow:
		return row.Components, true
	case discordgo.ActionsRow:
		return row.Components, true
	default:
		return nil, false
	}
}

func asButton(c discordgo.MessageComponent) (discordgo.Button, bool) {
	switch b := c.(type) {
	case *discordgo.Button:
		return *b, true
	case discordgo.Button:
		return b, true
	default:
		return discordgo.Button{}, false
	}
}

// isClaimed reports whether the claim control of the message is disabled.
func isClaimed(components []discordgo.MessageComponent) bool {
	for _, c := range components {
		children, ok := rowComponents(c)
		if !ok {
			continue
		}
		for _, child := range children {
			if b, ok := asButton(child); ok && b.CustomID == ClaimButtonID && b.Disabled {
				return true
			}
		}
	}
	return false
}

// claimedComponents copies the components with only the claim control disabled and relabelled.
func claimedComponents(components []discordgo.MessageComponent) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, len(components))
	for _, c := range components {
		children, ok := rowComponents(c)
		if !ok {
			rows = append(rows, c)
			continue
		}

		row := discordgo.ActionsRow{Components: make([]discordgo.MessageComponent, 0, len(children))}
		for _, child := range children {
			b, ok := asButton(child)
			if !ok {
				row.Components = append(row.Components, child)
				continue
			}
			if b.CustomID == ClaimButtonID {
				b.Disabled = true
				b.Label = fmt.Sprintf("%s Claimed", ClaimEmoji)
			}
			row.Components = append(row.Components, b)
		}
		rows = append(rows, row)
	}
	return rows
}
