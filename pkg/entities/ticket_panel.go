package entities

import (
	"github.com/Jacobbrewer1/tickets/pkg/custom"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultEmbedColor is the brand blue used when a panel does not set a color.
const DefaultEmbedColor = 0x5865F2

// TicketPanel is the ticket panel configuration for a guild. There is at most one per guild.
type TicketPanel struct {
	// ID is the ID of the panel. It is written into the topic of every ticket channel opened from the panel.
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	// GuildID is the ID of the guild that owns the panel.
	GuildID string `json:"guildId" bson:"guild_id"`

	// ChannelID is the ID of the channel the panel is published in.
	ChannelID string `json:"channelId" bson:"channel_id"`

	// PublishedMessageID is the ID of the last published panel message.
	PublishedMessageID string `json:"publishedMessageId,omitempty" bson:"published_message_id,omitempty"`

	EmbedTitle       string `json:"embedTitle" bson:"embed_title"`
	EmbedDescription string `json:"embedDescription" bson:"embed_description"`
	EmbedColor       int    `json:"embedColor" bson:"embed_color"`
	EmbedImageURL    string `json:"embedImageUrl,omitempty" bson:"embed_image_url,omitempty"`

	// TicketMessage is shown inside an opened ticket.
	TicketMessage string `json:"ticketMessage,omitempty" bson:"ticket_message,omitempty"`

	// SelectPlaceholder is the placeholder of the select menu.
	SelectPlaceholder string `json:"selectPlaceholder,omitempty" bson:"select_placeholder,omitempty"`

	// PanelContent is plain text sent alongside the panel embed.
	PanelContent string `json:"panelContent,omitempty" bson:"panel_content,omitempty"`

	ClaimLogChannelID string `json:"claimLogChannelId,omitempty" bson:"claim_log_channel_id,omitempty"`
	CloseLogChannelID string `json:"closeLogChannelId,omitempty" bson:"close_log_channel_id,omitempty"`

	// TicketCategoryID is the parent category ticket channels are created under.
	TicketCategoryID string `json:"ticketCategoryId,omitempty" bson:"ticket_category_id,omitempty"`

	// StaffRoleIDs are the roles with elevated ticket privileges.
	StaffRoleIDs []string `json:"staffRoleIds" bson:"staff_role_ids"`

	// MenuOptions are the options offered by the panel, in order.
	MenuOptions []MenuOption `json:"menuOptions" bson:"menu_options"`

	CreatedAt custom.Datetime `json:"createdAt" bson:"created_at"`
	UpdatedAt custom.Datetime `json:"updatedAt" bson:"updated_at"`
}

// MenuOption is a single option of the panel select menu.
type MenuOption struct {
	Label       string `json:"label" bson:"label"`
	Value       string `json:"value" bson:"value"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// Option returns the menu option with the given value, if any.
func (p *TicketPanel) Option(value string) (MenuOption, bool) {
	for _, o := range p.MenuOptions {
		if o.Value == value {
			return o, true
		}
	}
	return MenuOption{}, false
}
