package dataaccess

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/custom"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const panelDalName = "panel_dal"

type PanelDal interface {
	// SavePanel upserts the panel of the guild. Empty optional fields are removed from the stored document.
	SavePanel(ctx context.Context, panel *entities.TicketPanel) (*entities.TicketPanel, error)

	// GetPanelByGuild gets the panel of a guild.
	GetPanelByGuild(ctx context.Context, guildID string) (*entities.TicketPanel, error)

	// GetPanelByID gets a panel by its ID.
	GetPanelByID(ctx context.Context, id string) (*entities.TicketPanel, error)

	// SetPublishedMessage records the ID of the last published panel message.
	SetPublishedMessage(ctx context.Context, id primitive.ObjectID, messageID string) error
}

type panelDal struct {
	// l is the logger.
	l *slog.Logger

	// db is the database.
	db *mongo.Database
}

// NewPanelDal creates a new panel data access layer.
func NewPanelDal(l *slog.Logger, db *mongo.Database) PanelDal {
	return &panelDal{
		l:  l.With(slog.String(logging.KeyDal, panelDalName)),
		db: db,
	}
}

func (d *panelDal) track(query string) func() {
	t := monitoring.Track(panelDalName, query, d.db.Name(), panelsCollection)
	return func() { t.ObserveDuration() }
}

func (d *panelDal) SavePanel(ctx context.Context, panel *entities.TicketPanel) (*entities.TicketPanel, error) {
	defer d.track("save_panel")()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	saved := new(entities.TicketPanel)
	err := d.db.Collection(panelsCollection).
		FindOneAndUpdate(ctx, bson.M{"guild_id": panel.GuildID}, panelUpdate(panel, custom.Now()), opts).
		Decode(saved)
	if err != nil {
		return nil, fmt.Errorf("error saving panel: %w", err)
	}

	d.l.Info("Saved ticket panel",
		slog.String(logging.KeyGuild, saved.GuildID),
		slog.Int("options", len(saved.MenuOptions)),
		slog.Int("roles", len(saved.StaffRoleIDs)),
	)
	return saved, nil
}

// panelUpdate builds the upsert document. Optional fields that are empty are unset so that an edit can clear them.
func panelUpdate(p *entities.TicketPanel, now custom.Datetime) bson.M {
	set := bson.M{
		"guild_id":          p.GuildID,
		"channel_id":        p.ChannelID,
		"embed_title":       p.EmbedTitle,
		"embed_description": p.EmbedDescription,
		"embed_color":       p.EmbedColor,
		"staff_role_ids":    nonNil(p.StaffRoleIDs),
		"menu_options":      nonNilOptions(p.MenuOptions),
		"updated_at":        now,
	}
	unset := bson.M{}

	optional := []struct {
		key   string
		value string
	}{
		{"embed_image_url", p.EmbedImageURL},
		{"ticket_message", p.TicketMessage},
		{"select_placeholder", p.SelectPlaceholder},
		{"panel_content", p.PanelContent},
		{"ticket_category_id", p.TicketCategoryID},
		{"claim_log_channel_id", p.ClaimLogChannelID},
		{"close_log_channel_id", p.CloseLogChannelID},
	}
	for _, f := range optional {
		if f.value == "" {
			unset[f.key] = ""
		} else {
			set[f.key] = f.value
		}
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func (d *panelDal) GetPanelByGuild(ctx context.Context, guildID string) (*entities.TicketPanel, error) {
	defer d.track("get_panel_by_guild")()

	panel := new(entities.TicketPanel)
	err := d.db.Collection(panelsCollection).FindOne(ctx, bson.M{"guild_id": guildID}).Decode(panel)
	if err != nil {
		return nil, fmt.Errorf("error getting panel: %w", notFound(err))
	}
	return panel, nil
}

func (d *panelDal) GetPanelByID(ctx context.Context, id string) (*entities.TicketPanel, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// An ID that can never exist.
		return nil, fmt.Errorf("error parsing panel id %q: %w", id, ErrNotFound)
	}

	defer d.track("get_panel_by_id")()

	panel := new(entities.TicketPanel)
	err = d.db.Collection(panelsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(panel)
	if err != nil {
		return nil, fmt.Errorf("error getting panel: %w", notFound(err))
	}
	return panel, nil
}

func (d *panelDal) SetPublishedMessage(ctx context.Context, id primitive.ObjectID, messageID string) error {
	defer d.track("set_published_message")()

	res, err := d.db.Collection(panelsCollection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"published_message_id": messageID,
			"updated_at":           custom.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("error setting published message: %w", err)
	} else if res.MatchedCount == 0 {
		return fmt.Errorf("error setting published message: %w", ErrNotFound)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilOptions(s []entities.MenuOption) []entities.MenuOption {
	if s == nil {
		return []entities.MenuOption{}
	}
	return s
}
