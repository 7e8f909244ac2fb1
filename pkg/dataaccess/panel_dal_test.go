package dataaccess

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/custom"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPanelUpdate_UnsetsEmptyOptionals(t *testing.T) {
	now := custom.Datetime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	p := &entities.TicketPanel{
		GuildID:           "g1",
		ChannelID:         "c1",
		EmbedTitle:        "Support",
		EmbedDescription:  "Pick a topic",
		EmbedColor:        entities.DefaultEmbedColor,
		TicketMessage:     "Hello",
		ClaimLogChannelID: "log1",
	}

	update := panelUpdate(p, now)

	set := update["$set"].(bson.M)
	require.Equal(t, "Hello", set["ticket_message"])
	require.Equal(t, "log1", set["claim_log_channel_id"])
	require.Equal(t, []string{}, set["staff_role_ids"])
	require.Equal(t, []entities.MenuOption{}, set["menu_options"])
	require.NotContains(t, set, "select_placeholder")

	unset := update["$unset"].(bson.M)
	for _, key := range []string{
		"embed_image_url",
		"select_placeholder",
		"panel_content",
		"ticket_category_id",
		"close_log_channel_id",
	} {
		require.Contains(t, unset, key)
	}
	require.NotContains(t, unset, "ticket_message")
	require.NotContains(t, unset, "claim_log_channel_id")

	require.Equal(t, bson.M{"created_at": now}, update["$setOnInsert"])
}

func TestPanelUpdate_NoUnsetWhenAllSet(t *testing.T) {
	p := &entities.TicketPanel{
		GuildID:           "g1",
		EmbedImageURL:     "https://example.com/a.png",
		TicketMessage:     "a",
		SelectPlaceholder: "b",
		PanelContent:      "c",
		TicketCategoryID:  "d",
		ClaimLogChannelID: "e",
		CloseLogChannelID: "f",
	}

	update := panelUpdate(p, custom.Now())
	require.NotContains(t, update, "$unset")
}

func TestPanelDal(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	id := primitive.NewObjectID()
	doc := bson.D{
		{Key: "_id", Value: id},
		{Key: "guild_id", Value: "g1"},
		{Key: "channel_id", Value: "c1"},
		{Key: "embed_title", Value: "Support"},
		{Key: "embed_description", Value: "Pick a topic"},
		{Key: "embed_color", Value: entities.DefaultEmbedColor},
		{Key: "staff_role_ids", Value: bson.A{"r1"}},
		{Key: "menu_options", Value: bson.A{
			bson.D{{Key: "label", Value: "Billing"}, {Key: "value", Value: "billing"}},
		}},
	}

	mt.Run("SavePanel", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc}))

		got, err := NewPanelDal(testLogger(), mt.DB).SavePanel(context.Background(), &entities.TicketPanel{GuildID: "g1"})
		require.NoError(mt, err)
		require.Equal(mt, id, got.ID)
		require.Equal(mt, []string{"r1"}, got.StaffRoleIDs)
		require.Equal(mt, "billing", got.MenuOptions[0].Value)
		require.Empty(mt, got.TicketMessage)
	})

	mt.Run("GetPanelByGuild", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "tickets.ticket_panels", mtest.FirstBatch, doc))

		got, err := NewPanelDal(testLogger(), mt.DB).GetPanelByGuild(context.Background(), "g1")
		require.NoError(mt, err)
		require.Equal(mt, "Support", got.EmbedTitle)
	})

	mt.Run("GetPanelByGuildNotFound", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "tickets.ticket_panels", mtest.FirstBatch))

		_, err := NewPanelDal(testLogger(), mt.DB).GetPanelByGuild(context.Background(), "g1")
		require.True(mt, errors.Is(err, ErrNotFound))
	})

	mt.Run("GetPanelByIDInvalidHex", func(mt *mtest.T) {
		_, err := NewPanelDal(testLogger(), mt.DB).GetPanelByID(context.Background(), "not-an-id")
		require.True(mt, errors.Is(err, ErrNotFound))
	})

	mt.Run("GetPanelByID", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "tickets.ticket_panels", mtest.FirstBatch, doc))

		got, err := NewPanelDal(testLogger(), mt.DB).GetPanelByID(context.Background(), id.Hex())
		require.NoError(mt, err)
		require.Equal(mt, "g1", got.GuildID)
	})

	mt.Run("SetPublishedMessageMissing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := NewPanelDal(testLogger(), mt.DB).SetPublishedMessage(context.Background(), id, "m1")
		require.True(mt, errors.Is(err, ErrNotFound))
	})
}
