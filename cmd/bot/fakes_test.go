package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/ticketing"
	"github.com/bwmarrin/discordgo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeGateway serves channels and members from memory and records sent messages.
type fakeGateway struct {
	mu       sync.Mutex
	channels map[string]*discordgo.Channel
	guilds   map[string]*discordgo.Guild
	members  map[string]*discordgo.Member
	perms    int64
	sent     map[string][]*discordgo.MessageSend
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		channels: make(map[string]*discordgo.Channel),
		guilds:   make(map[string]*discordgo.Guild),
		members:  make(map[string]*discordgo.Member),
		perms:    discordgo.PermissionManageChannels | discordgo.PermissionSendMessages,
		sent:     make(map[string][]*discordgo.MessageSend),
	}
}

func (g *fakeGateway) Channel(_ context.Context, channelID string) (*discordgo.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ticketing.ErrUnknownChannel, channelID)
	}
	return ch, nil
}

func (g *fakeGateway) Guild(_ context.Context, guildID string) (*discordgo.Guild, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	guild, ok := g.guilds[guildID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ticketing.ErrUnknownGuild, guildID)
	}
	return guild, nil
}

func (g *fakeGateway) CreatePrivateChannel(_ context.Context, _ string, _ discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	return nil, errors.New("not supported")
}

func (g *fakeGateway) DeleteChannel(_ context.Context, _ string) error {
	return nil
}

func (g *fakeGateway) SendMessage(_ context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent[channelID] = append(g.sent[channelID], msg)
	return &discordgo.Message{ID: "m1", ChannelID: channelID}, nil
}

func (g *fakeGateway) EditMessageComponents(_ context.Context, _, _ string, _ []discordgo.MessageComponent) error {
	return nil
}

func (g *fakeGateway) PinMessage(_ context.Context, _, _ string) error {
	return nil
}

func (g *fakeGateway) SendDirectMessage(_ context.Context, _, _ string) error {
	return nil
}

func (g *fakeGateway) Member(_ context.Context, _, userID string) (*discordgo.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.members[userID]
	if !ok {
		return nil, errors.New("unknown member")
	}
	return m, nil
}

func (g *fakeGateway) BotPermissions(_ context.Context, _ string) (int64, error) {
	return g.perms, nil
}

type fakePanelDal struct {
	mu      sync.Mutex
	byGuild map[string]*entities.TicketPanel
}

func newFakePanelDal() *fakePanelDal {
	return &fakePanelDal{byGuild: make(map[string]*entities.TicketPanel)}
}

func (d *fakePanelDal) SavePanel(_ context.Context, panel *entities.TicketPanel) (*entities.TicketPanel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	saved := *panel
	if existing, ok := d.byGuild[panel.GuildID]; ok {
		saved.ID = existing.ID
		saved.PublishedMessageID = existing.PublishedMessageID
	} else {
		saved.ID = primitive.NewObjectID()
	}
	d.byGuild[panel.GuildID] = &saved
	out := saved
	return &out, nil
}

func (d *fakePanelDal) GetPanelByGuild(_ context.Context, guildID string) (*entities.TicketPanel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.byGuild[guildID]
	if !ok {
		return nil, dataaccess.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (d *fakePanelDal) GetPanelByID(_ context.Context, id string) (*entities.TicketPanel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.byGuild {
		if p.ID.Hex() == id {
			out := *p
			return &out, nil
		}
	}
	return nil, dataaccess.ErrNotFound
}

func (d *fakePanelDal) SetPublishedMessage(_ context.Context, id primitive.ObjectID, messageID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.byGuild {
		if p.ID == id {
			p.PublishedMessageID = messageID
			return nil
		}
	}
	return dataaccess.ErrNotFound
}

type fakeStatsDal struct {
	mu     sync.Mutex
	counts map[string]map[string]int
}

func newFakeStatsDal() *fakeStatsDal {
	return &fakeStatsDal{counts: make(map[string]map[string]int)}
}

func (d *fakeStatsDal) IncrementClaim(_ context.Context, guildID, userID string) (*entities.StaffStat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.counts[guildID] == nil {
		d.counts[guildID] = make(map[string]int)
	}
	d.counts[guildID][userID]++
	return &entities.StaffStat{GuildID: guildID, UserID: userID, ClaimedCount: d.counts[guildID][userID]}, nil
}

func (d *fakeStatsDal) TopClaimers(_ context.Context, guildID string, limit int) ([]*entities.StaffStat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	stats := make([]*entities.StaffStat, 0, len(d.counts[guildID]))
	for userID, count := range d.counts[guildID] {
		stats = append(stats, &entities.StaffStat{GuildID: guildID, UserID: userID, ClaimedCount: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].ClaimedCount == stats[j].ClaimedCount {
			return stats[i].UserID < stats[j].UserID
		}
		return stats[i].ClaimedCount > stats[j].ClaimedCount
	})
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

func (d *fakeStatsDal) ResetUser(_ context.Context, guildID, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.counts[guildID] != nil {
		d.counts[guildID][userID] = 0
	}
	return nil
}

func (d *fakeStatsDal) ResetGuild(_ context.Context, guildID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for userID := range d.counts[guildID] {
		d.counts[guildID][userID] = 0
	}
	return nil
}

func (d *fakeStatsDal) count(guildID, userID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[guildID][userID]
}
