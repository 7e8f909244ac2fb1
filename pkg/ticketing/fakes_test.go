package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/bwmarrin/discordgo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type sentMessage struct {
	ChannelID string
	Message   *discordgo.MessageSend
}

type editedMessage struct {
	ChannelID  string
	MessageID  string
	Components []discordgo.MessageComponent
}

type fakeGateway struct {
	mu sync.Mutex

	channels map[string]*discordgo.Channel
	members  map[string]*discordgo.Member
	perms    int64

	createErr error
	pinErr    error
	dmErr     error
	deleteErr error

	created  []discordgo.GuildChannelCreateData
	sent     []sentMessage
	edited   []editedMessage
	pinned   []string
	dms      map[string][]string
	deleted  []string
	nextID   int
	permErr  error
	fetchErr error

	lastCreated *discordgo.Channel
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		channels: make(map[string]*discordgo.Channel),
		members:  make(map[string]*discordgo.Member),
		dms:      make(map[string][]string),
		perms:    discordgo.PermissionManageChannels,
	}
}

func (g *fakeGateway) id() string {
	g.nextID++
	return fmt.Sprintf("%d", 9000+g.nextID)
}

func (g *fakeGateway) addChannel(ch *discordgo.Channel) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.channels[ch.ID] = ch
}

func (g *fakeGateway) Channel(_ context.Context, channelID string) (*discordgo.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	ch, ok := g.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, channelID)
	}
	return ch, nil
}

func (g *fakeGateway) Guild(_ context.Context, guildID string) (*discordgo.Guild, error) {
	return &discordgo.Guild{ID: guildID}, nil
}

func (g *fakeGateway) CreatePrivateChannel(_ context.Context, guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, data)
	ch := &discordgo.Channel{
		ID:       g.id(),
		GuildID:  guildID,
		Name:     data.Name,
		Topic:    data.Topic,
		Type:     data.Type,
		ParentID: data.ParentID,
	}
	g.channels[ch.ID] = ch
	g.lastCreated = ch
	return ch, nil
}

func (g *fakeGateway) DeleteChannel(_ context.Context, channelID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.deleted = append(g.deleted, channelID)
	delete(g.channels, channelID)
	return nil
}

func (g *fakeGateway) SendMessage(_ context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sentMessage{ChannelID: channelID, Message: msg})
	return &discordgo.Message{ID: g.id(), ChannelID: channelID, Content: msg.Content, Components: msg.Components}, nil
}

func (g *fakeGateway) EditMessageComponents(_ context.Context, channelID, messageID string, components []discordgo.MessageComponent) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edited = append(g.edited, editedMessage{ChannelID: channelID, MessageID: messageID, Components: components})
	return nil
}

func (g *fakeGateway) PinMessage(_ context.Context, _, messageID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pinErr != nil {
		return g.pinErr
	}
	g.pinned = append(g.pinned, messageID)
	return nil
}

func (g *fakeGateway) SendDirectMessage(_ context.Context, userID, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.dmErr != nil {
		return g.dmErr
	}
	g.dms[userID] = append(g.dms[userID], content)
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
	if g.permErr != nil {
		return 0, g.permErr
	}
	return g.perms, nil
}

func (g *fakeGateway) sentTo(channelID string) []*discordgo.MessageSend {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []*discordgo.MessageSend
	for _, s := range g.sent {
		if s.ChannelID == channelID {
			out = append(out, s.Message)
		}
	}
	return out
}

// fakePanelDal stores panels in memory with the same field replacement semantics as the Mongo store.
type fakePanelDal struct {
	mu      sync.Mutex
	byGuild map[string]*entities.TicketPanel
	err     error
}

func newFakePanelDal() *fakePanelDal {
	return &fakePanelDal{byGuild: make(map[string]*entities.TicketPanel)}
}

func (d *fakePanelDal) SavePanel(_ context.Context, panel *entities.TicketPanel) (*entities.TicketPanel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
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
	if d.err != nil {
		return nil, d.err
	}
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
	if d.err != nil {
		return nil, d.err
	}
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

func (d *fakePanelDal) put(p *entities.TicketPanel) *entities.TicketPanel {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	d.byGuild[p.GuildID] = p
	return p
}

type fakeStatsDal struct {
	mu     sync.Mutex
	counts map[string]map[string]int
	err    error
}

func newFakeStatsDal() *fakeStatsDal {
	return &fakeStatsDal{counts: make(map[string]map[string]int)}
}

func (d *fakeStatsDal) IncrementClaim(_ context.Context, guildID, userID string) (*entities.StaffStat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	if d.counts[guildID] == nil {
		d.counts[guildID] = make(map[string]int)
	}
	d.counts[guildID][userID]++
	return &entities.StaffStat{GuildID: guildID, UserID: userID, ClaimedCount: d.counts[guildID][userID]}, nil
}

func (d *fakeStatsDal) TopClaimers(_ context.Context, guildID string, limit int) ([]*entities.StaffStat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
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
	if d.counts[guildID] == nil {
		d.counts[guildID] = make(map[string]int)
	}
	d.counts[guildID][userID] = 0
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

type fakeResponder struct {
	deferred bool
	updated  bool
	replies  []string
	err      error
}

func (r *fakeResponder) Defer(_ context.Context) error {
	r.deferred = true
	return r.err
}

func (r *fakeResponder) DeferUpdate(_ context.Context) error {
	r.updated = true
	return r.err
}

func (r *fakeResponder) Reply(_ context.Context, content string) error {
	r.replies = append(r.replies, content)
	return r.err
}

func (r *fakeResponder) Replied() bool {
	return r.updated || len(r.replies) > 0
}

func (r *fakeResponder) lastReply() string {
	if len(r.replies) == 0 {
		return ""
	}
	return r.replies[len(r.replies)-1]
}

// immediately runs scheduled work synchronously.
func immediately(_ time.Duration, f func()) {
	f()
}
