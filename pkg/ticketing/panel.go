package ticketing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
)

const (
	maxOptionDescription = 100
	maxTicketMessage     = 1024
	maxSelectPlaceholder = 100
	maxPanelContent      = 2000
)

// PanelInput is a panel definition as submitted by the dashboard.
type PanelInput struct {
	ChannelID        string `json:"channelId"`
	EmbedTitle       string `json:"embedTitle"`
	EmbedDescription string `json:"embedDescription"`

	// EmbedColor is either a hex string ("#5865F2") or an integer.
	EmbedColor json.RawMessage `json:"embedColor,omitempty"`

	EmbedImageURL     string                `json:"embedImageUrl"`
	TicketMessage     string                `json:"ticketMessage"`
	SelectPlaceholder string                `json:"selectPlaceholder"`
	PanelContent      string                `json:"panelContent"`
	ClaimLogChannelID string                `json:"claimLogChannelId"`
	CloseLogChannelID string                `json:"closeLogChannelId"`
	TicketCategoryID  string                `json:"ticketCategoryId"`
	StaffRoleIDs      []string              `json:"staffRoleIds"`
	MenuOptions       []entities.MenuOption `json:"menuOptions"`
}

// PanelManager validates and stores panel definitions.
type PanelManager struct {
	l      *slog.Logger
	panels dataaccess.PanelDal
}

// NewPanelManager creates a new panel manager.
func NewPanelManager(l *slog.Logger, panels dataaccess.PanelDal) *PanelManager {
	return &PanelManager{
		l:      l,
		panels: panels,
	}
}

// SavePanel normalizes the input and replaces the panel of the guild with it.
func (m *PanelManager) SavePanel(ctx context.Context, guildID string, in *PanelInput) (*entities.TicketPanel, error) {
	panel, err := normalizePanel(guildID, in)
	if err != nil {
		return nil, err
	}

	saved, err := m.panels.SavePanel(ctx, panel)
	if err != nil {
		return nil, fmt.Errorf("error saving panel: %w", err)
	}

	m.l.Info("Ticket panel saved",
		slog.String(logging.KeyGuild, guildID),
		slog.Int("options", len(saved.MenuOptions)),
		slog.Int("roles", len(saved.StaffRoleIDs)),
		slog.String("category", saved.TicketCategoryID),
	)
	return saved, nil
}

// LoadPanel gets the panel of the guild.
func (m *PanelManager) LoadPanel(ctx context.Context, guildID string) (*entities.TicketPanel, error) {
	panel, err := m.panels.GetPanelByGuild(ctx, guildID)
	if errors.Is(err, dataaccess.ErrNotFound) {
		return nil, &NotFoundError{Resource: "ticket panel", Err: err}
	} else if err != nil {
		return nil, fmt.Errorf("error loading panel: %w", err)
	}
	return panel, nil
}

func normalizePanel(guildID string, in *PanelInput) (*entities.TicketPanel, error) {
	if in == nil {
		return nil, &ValidationError{Message: "panel definition is required"}
	}

	color, err := parseColor(in.EmbedColor)
	if err != nil {
		return nil, err
	}

	roles := make([]string, 0, len(in.StaffRoleIDs))
	for _, r := range in.StaffRoleIDs {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}

	options := make([]entities.MenuOption, 0, len(in.MenuOptions))
	for _, o := range in.MenuOptions {
		o.Label = strings.TrimSpace(o.Label)
		o.Value = strings.TrimSpace(o.Value)
		if o.Label == "" || o.Value == "" {
			continue
		}
		o.Description = truncate(strings.TrimSpace(o.Description), maxOptionDescription)
		options = append(options, o)
	}

	if dups := duplicateValues(options); len(dups) > 0 {
		return nil, &ValidationError{
			Message: "menu option values must be unique, duplicated values",
			Values:  dups,
		}
	}

	panel := &entities.TicketPanel{
		GuildID:           guildID,
		ChannelID:         strings.TrimSpace(in.ChannelID),
		EmbedTitle:        strings.TrimSpace(in.EmbedTitle),
		EmbedDescription:  strings.TrimSpace(in.EmbedDescription),
		EmbedColor:        color,
		EmbedImageURL:     strings.TrimSpace(in.EmbedImageURL),
		TicketMessage:     truncate(strings.TrimSpace(in.TicketMessage), maxTicketMessage),
		SelectPlaceholder: truncate(strings.TrimSpace(in.SelectPlaceholder), maxSelectPlaceholder),
		PanelContent:      truncate(strings.TrimSpace(in.PanelContent), maxPanelContent),
		ClaimLogChannelID: strings.TrimSpace(in.ClaimLogChannelID),
		CloseLogChannelID: strings.TrimSpace(in.CloseLogChannelID),
		TicketCategoryID:  strings.TrimSpace(in.TicketCategoryID),
		StaffRoleIDs:      roles,
		MenuOptions:       options,
	}

	var missing []string
	if panel.ChannelID == "" {
		missing = append(missing, "channelId")
	}
	if panel.EmbedTitle == "" {
		missing = append(missing, "embedTitle")
	}
	if panel.EmbedDescription == "" {
		missing = append(missing, "embedDescription")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Message: "missing required fields", Values: missing}
	}

	return panel, nil
}

// duplicateValues returns every value that appears more than once, in order of first appearance.
func duplicateValues(options []entities.MenuOption) []string {
	counts := make(map[string]int, len(options))
	order := make([]string, 0, len(options))
	for _, o := range options {
		if counts[o.Value] == 0 {
			order = append(order, o.Value)
		}
		counts[o.Value]++
	}

	var dups []string
	for _, v := range order {
		if counts[v] > 1 {
			dups = append(dups, v)
		}
	}
	return dups
}

// parseColor accepts a JSON hex string or integer and returns the 24 bit color.
func parseColor(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return entities.DefaultEmbedColor, nil
	}

	var value int
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, &ValidationError{Message: "invalid embed color"}
		}

		s = strings.TrimSpace(s)
		if s == "" {
			return entities.DefaultEmbedColor, nil
		}
		s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")

		parsed, err := strconv.ParseInt(s, 16, 64)
		if err != nil {
			return 0, &ValidationError{Message: "invalid embed color", Values: []string{s}}
		}
		value = int(parsed)
	} else if err := json.Unmarshal(raw, &value); err != nil {
		return 0, &ValidationError{Message: "invalid embed color", Values: []string{string(raw)}}
	}

	if value < 0 || value > 0xFFFFFF {
		return 0, &ValidationError{Message: "embed color out of range", Values: []string{strconv.Itoa(value)}}
	}
	return value, nil
}

// truncate caps s at n characters.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
