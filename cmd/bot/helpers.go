package main

import (
	"github.com/Jacobbrewer1/tickets/pkg/ticketing"
	"github.com/bwmarrin/discordgo"
)

// actorOf returns the user that triggered the interaction.
func actorOf(i *discordgo.InteractionCreate) ticketing.Actor {
	if i.Member != nil && i.Member.User != nil {
		return ticketing.Actor{
			ID:       i.Member.User.ID,
			Username: i.Member.User.Username,
			Roles:    i.Member.Roles,
		}
	}

	if i.User != nil {
		// Direct messages carry no member, the roles are looked up when needed.
		return ticketing.Actor{
			ID:       i.User.ID,
			Username: i.User.Username,
		}
	}
	return ticketing.Actor{}
}

// isAdministrator reports whether the member that triggered the interaction is an administrator.
func isAdministrator(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator
}

// displayName is the name shown for a member: nickname, then global name, then username, then the user ID.
func displayName(m *discordgo.Member, userID string) string {
	if m == nil {
		return userID
	}
	if m.Nick != "" {
		return m.Nick
	}
	if m.User != nil {
		if m.User.GlobalName != "" {
			return m.User.GlobalName
		}
		if m.User.Username != "" {
			return m.User.Username
		}
	}
	return userID
}
