package main

import (
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/bwmarrin/discordgo"
)

func (a *App) guildJoinedHandler() func(s *discordgo.Session, g *discordgo.GuildCreate) {
	return func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		a.Info("Joined guild", slog.String(logging.KeyGuild, g.ID), slog.String("name", g.Name))

		// Increment the total number of guilds.
		TotalDiscordGuilds.Inc()

		// Guilds joined after start up need the commands too.
		if a.ready.Load() {
			if err := a.registerGuildCommands(g.ID); err != nil {
				a.Error("Error registering commands", slog.String(logging.KeyGuild, g.ID), slog.String(logging.KeyError, err.Error()))
			}
		}
	}
}

func (a *App) guildLeaveHandler() func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(_ *discordgo.Session, g *discordgo.GuildDelete) {
		// Unavailable guilds are outages, the bot is still a member.
		if g.Unavailable {
			a.Warn("Guild unavailable", slog.String(logging.KeyGuild, g.ID))
			return
		}

		a.Info("Left guild", slog.String(logging.KeyGuild, g.ID))

		// Decrement the total number of guilds.
		TotalDiscordGuilds.Dec()
	}
}

// joinedGuildIDs returns the guilds the bot is a member of, as known to the session state.
func (a *App) joinedGuildIDs() []string {
	a.s.State.RLock()
	defer a.s.State.RUnlock()

	ids := make([]string, 0, len(a.s.State.Guilds))
	for _, g := range a.s.State.Guilds {
		ids = append(ids, g.ID)
	}
	return ids
}
