package main

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/request"
	"github.com/Jacobbrewer1/tickets/pkg/ticketing"
	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// interactionTimeout bounds the handling of a single interaction.
const interactionTimeout = 15 * time.Second

// slashCommandController returns the processor for a sub command.
type slashCommandController func(a *App, subCmd string) (slashProcessor, error)

// slashProcessor is the processor for slash commands.
type slashProcessor func(ctx context.Context, a *App, i *discordgo.InteractionCreate, r *interactionResponder) error

// authOption is an option for the auth middleware. It indicates the type of authentication required.
type authOption int

const (
	// authOptionNone indicates that no authentication is required.
	authOptionNone authOption = iota

	// authOptionDashboard indicates that the dashboard token is required, when one is configured. Dashboard requests
	// are also rate limited.
	authOptionDashboard
)

type Controller func(w http.ResponseWriter, r *http.Request)

func (a *App) middlewareHttp(handler Controller, auth authOption) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		cw := request.NewClientWriter(w)

		// Recover from any panics that occur in the handler.
		defer func() {
			if rec := recover(); rec != nil {
				a.Error("Panic in handler",
					slog.String(logging.KeyError, fmt.Sprintf("%v", rec)),
					slog.String("stack", string(debug.Stack())),
				)
				request.Encode(a.Logger, cw, http.StatusInternalServerError, request.NewMessage(request.ErrInternalServer.Error()))
			}
		}()

		var path string
		route := mux.CurrentRoute(r)
		if route != nil { // The route may be nil if the request is not routed.
			var err error
			path, err = route.GetPathTemplate()
			if err != nil {
				// An error here is only returned if the route does not define a path.
				a.Error("Error getting path template", slog.String(logging.KeyError, err.Error()))
				path = r.URL.Path // If the route does not define a path, use the URL path.
			}
		} else {
			path = r.URL.Path // If the route is nil, use the URL path.
		}

		defer func() {
			// Run the deferred function after the request has been handled, as the status code will not be available until then.
			HttpTotalRequests.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Inc()
			HttpRequestDuration.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Observe(time.Since(now).Seconds())
		}()

		if auth == authOptionDashboard {
			cw.Header().Set("Cache-Control", "no-store")
			if a.cfg.BaseUrl != "" {
				cw.Header().Set("Access-Control-Allow-Origin", a.cfg.BaseUrl)
				cw.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
				cw.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				cw.Header().Set("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				cw.WriteHeader(http.StatusNoContent)
				return
			}

			if !a.limiter.Allow() {
				HttpRateLimited.Inc()
				request.Encode(a.Logger, cw, http.StatusTooManyRequests, request.NewMessage(request.ErrTooManyRequests.Error()))
				return
			}

			if !a.authorized(r) {
				request.Encode(a.Logger, cw, http.StatusUnauthorized, request.NewMessage(request.ErrUnauthorized.Error()))
				return
			}
		}

		handler(cw, r)
	}
}

// authorized reports whether the request carries the dashboard token. Every request is authorized when no token is
// configured.
func (a *App) authorized(r *http.Request) bool {
	if a.cfg.DashboardToken == "" {
		return true
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(a.cfg.DashboardToken)) == 1
}

// interactionHandler is the handler for every interaction: slash commands, panel menus and ticket controls.
func (a *App) interactionHandler(controllers map[string]slashCommandController) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
		defer cancel()

		r := newInteractionResponder(s, i.Interaction)

		// Recover from any panics so a bad interaction cannot take the bot down.
		defer func() {
			if rec := recover(); rec != nil {
				a.Error("Panic in interaction handler",
					slog.String(logging.KeyError, fmt.Sprintf("%v", rec)),
					slog.String("stack", string(debug.Stack())),
				)
				ticketing.ReplyInternalError(ctx, a.Logger, r, fmt.Errorf("panic: %v", rec))
			}
		}()

		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			a.slashCommandHandler(ctx, controllers, i, r)
		case discordgo.InteractionMessageComponent:
			a.componentHandler(ctx, i, r)
		}
	}
}

// componentHandler routes panel menu selections and ticket control presses to the ticket controller.
func (a *App) componentHandler(ctx context.Context, i *discordgo.InteractionCreate, r *interactionResponder) {
	data := i.MessageComponentData()

	var (
		name string
		err  error
	)
	switch {
	case data.ComponentType == discordgo.SelectMenuComponent && strings.HasPrefix(data.CustomID, ticketing.PanelSelectPrefix):
		name = string(ticketing.ActionOpen)
		timer := prometheus.NewTimer(DiscordInteractionDuration.WithLabelValues(name))
		defer timer.ObserveDuration()

		err = a.controller.Open(ctx, &ticketing.Selection{
			CustomID:  data.CustomID,
			GuildID:   i.GuildID,
			ChannelID: i.ChannelID,
			Values:    data.Values,
			Actor:     actorOf(i),
		}, r)
	case data.ComponentType == discordgo.ButtonComponent && ticketing.IsTicketButton(data.CustomID):
		name = data.CustomID
		timer := prometheus.NewTimer(DiscordInteractionDuration.WithLabelValues(name))
		defer timer.ObserveDuration()

		err = a.controller.HandleButton(ctx, &ticketing.ButtonPress{
			CustomID:  data.CustomID,
			GuildID:   i.GuildID,
			ChannelID: i.ChannelID,
			Message:   i.Message,
			Actor:     actorOf(i),
		}, r)
	default:
		// Components of other bots or stale messages.
		a.Debug("Unhandled component", slog.String("custom_id", data.CustomID))
		return
	}

	if err != nil {
		ticketing.ReplyInternalError(ctx, a.Logger.With(
			slog.String("interaction", name),
			slog.String(logging.KeyGuild, i.GuildID),
			slog.String(logging.KeyChannel, i.ChannelID),
		), r, err)
	}
}

// slashCommandHandler is the handler for slash commands.
func (a *App) slashCommandHandler(ctx context.Context, controllers map[string]slashCommandController, i *discordgo.InteractionCreate, r *interactionResponder) {
	data := i.ApplicationCommandData()
	a.Debug("Handling interaction " + data.Name)

	controller, ok := controllers[data.Name]
	if !ok {
		a.Error(fmt.Sprintf("No controller found for command %s", data.Name), slog.String("command", data.Name))
		ticketing.ReplyInternalError(ctx, a.Logger, r, fmt.Errorf("unknown command %s", data.Name))
		return
	}

	if len(data.Options) == 0 {
		ticketing.ReplyInternalError(ctx, a.Logger, r, fmt.Errorf("command %s has no sub command", data.Name))
		return
	}

	timer := prometheus.NewTimer(DiscordInteractionDuration.WithLabelValues(data.Name + "_" + data.Options[0].Name))
	defer timer.ObserveDuration()

	processor, err := controller(a, data.Options[0].Name)
	if err != nil {
		ticketing.ReplyInternalError(ctx, a.Logger, r, fmt.Errorf("error getting processor for command %s: %w", data.Name, err))
		return
	}

	if err := processor(ctx, a, i, r); err != nil {
		ticketing.ReplyInternalError(ctx, a.Logger, r, fmt.Errorf("error processing command %s: %w", data.Name, err))
	}
}
