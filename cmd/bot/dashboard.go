package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/request"
	"github.com/Jacobbrewer1/tickets/pkg/ticketing"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for health check.
	PathHealth = "/health"

	pathPanel       = "/api/guilds/{guildId:[0-9]+}/panel"
	pathPublish     = "/api/guilds/{guildId:[0-9]+}/panel/publish"
	pathTopClaimers = "/api/guilds/{guildId:[0-9]+}/stats/top"
	pathResetStats  = "/api/guilds/{guildId:[0-9]+}/stats/reset"

	// maxBodySize caps dashboard request bodies.
	maxBodySize = 1 << 20
)

// resetRequest is the body of a stats reset. An empty user ID resets the whole guild.
type resetRequest struct {
	UserID string `json:"userId"`
}

func (a *App) setupRoutes() {
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)
	a.r.HandleFunc(PathHealth, a.middlewareHttp(a.healthCheck(), authOptionNone)).Methods(http.MethodGet)

	a.setupDashboardRoutes()
}

// setupDashboardRoutes registers the dashboard API.
func (a *App) setupDashboardRoutes() {
	a.r.HandleFunc(pathPanel, a.middlewareHttp(a.getPanelHandler, authOptionDashboard)).Methods(http.MethodGet, http.MethodOptions)
	a.r.HandleFunc(pathPanel, a.middlewareHttp(a.savePanelHandler, authOptionDashboard)).Methods(http.MethodPut, http.MethodPost)
	a.r.HandleFunc(pathPublish, a.middlewareHttp(a.publishPanelHandler, authOptionDashboard)).Methods(http.MethodPost, http.MethodOptions)
	a.r.HandleFunc(pathTopClaimers, a.middlewareHttp(a.topClaimersHandler, authOptionDashboard)).Methods(http.MethodGet, http.MethodOptions)
	a.r.HandleFunc(pathResetStats, a.middlewareHttp(a.resetStatsHandler, authOptionDashboard)).Methods(http.MethodPost, http.MethodOptions)

	// NotFoundHandler is the handler for 404.
	a.r.NotFoundHandler = request.NotFoundHandler(a.Logger)

	// MethodNotAllowedHandler is the handler for 405.
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Logger)
}

func (a *App) getPanelHandler(w http.ResponseWriter, r *http.Request) {
	panel, err := a.panels.LoadPanel(r.Context(), mux.Vars(r)["guildId"])
	nf := new(ticketing.NotFoundError)
	if errors.As(err, &nf) {
		// A guild without a panel is not an error for the dashboard.
		request.Encode(a.Logger, w, http.StatusOK, nil)
		return
	} else if err != nil {
		a.writeError(w, err)
		return
	}
	request.Encode(a.Logger, w, http.StatusOK, panel)
}

func (a *App) savePanelHandler(w http.ResponseWriter, r *http.Request) {
	in := new(ticketing.PanelInput)
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(in); err != nil {
		request.Encode(a.Logger, w, http.StatusBadRequest, request.NewMessageError(request.ErrInvalidBody.Error(), err))
		return
	}

	panel, err := a.panels.SavePanel(r.Context(), mux.Vars(r)["guildId"], in)
	if err != nil {
		a.writeError(w, err)
		return
	}
	request.Encode(a.Logger, w, http.StatusOK, panel)
}

func (a *App) publishPanelHandler(w http.ResponseWriter, r *http.Request) {
	panel, err := a.publisher.Publish(r.Context(), mux.Vars(r)["guildId"])
	if err != nil {
		a.writeError(w, err)
		return
	}
	request.Encode(a.Logger, w, http.StatusOK, panel)
}

func (a *App) topClaimersHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		limit, err = strconv.Atoi(raw)
		if err != nil {
			request.Encode(a.Logger, w, http.StatusBadRequest, request.NewMessageError("Invalid limit", err))
			return
		}
	}

	leaders, err := a.topClaimers(r.Context(), mux.Vars(r)["guildId"], limit)
	if err != nil {
		a.writeError(w, err)
		return
	}
	request.Encode(a.Logger, w, http.StatusOK, leaders)
}

func (a *App) resetStatsHandler(w http.ResponseWriter, r *http.Request) {
	guildID := mux.Vars(r)["guildId"]
	if _, err := a.gateway.Guild(r.Context(), guildID); errors.Is(err, ticketing.ErrUnknownGuild) {
		// Only guilds the bot is in have counters worth resetting.
		a.writeError(w, &ticketing.NotFoundError{Resource: "guild", Err: err})
		return
	} else if err != nil {
		a.writeError(w, err)
		return
	}

	body := new(resetRequest)
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(body); err != nil && !errors.Is(err, io.EOF) {
		request.Encode(a.Logger, w, http.StatusBadRequest, request.NewMessageError(request.ErrInvalidBody.Error(), err))
		return
	}

	if err := a.stats.ResetClaims(r.Context(), guildID, body.UserID); err != nil {
		a.writeError(w, err)
		return
	}
	request.Encode(a.Logger, w, http.StatusOK, request.NewMessage("Stats reset"))
}

// topClaimers returns the top claimers of the guild with their display names.
func (a *App) topClaimers(ctx context.Context, guildID string, limit int) ([]*entities.StaffStat, error) {
	leaders, err := a.stats.TopClaimers(ctx, guildID, limit)
	if err != nil {
		return nil, err
	}

	for _, l := range leaders {
		member, err := a.gateway.Member(ctx, guildID, l.UserID)
		if err != nil {
			// Members that left the guild keep their ID as the name.
			a.Debug("Error fetching member", slog.String(logging.KeyUser, l.UserID), slog.String(logging.KeyError, err.Error()))
		}
		l.DisplayName = displayName(member, l.UserID)
	}
	return leaders, nil
}

// writeError maps err to its response.
func (a *App) writeError(w http.ResponseWriter, err error) {
	var (
		verr *ticketing.ValidationError
		perr *ticketing.PermissionError
		nf   *ticketing.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		request.Encode(a.Logger, w, http.StatusBadRequest, request.NewMessageError(verr.Message, nil, verr.Values...))
	case errors.As(err, &perr):
		request.Encode(a.Logger, w, http.StatusForbidden, request.NewMessage(perr.Error()))
	case errors.As(err, &nf):
		request.Encode(a.Logger, w, http.StatusNotFound, request.NewMessage(nf.Error()))
	default:
		a.Error("Error handling dashboard request", slog.String(logging.KeyError, err.Error()))
		request.Encode(a.Logger, w, http.StatusInternalServerError, request.NewMessage(request.ErrInternalServer.Error()))
	}
}
