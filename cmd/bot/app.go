package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/connection"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/ticketing"
	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"
)

// shutdownTimeout bounds the graceful shutdown of the http server and the mongo client.
const shutdownTimeout = 10 * time.Second

type App struct {
	// is the logger.
	*slog.Logger

	// cfg is the configuration of the application.
	cfg *Config

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// mc is the mongo client.
	mc *mongo.Client

	// db is the mongo database.
	db *mongo.Database

	gateway    ticketing.Gateway
	panels     *ticketing.PanelManager
	publisher  *ticketing.Publisher
	stats      *ticketing.Stats
	controller *ticketing.Controller

	// limiter rate limits the dashboard API.
	limiter *rate.Limiter

	// ready is set once the slash commands of the joined guilds are registered.
	ready atomic.Bool
}

// NewApp creates a new instance of App.
func NewApp(
	l *slog.Logger,
	cfg *Config,
	r *mux.Router,
	s *discordgo.Session,
	mc *mongo.Client,
	db *mongo.Database,
	gateway ticketing.Gateway,
	panels *ticketing.PanelManager,
	publisher *ticketing.Publisher,
	stats *ticketing.Stats,
	controller *ticketing.Controller,
	limiter *rate.Limiter,
) *App {
	return &App{
		Logger:     l,
		cfg:        cfg,
		r:          r,
		s:          s,
		mc:         mc,
		db:         db,
		gateway:    gateway,
		panels:     panels,
		publisher:  publisher,
		stats:      stats,
		controller: controller,
		limiter:    limiter,
	}
}

func (a *App) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	err := dataaccess.EnsureIndexes(ctx, a.db)
	cancel()
	if err != nil {
		return fmt.Errorf("error creating indexes: %w", err)
	}

	a.RegisterDiscordHandlers()

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	a.Info("Bot is now running.")

	// Register slash commands.
	if err := a.registerSlashCommands(); err != nil {
		return fmt.Errorf("error registering slash commands: %w", err)
	}
	a.ready.Store(true)

	a.generateServer()
	a.setupRoutes()
	a.runServer()

	// Register listener for shutdown signal.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	sig := <-c
	a.Info("Received shutdown signal", slog.String("signal", sig.String()))
	return a.ShutdownHook()
}

func (a *App) ShutdownHook() error {
	// Reset the total number of guilds to 0.
	TotalDiscordGuilds.Set(0)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.svr.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("error shutting down http server: %w", err))
	}

	// Unregister slash commands.
	if err := a.unregisterSlashCommands(); err != nil {
		errs = append(errs, fmt.Errorf("error unregistering slash commands: %w", err))
	}

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing connection to Discord: %w", err))
	}

	if err := a.mc.Disconnect(ctx); err != nil {
		errs = append(errs, fmt.Errorf("error disconnecting from mongo: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) runServer() {
	go func() {
		a.Info("Starting http server", slog.String("addr", a.svr.Addr))
		if err := a.svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Error("Error starting http server", slog.String(logging.KeyError, err.Error()))
			a.Warn("Dashboard API and monitoring will not be available")
		}
	}()
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:              ":" + a.cfg.HttpPort,
		Handler:           a.r,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (a *App) RegisterDiscordHandlers() {
	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.Info(fmt.Sprintf("Logged in as %s", r.User.Username), slog.Int("guilds", len(r.Guilds)))
	})

	// Count every gateway event.
	a.s.AddHandler(a.eventHandler)

	// Bot joined guild.
	a.s.AddHandler(a.guildJoinedHandler())

	// Bot left guild.
	a.s.AddHandler(a.guildLeaveHandler())

	// Interaction create handler.
	a.s.AddHandler(a.interactionHandler(
		// Slash Controllers
		map[string]slashCommandController{
			ticketsCmd.Name: ticketsCmdController,
		},
	))
}

func (a *App) eventHandler(_ *discordgo.Session, e *discordgo.Event) {
	if e.Type != "" {
		TotalDiscordEvents.WithLabelValues(e.Type).Inc()
	} else {
		// If there is no type, then use the operation name.
		TotalDiscordEvents.WithLabelValues(fmt.Sprintf("OP_%d", e.Operation)).Inc()
	}
}

// NewSession creates the discord session of the bot.
func NewSession(cfg *Config) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + strings.TrimPrefix(cfg.BotToken, "Bot "))
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	return dg, nil
}

// NewMongoClient connects to the configured mongo deployment.
func NewMongoClient(l *slog.Logger, cfg *Config) (*mongo.Client, error) {
	conn := &connection.MongoDB{
		ConnectionString: cfg.MongoUri,
	}

	client, err := conn.Connect(context.Background())
	if err != nil {
		return nil, err
	}

	l.Debug("Connected to MongoDB", slog.String("key", EnvMongoUri))
	return client, nil
}

// NewMongoDatabase returns the configured database of the client.
func NewMongoDatabase(client *mongo.Client, cfg *Config) *mongo.Database {
	return dataaccess.NewDatabase(client, cfg.MongoDatabase)
}

// NewRateLimiter creates the dashboard API rate limiter.
func NewRateLimiter(cfg *Config) *rate.Limiter {
	burst := int(cfg.ApiRateLimit)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.ApiRateLimit), burst)
}
