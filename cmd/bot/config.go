package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/joho/godotenv"
)

const (
	// AppName is the name of the application.
	AppName = "tickets"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvMongoUri is the environment variable for the MongoDB URI.
	EnvMongoUri = `MONGO_URI`

	// EnvMongoDatabase is the environment variable for the MongoDB database name.
	EnvMongoDatabase = `MONGO_DATABASE`

	// EnvHttpPort is the environment variable for the port of the dashboard API and monitoring server.
	EnvHttpPort = `HTTP_PORT`

	// EnvBaseUrl is the environment variable for the dashboard origin allowed by CORS.
	EnvBaseUrl = `BASE_URL`

	// EnvDashboardToken is the environment variable for the bearer token required by the dashboard API.
	EnvDashboardToken = `DASHBOARD_TOKEN`

	// EnvApiRateLimit is the environment variable for the dashboard API rate limit, in requests per second.
	EnvApiRateLimit = `API_RATE_LIMIT`
)

const (
	defaultHttpPort     = "8080"
	defaultApiRateLimit = 10
)

// Config is the runtime configuration of the bot.
type Config struct {
	BotToken       string
	ApplicationId  string
	MongoUri       string
	MongoDatabase  dataaccess.DatabaseName
	HttpPort       string
	BaseUrl        string
	DashboardToken string
	ApiRateLimit   float64
}

// LoadConfig reads the configuration from the environment. A .env file in the working directory is loaded first if
// there is one; variables already set in the environment take precedence.
func LoadConfig(l *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	return parseConfig(l, os.Getenv)
}

func parseConfig(l *slog.Logger, getenv func(string) string) (*Config, error) {
	cfg := &Config{
		BotToken:       getenv(EnvBotToken),
		ApplicationId:  getenv(EnvApplicationId),
		MongoUri:       getenv(EnvMongoUri),
		MongoDatabase:  dataaccess.DatabaseName(getenv(EnvMongoDatabase)),
		HttpPort:       getenv(EnvHttpPort),
		BaseUrl:        strings.TrimSuffix(getenv(EnvBaseUrl), "/"),
		DashboardToken: getenv(EnvDashboardToken),
		ApiRateLimit:   defaultApiRateLimit,
	}

	var missing []string
	for key, value := range map[string]string{
		EnvBotToken:      cfg.BotToken,
		EnvApplicationId: cfg.ApplicationId,
		EnvMongoUri:      cfg.MongoUri,
	} {
		if value == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		// Map iteration order is random.
		sort.Strings(missing)
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = dataaccess.DefaultDatabase
	}

	if cfg.HttpPort == "" {
		// Default to 8080 if not provided.
		cfg.HttpPort = defaultHttpPort
		l.Info("No http port provided in environment, defaulting to "+defaultHttpPort, slog.String("key", EnvHttpPort))
	}

	if raw := getenv(EnvApiRateLimit); raw != "" {
		limit, err := strconv.ParseFloat(raw, 64)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("invalid %s %q", EnvApiRateLimit, raw)
		}
		cfg.ApiRateLimit = limit
	}

	if cfg.DashboardToken == "" {
		l.Warn("No dashboard token provided, the dashboard API is unauthenticated", slog.String("key", EnvDashboardToken))
	}

	l.Debug("Configuration loaded",
		slog.String("database", string(cfg.MongoDatabase)),
		slog.String("port", cfg.HttpPort),
		slog.String("base_url", cfg.BaseUrl),
		slog.Float64("rate_limit", cfg.ApiRateLimit),
		slog.Bool("auth", cfg.DashboardToken != ""),
	)
	return cfg, nil
}
