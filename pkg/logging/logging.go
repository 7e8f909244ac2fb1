package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// KeyError is the key for errors in structured logs.
	KeyError = "err"

	// KeyDal is the key for the data access layer name.
	KeyDal = "dal"

	// KeyGuild is the key for guild IDs.
	KeyGuild = "guild_id"

	// KeyChannel is the key for channel IDs.
	KeyChannel = "channel_id"

	// KeyUser is the key for user IDs.
	KeyUser = "user_id"

	// KeyAction is the key for ticket actions.
	KeyAction = "action"

	// EnvLogLevel is the environment variable for the log level.
	EnvLogLevel = `LOG_LEVEL`
)

// Name is the name of the application the logger is created for.
type Name string

// Config is the configuration for a logger.
type Config struct {
	// AppName is added to every record.
	AppName Name

	// Level is the minimum level that will be written.
	Level slog.Level

	// Out is where records are written. Defaults to stdout.
	Out io.Writer
}

// NewConfig creates a new logging config, reading the level from the environment.
func NewConfig(name Name) *Config {
	return &Config{
		AppName: name,
		Level:   parseLevel(os.Getenv(EnvLogLevel)),
		Out:     os.Stdout,
	}
}

// CommonLogger creates the JSON logger used across the application.
func CommonLogger(cfg *Config) (*slog.Logger, error) {
	if cfg == nil {
		return nil, errors.New("logging config is nil")
	} else if cfg.AppName == "" {
		return nil, errors.New("logging config has no app name")
	}

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	h := slog.NewJSONHandler(out, &slog.HandlerOptions{
		AddSource: cfg.Level == slog.LevelDebug,
		Level:     cfg.Level,
	})

	return slog.New(h).With(slog.String("app", string(cfg.AppName))), nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
