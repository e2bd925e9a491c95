// Package config loads and exposes application configuration (TOML plus environment overrides).
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath       = "config.toml"
	DefaultEnvPath          = ".env"
	DefaultHTTPAddr         = ":5000"
	DefaultPGHost           = "127.0.0.1"
	DefaultPGPort           = 5432
	DefaultPGUser           = "postgres"
	DefaultPGDatabase       = "meetprep"
	DefaultPGSSLMode        = "disable"
	DefaultGleanBaseURL     = "https://api.sofi.com/glean/v1"
	DefaultGleanTimeout     = 30
	DefaultAssistantMention = "@Glean"
	DefaultReminderMode     = "channel"
	DefaultCheckInterval    = "15m"
	DefaultWindowHours      = 3
	DefaultCorrelationTTL   = "0s"
)

// DefaultGoogleScopes are requested during calendar authorization.
var DefaultGoogleScopes = []string{
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Postgres PostgresConfig `toml:"postgres"`
	Slack    SlackConfig    `toml:"slack"`
	Google   GoogleConfig   `toml:"google"`
	Glean    GleanConfig    `toml:"glean"`
	Reminder ReminderConfig `toml:"reminder"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP server listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// SlackConfig holds the bot credentials and the shared prep channel.
type SlackConfig struct {
	BotToken         string `toml:"bot_token"`
	SigningSecret    string `toml:"signing_secret"`
	PrepChannelID    string `toml:"prep_channel_id"`
	AssistantMention string `toml:"assistant_mention"`
	APIURL           string `toml:"api_url"`
}

// GoogleConfig holds the OAuth client used for calendar access.
type GoogleConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	RedirectURL  string   `toml:"redirect_url"`
	StateSecret  string   `toml:"state_secret"`
	Scopes       []string `toml:"scopes"`
}

// GleanConfig holds the knowledge assistant endpoint.
type GleanConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ReminderConfig controls polling cadence, the look-ahead window and dispatch mode.
type ReminderConfig struct {
	Mode           string `toml:"mode"`
	CheckInterval  string `toml:"check_interval"`
	WindowHours    int    `toml:"window_hours"`
	CorrelationTTL string `toml:"correlation_ttl"`
}

// Load reads the optional .env file, parses the TOML config file at path,
// applies default values for missing fields and finally environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Slack: SlackConfig{
			AssistantMention: DefaultAssistantMention,
		},
		Google: GoogleConfig{
			Scopes: append([]string(nil), DefaultGoogleScopes...),
		},
		Glean: GleanConfig{
			BaseURL:        DefaultGleanBaseURL,
			TimeoutSeconds: DefaultGleanTimeout,
		},
		Reminder: ReminderConfig{
			Mode:           DefaultReminderMode,
			CheckInterval:  DefaultCheckInterval,
			WindowHours:    DefaultWindowHours,
			CorrelationTTL: DefaultCorrelationTTL,
		},
	}

	if err := loadDotEnv(DefaultEnvPath); err != nil {
		return cfg, err
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	applyEnv(&cfg)
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// applyEnv overrides secrets and connection settings from the environment.
func applyEnv(cfg *Config) {
	setString(&cfg.Slack.BotToken, "SLACK_BOT_TOKEN")
	setString(&cfg.Slack.SigningSecret, "SLACK_SIGNING_SECRET")
	setString(&cfg.Slack.PrepChannelID, "SLACK_PREP_CHANNEL_ID")
	setString(&cfg.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&cfg.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&cfg.Google.RedirectURL, "GOOGLE_REDIRECT_URI")
	setString(&cfg.Google.StateSecret, "GOOGLE_STATE_SECRET")
	setString(&cfg.Glean.APIKey, "GLEAN_API_KEY")
	setString(&cfg.Glean.BaseURL, "GLEAN_BASE_URL")
	setString(&cfg.Postgres.Host, "DB_HOST")
	setString(&cfg.Postgres.Database, "DB_NAME")
	setString(&cfg.Postgres.User, "DB_USER")
	setString(&cfg.Postgres.Password, "DB_PASSWORD")
	setString(&cfg.Server.Addr, "HTTP_ADDR")
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" && os.Getenv("HTTP_ADDR") == "" {
		if _, err := strconv.Atoi(port); err == nil {
			cfg.Server.Addr = ":" + port
		}
	}
}

func setString(dst *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*dst = value
	}
}
