package boot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/meetprep/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{Addr: ":5000"},
		Slack: config.SlackConfig{
			BotToken:         "xoxb-token",
			SigningSecret:    "signing",
			PrepChannelID:    "C093W3B7F9T",
			AssistantMention: "@Glean",
		},
		Google: config.GoogleConfig{
			ClientSecret: "google-client-secret-value",
		},
		Reminder: config.ReminderConfig{
			Mode:           "channel",
			CheckInterval:  "15m",
			WindowHours:    3,
			CorrelationTTL: "0s",
		},
	}
}

func TestProvideRuntimeConfig(t *testing.T) {
	rc, err := ProvideRuntimeConfig(validConfig())
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, rc.CheckInterval)
	assert.Equal(t, 3*time.Hour, rc.Window())
	assert.Equal(t, ModeChannel, rc.Mode)
	assert.Equal(t, time.Duration(0), rc.CorrelationTTL)
	assert.Equal(t, "google-client-secret-value", rc.StateSecret)
}

func TestProvideRuntimeConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad interval", func(c *config.Config) { c.Reminder.CheckInterval = "soon" }},
		{"interval too short", func(c *config.Config) { c.Reminder.CheckInterval = "10s" }},
		{"unknown mode", func(c *config.Config) { c.Reminder.Mode = "email" }},
		{"missing bot token", func(c *config.Config) { c.Slack.BotToken = "" }},
		{"channel mode without channel", func(c *config.Config) { c.Slack.PrepChannelID = "" }},
		{"zero window", func(c *config.Config) { c.Reminder.WindowHours = 0 }},
		{"short state secret", func(c *config.Config) { c.Google.ClientSecret = "short" }},
		{"negative ttl", func(c *config.Config) { c.Reminder.CorrelationTTL = "-1m" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			_, err := ProvideRuntimeConfig(cfg)
			assert.Error(t, err)
		})
	}
}

func TestDirectModeDoesNotNeedChannel(t *testing.T) {
	cfg := validConfig()
	cfg.Reminder.Mode = "Direct"
	cfg.Slack.PrepChannelID = ""

	rc, err := ProvideRuntimeConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, ModeDirect, rc.Mode)
}
