// Package boot turns the loaded configuration into validated runtime settings.
package boot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/memohai/meetprep/internal/config"
)

// Dispatch modes for the reminder scheduler.
const (
	ModeChannel = "channel"
	ModeDirect  = "direct"
)

// RuntimeConfig holds parsed runtime settings derived from config.Config.
type RuntimeConfig struct {
	ServerAddr       string        `validate:"required"`
	SlackBotToken    string        `validate:"required"`
	SigningSecret    string        `validate:"required"`
	PrepChannelID    string        `validate:"required_if=Mode channel"`
	AssistantMention string        `validate:"required_if=Mode channel"`
	Mode             string        `validate:"oneof=channel direct"`
	CheckInterval    time.Duration `validate:"gte=1m"`
	WindowHours      int           `validate:"gte=1,lte=168"`
	CorrelationTTL   time.Duration `validate:"gte=0"`
	StateSecret      string        `validate:"required,min=16"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ProvideRuntimeConfig builds RuntimeConfig from the given config and validates it.
func ProvideRuntimeConfig(cfg config.Config) (*RuntimeConfig, error) {
	interval, err := time.ParseDuration(strings.TrimSpace(cfg.Reminder.CheckInterval))
	if err != nil {
		return nil, fmt.Errorf("invalid reminder check interval: %w", err)
	}
	ttl, err := time.ParseDuration(strings.TrimSpace(cfg.Reminder.CorrelationTTL))
	if err != nil {
		return nil, fmt.Errorf("invalid correlation ttl: %w", err)
	}

	stateSecret := strings.TrimSpace(cfg.Google.StateSecret)
	if stateSecret == "" {
		// Fall back to the Google client secret so a minimal config still signs state.
		stateSecret = strings.TrimSpace(cfg.Google.ClientSecret)
	}

	ret := &RuntimeConfig{
		ServerAddr:       cfg.Server.Addr,
		SlackBotToken:    strings.TrimSpace(cfg.Slack.BotToken),
		SigningSecret:    strings.TrimSpace(cfg.Slack.SigningSecret),
		PrepChannelID:    strings.TrimSpace(cfg.Slack.PrepChannelID),
		AssistantMention: strings.TrimSpace(cfg.Slack.AssistantMention),
		Mode:             strings.ToLower(strings.TrimSpace(cfg.Reminder.Mode)),
		CheckInterval:    interval,
		WindowHours:      cfg.Reminder.WindowHours,
		CorrelationTTL:   ttl,
		StateSecret:      stateSecret,
	}

	if err := validate.Struct(ret); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+"("+fe.Tag()+")")
			}
			return nil, fmt.Errorf("invalid runtime config: %s", strings.Join(fields, ", "))
		}
		return nil, fmt.Errorf("invalid runtime config: %w", err)
	}
	return ret, nil
}

// Window returns the reminder look-ahead as a duration.
func (c *RuntimeConfig) Window() time.Duration {
	return time.Duration(c.WindowHours) * time.Hour
}
