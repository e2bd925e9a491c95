package modules

import (
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/fx"
	"golang.org/x/oauth2"

	"github.com/memohai/meetprep/internal/boot"
	"github.com/memohai/meetprep/internal/calendar"
	"github.com/memohai/meetprep/internal/config"
	"github.com/memohai/meetprep/internal/correlation"
	dbsqlc "github.com/memohai/meetprep/internal/db/sqlc"
	"github.com/memohai/meetprep/internal/glean"
	"github.com/memohai/meetprep/internal/inbound"
	"github.com/memohai/meetprep/internal/ledger"
	"github.com/memohai/meetprep/internal/messaging"
	"github.com/memohai/meetprep/internal/oauth"
	"github.com/memohai/meetprep/internal/reminder"
	"github.com/memohai/meetprep/internal/users"
)

var DomainModule = fx.Module(
	"domain",
	fx.Provide(
		provideUserService,
		provideLedger,
		provideOAuthConfig,
		provideOAuthFlow,
		provideCalendarSource,
		provideSlackClient,
		provideGleanClient,
		provideCorrelationTable,
		provideDispatcher,
		provideReminderService,
		provideInboundHandler,
	),
)

func provideUserService(log *slog.Logger, queries *dbsqlc.Queries) *users.Service {
	return users.NewService(log, queries)
}

func provideLedger(log *slog.Logger, queries *dbsqlc.Queries) *ledger.Ledger {
	return ledger.New(log, queries)
}

func provideOAuthConfig(cfg config.Config) *oauth2.Config {
	return oauth.NewConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL, cfg.Google.Scopes)
}

func provideOAuthFlow(log *slog.Logger, oauthCfg *oauth2.Config, rc *boot.RuntimeConfig) *oauth.Flow {
	return oauth.NewFlow(log, oauthCfg, rc.StateSecret)
}

func provideCalendarSource(log *slog.Logger, oauthCfg *oauth2.Config, rc *boot.RuntimeConfig) *calendar.Source {
	return calendar.NewSource(log, calendar.NewGoogleProvider(log, oauthCfg), rc.WindowHours)
}

func provideSlackClient(log *slog.Logger, cfg config.Config, rc *boot.RuntimeConfig) *messaging.Client {
	return messaging.NewClient(log, rc.SlackBotToken, messaging.WithAPIURL(cfg.Slack.APIURL))
}

func provideGleanClient(log *slog.Logger, cfg config.Config) *glean.Client {
	return glean.NewClient(log, cfg.Glean.BaseURL, cfg.Glean.APIKey, time.Duration(cfg.Glean.TimeoutSeconds)*time.Second)
}

func provideCorrelationTable(rc *boot.RuntimeConfig) *correlation.Table {
	return correlation.New(correlation.WithTTL(rc.CorrelationTTL))
}

func provideDispatcher(log *slog.Logger, rc *boot.RuntimeConfig, slackClient *messaging.Client, table *correlation.Table, gleanClient *glean.Client) (reminder.Dispatcher, error) {
	switch rc.Mode {
	case boot.ModeChannel:
		return reminder.NewChannelDispatcher(log, slackClient, table, rc.PrepChannelID, rc.AssistantMention), nil
	case boot.ModeDirect:
		return reminder.NewDirectDispatcher(log, gleanClient, slackClient), nil
	default:
		return nil, fmt.Errorf("unknown reminder mode %q", rc.Mode)
	}
}

func provideReminderService(log *slog.Logger, userService *users.Service, source *calendar.Source, l *ledger.Ledger, dispatcher reminder.Dispatcher, rc *boot.RuntimeConfig) *reminder.Service {
	return reminder.NewService(log, userService, source, l, dispatcher, rc.CheckInterval)
}

func provideInboundHandler(log *slog.Logger, slackClient *messaging.Client, table *correlation.Table, rc *boot.RuntimeConfig) *inbound.Handler {
	return inbound.NewHandler(log, slackClient, table, slackClient, rc.PrepChannelID)
}
