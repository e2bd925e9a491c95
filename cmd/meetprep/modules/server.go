package modules

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/memohai/meetprep/internal/boot"
	"github.com/memohai/meetprep/internal/glean"
	"github.com/memohai/meetprep/internal/handlers"
	"github.com/memohai/meetprep/internal/inbound"
	"github.com/memohai/meetprep/internal/messaging"
	"github.com/memohai/meetprep/internal/oauth"
	"github.com/memohai/meetprep/internal/reminder"
	"github.com/memohai/meetprep/internal/server"
	"github.com/memohai/meetprep/internal/users"
	"github.com/memohai/meetprep/internal/version"
)

var ServerModule = fx.Module(
	"server",
	fx.Provide(
		provideServerHandler(handlers.NewPingHandler),
		provideServerHandler(provideSlackEventsHandler),
		provideServerHandler(provideSlackCommandsHandler),
		provideServerHandler(provideGoogleOAuthHandler),
		provideServer,
	),
	fx.Invoke(startReminder, startServer),
)

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideSlackEventsHandler(log *slog.Logger, rc *boot.RuntimeConfig, router *inbound.Handler, userService *users.Service, slackClient *messaging.Client, flow *oauth.Flow) *handlers.SlackEventsHandler {
	return handlers.NewSlackEventsHandler(log, rc.SigningSecret, router, userService, slackClient, flow)
}

func provideSlackCommandsHandler(log *slog.Logger, rc *boot.RuntimeConfig, userService *users.Service, gleanClient *glean.Client, slackClient *messaging.Client) *handlers.SlackCommandsHandler {
	return handlers.NewSlackCommandsHandler(log, rc.SigningSecret, userService, gleanClient, slackClient)
}

func provideGoogleOAuthHandler(log *slog.Logger, flow *oauth.Flow, userService *users.Service, slackClient *messaging.Client) *handlers.GoogleOAuthHandler {
	return handlers.NewGoogleOAuthHandler(log, flow, userService, slackClient)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	RuntimeConfig  *boot.RuntimeConfig
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.RuntimeConfig.ServerAddr, params.ServerHandlers...)
}

func startReminder(lc fx.Lifecycle, svc *reminder.Service) {
	lc.Append(fx.Hook{
		OnStart: svc.Start,
		OnStop:  svc.Stop,
	})
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, slackClient *messaging.Client, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting meetprep", slog.String("version", version.GetInfo()))
			// Resolve the bot identity early so a bad token shows up at boot.
			if _, err := slackClient.Identity(ctx); err != nil {
				logger.Warn("slack auth.test failed", slog.Any("error", err))
			}
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Stop(ctx)
		},
	})
}
