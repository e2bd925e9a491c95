package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/slack-go/slack/slackevents"

	"github.com/memohai/meetprep/internal/inbound"
	"github.com/memohai/meetprep/internal/messaging"
	"github.com/memohai/meetprep/internal/users"
)

const eventWorkTimeout = 30 * time.Second

// SlackEventsHandler serves the Events API endpoint.
type SlackEventsHandler struct {
	signingSecret string
	router        MessageRouter
	users         UserDirectory
	messenger     Messenger
	authorizer    Authorizer
	spawn         spawner
	logger        *slog.Logger
}

func NewSlackEventsHandler(log *slog.Logger, signingSecret string, router MessageRouter, directory UserDirectory, messenger Messenger, authorizer Authorizer) *SlackEventsHandler {
	return &SlackEventsHandler{
		signingSecret: signingSecret,
		router:        router,
		users:         directory,
		messenger:     messenger,
		authorizer:    authorizer,
		spawn:         goSpawn,
		logger:        log.With(slog.String("handler", "slack_events")),
	}
}

func (h *SlackEventsHandler) Register(e *echo.Echo) {
	e.POST("/slack/events", h.Handle)
}

// Handle acknowledges every verified event at once; message routing and
// welcome messages run afterwards.
func (h *SlackEventsHandler) Handle(c echo.Context) error {
	body, err := readVerifiedBody(c, h.signingSecret)
	if err != nil {
		return err
	}
	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event payload")
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid challenge")
		}
		return c.String(http.StatusOK, challenge.Challenge)
	case slackevents.CallbackEvent:
	default:
		return c.NoContent(http.StatusOK)
	}

	// Slack redelivers when the first ack was slow; the first delivery is already being handled.
	if c.Request().Header.Get("X-Slack-Retry-Num") != "" {
		return c.NoContent(http.StatusOK)
	}

	ctx := context.WithoutCancel(c.Request().Context())
	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		msg := inbound.Message{
			Channel:  ev.Channel,
			User:     ev.User,
			BotID:    ev.BotID,
			SubType:  ev.SubType,
			Text:     ev.Text,
			TS:       ev.TimeStamp,
			ThreadTS: ev.ThreadTimeStamp,
		}
		h.spawn(func() { h.routeMessage(ctx, msg) })
	case *slackevents.AppHomeOpenedEvent:
		userID := ev.User
		h.spawn(func() { h.welcome(ctx, userID) })
	}
	return c.NoContent(http.StatusOK)
}

func (h *SlackEventsHandler) routeMessage(ctx context.Context, msg inbound.Message) {
	ctx, cancel := context.WithTimeout(ctx, eventWorkTimeout)
	defer cancel()
	outcome, err := h.router.HandleMessage(ctx, msg)
	if err != nil {
		h.logger.Error("route message failed", slog.String("channel", msg.Channel), slog.Any("error", err))
		return
	}
	h.logger.Debug("message routed", slog.String("outcome", string(outcome)))
}

func (h *SlackEventsHandler) welcome(ctx context.Context, userID string) {
	ctx, cancel := context.WithTimeout(ctx, eventWorkTimeout)
	defer cancel()
	log := h.logger.With(slog.String("user_id", userID))

	u, err := h.users.Get(ctx, userID)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		log.Error("load user failed", slog.Any("error", err))
		return
	}
	if err == nil && u.Authorized() {
		if _, err := h.messenger.SendDirect(ctx, userID, "Welcome back! Your Google Calendar is connected."); err != nil {
			log.Error("send welcome failed", slog.Any("error", err))
		}
		return
	}

	authURL, err := h.authorizer.AuthURL(userID)
	if err != nil {
		log.Error("build auth url failed", slog.Any("error", err))
		return
	}
	if _, err := h.messenger.SendDirect(ctx, userID, "Welcome! Please connect your Google Calendar.", messaging.ConnectBlocks(authURL)...); err != nil {
		log.Error("send connect prompt failed", slog.Any("error", err))
	}
}
