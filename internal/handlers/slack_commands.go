package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/slack-go/slack"

	"github.com/memohai/meetprep/internal/calendar"
	"github.com/memohai/meetprep/internal/messaging"
	"github.com/memohai/meetprep/internal/users"
)

const PrepCommand = "/glean-prep"

// SlackCommandsHandler serves slash commands. Only /glean-prep is known.
type SlackCommandsHandler struct {
	signingSecret string
	users         UserDirectory
	assistant     Summarizer
	messenger     Messenger
	spawn         spawner
	logger        *slog.Logger
}

func NewSlackCommandsHandler(log *slog.Logger, signingSecret string, directory UserDirectory, assistant Summarizer, messenger Messenger) *SlackCommandsHandler {
	return &SlackCommandsHandler{
		signingSecret: signingSecret,
		users:         directory,
		assistant:     assistant,
		messenger:     messenger,
		spawn:         goSpawn,
		logger:        log.With(slog.String("handler", "slack_commands")),
	}
}

func (h *SlackCommandsHandler) Register(e *echo.Echo) {
	e.POST("/slack/commands", h.Handle)
}

func ephemeral(c echo.Context, text string) error {
	return c.JSON(http.StatusOK, slack.Msg{ResponseType: slack.ResponseTypeEphemeral, Text: text})
}

// Handle answers at once and delivers the prep as a private message.
func (h *SlackCommandsHandler) Handle(c echo.Context) error {
	if _, err := readVerifiedBody(c, h.signingSecret); err != nil {
		return err
	}
	cmd, err := slack.SlashCommandParse(c.Request())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid command payload")
	}
	if cmd.Command != PrepCommand {
		return ephemeral(c, fmt.Sprintf("Unknown command %s.", cmd.Command))
	}

	title := strings.TrimSpace(cmd.Text)
	if title == "" {
		return ephemeral(c, "Please provide a meeting title, e.g., `/glean-prep Q3 Review`")
	}
	ctx := c.Request().Context()
	u, err := h.users.Get(ctx, cmd.UserID)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		h.logger.Error("load user failed", slog.String("user_id", cmd.UserID), slog.Any("error", err))
		return ephemeral(c, "Something went wrong, please try again.")
	}
	if err != nil || !u.Authorized() {
		return ephemeral(c, "Please connect your Google Calendar first via my App Home.")
	}

	workCtx := context.WithoutCancel(ctx)
	h.spawn(func() { h.prepare(workCtx, u, title) })
	return ephemeral(c, fmt.Sprintf("Searching Glean for prep info on '%s'...", title))
}

func (h *SlackCommandsHandler) prepare(ctx context.Context, u users.User, title string) {
	ctx, cancel := context.WithTimeout(ctx, eventWorkTimeout)
	defer cancel()
	log := h.logger.With(slog.String("user_id", u.SlackUserID))

	self := []calendar.Attendee{{Email: u.GoogleEmail, DisplayName: "Self"}}
	prep, err := h.assistant.Summarize(ctx, title, self)
	if err != nil {
		log.Error("on-demand prep failed", slog.String("title", title), slog.Any("error", err))
		if _, err := h.messenger.SendDirect(ctx, u.SlackUserID, fmt.Sprintf("Sorry, I couldn't get prep info for '%s' from Glean.", title)); err != nil {
			log.Error("send failure notice failed", slog.Any("error", err))
		}
		return
	}
	blocks := messaging.PrepBlocks(messaging.PrepContent{
		Title:     title,
		Summary:   prep.Summary,
		Notes:     prep.Notes,
		Questions: prep.Questions,
	})
	if _, err := h.messenger.SendDirect(ctx, u.SlackUserID, "Here's your prep for "+title, blocks...); err != nil {
		log.Error("send prep failed", slog.Any("error", err))
	}
}
