package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/memohai/meetprep/internal/oauth"
	"github.com/memohai/meetprep/internal/users"
)

// GoogleOAuthHandler completes the calendar authorization in the browser.
type GoogleOAuthHandler struct {
	authorizer Authorizer
	users      UserDirectory
	messenger  Messenger
	logger     *slog.Logger
}

func NewGoogleOAuthHandler(log *slog.Logger, authorizer Authorizer, directory UserDirectory, messenger Messenger) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		authorizer: authorizer,
		users:      directory,
		messenger:  messenger,
		logger:     log.With(slog.String("handler", "google_oauth")),
	}
}

func (h *GoogleOAuthHandler) Register(e *echo.Echo) {
	e.GET("/google_oauth_callback", h.Callback)
}

// Callback exchanges the code, stores the credential and tells the user in Slack.
func (h *GoogleOAuthHandler) Callback(c echo.Context) error {
	if reason := strings.TrimSpace(c.QueryParam("error")); reason != "" {
		h.logger.Warn("authorization declined", slog.String("reason", reason))
		return c.String(http.StatusBadRequest, "Google Calendar access was not granted.")
	}
	code := strings.TrimSpace(c.QueryParam("code"))
	state := strings.TrimSpace(c.QueryParam("state"))
	if code == "" || state == "" {
		return c.String(http.StatusBadRequest, "Invalid Google OAuth callback.")
	}
	slackUserID, err := h.authorizer.VerifyState(state)
	if err != nil {
		h.logger.Warn("rejected oauth state", slog.Any("error", err))
		return c.String(http.StatusBadRequest, "Invalid Google OAuth callback.")
	}

	ctx := c.Request().Context()
	log := h.logger.With(slog.String("user_id", slackUserID))
	if err := h.connect(ctx, slackUserID, code); err != nil {
		log.Error("calendar connection failed", slog.Any("error", err))
		notice := "An unexpected error occurred during Google Calendar connection."
		body := "An error occurred during Google Calendar connection."
		switch {
		case errors.Is(err, oauth.ErrNoRefreshToken):
			notice = "Failed to get a refresh token from Google. Please try connecting again."
			body = "Failed to connect Google Calendar."
		case errors.Is(err, users.ErrGoogleAccountUsed):
			notice = "That Google account is already connected to another Slack user."
			body = "Failed to connect Google Calendar."
		}
		h.notify(ctx, slackUserID, notice)
		return c.String(http.StatusInternalServerError, body)
	}

	h.notify(ctx, slackUserID, "Google Calendar connected successfully!")
	return c.String(http.StatusOK, "Google Calendar connected successfully! You can close this tab.")
}

func (h *GoogleOAuthHandler) connect(ctx context.Context, slackUserID, code string) error {
	cred, err := h.authorizer.Exchange(ctx, code)
	if err != nil {
		return err
	}
	slackEmail, err := h.messenger.LookupEmail(ctx, slackUserID)
	if err != nil {
		return err
	}
	_, err = h.users.SaveCredential(ctx, users.SaveCredentialRequest{
		SlackUserID:  slackUserID,
		SlackEmail:   slackEmail,
		GoogleEmail:  cred.GoogleEmail,
		RefreshToken: cred.RefreshToken,
		TokenExpiry:  cred.Expiry,
	})
	return err
}

func (h *GoogleOAuthHandler) notify(ctx context.Context, slackUserID, text string) {
	if _, err := h.messenger.SendDirect(ctx, slackUserID, text); err != nil {
		h.logger.Error("send connection notice failed", slog.String("user_id", slackUserID), slog.Any("error", err))
	}
}
