package handlers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/slack-go/slack"
)

const maxSlackBody = 1 << 20

// readVerifiedBody reads the request body and checks Slack's request
// signature. The body is restored so form parsing still works.
func readVerifiedBody(c echo.Context, signingSecret string) ([]byte, error) {
	req := c.Request()
	body, err := io.ReadAll(io.LimitReader(req.Body, maxSlackBody))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "read body failed")
	}
	req.Body = io.NopCloser(bytes.NewReader(body))

	sv, err := slack.NewSecretsVerifier(req.Header, signingSecret)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid slack signature")
	}
	if _, err := sv.Write(body); err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid slack signature")
	}
	if err := sv.Ensure(); err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid slack signature")
	}
	return body, nil
}
