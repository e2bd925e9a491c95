// Package glean calls the knowledge assistant's meeting prep endpoint.
package glean

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/memohai/meetprep/internal/calendar"
)

const (
	MeetingPrepPath = "/meeting_prep"
	DefaultSummary  = "No summary available from Glean."
)

var ErrNotConfigured = errors.New("glean api key not configured")

// Prep is the assistant's preparation material for one meeting.
type Prep struct {
	Summary   string   `json:"summary"`
	Notes     []string `json:"prep_notes"`
	Questions []string `json:"questions"`
}

type prepRequest struct {
	MeetingTitle string         `json:"meeting_title"`
	Attendees    []prepAttendee `json:"attendees"`
}

type prepAttendee struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type prepResponse struct {
	Summary   *string  `json:"summary"`
	Notes     []string `json:"prep_notes"`
	Questions []string `json:"questions"`
}

type Client struct {
	apiKey  string
	baseURL string
	logger  *slog.Logger
	http    *http.Client
}

// NewClient builds a client; a non-positive timeout defaults to 30 seconds.
func NewClient(log *slog.Logger, baseURL, apiKey string, timeout time.Duration) *Client {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		logger:  log.With(slog.String("client", "glean")),
		http:    &http.Client{Timeout: timeout},
	}
}

// Summarize requests prep material for the meeting. A response without a
// summary gets DefaultSummary.
func (c *Client) Summarize(ctx context.Context, title string, attendees []calendar.Attendee) (Prep, error) {
	if c.apiKey == "" {
		return Prep{}, ErrNotConfigured
	}
	body := prepRequest{
		MeetingTitle: title,
		Attendees:    make([]prepAttendee, 0, len(attendees)),
	}
	for _, a := range attendees {
		body.Attendees = append(body.Attendees, prepAttendee{Email: a.Email, Name: a.DisplayName})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Prep{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+MeetingPrepPath, bytes.NewReader(payload))
	if err != nil {
		return Prep{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Prep{}, fmt.Errorf("glean meeting prep: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("close response body failed", slog.Any("error", err))
		}
	}()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Prep{}, fmt.Errorf("glean meeting prep: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed prepResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Prep{}, fmt.Errorf("glean meeting prep: decode: %w", err)
	}
	prep := Prep{
		Summary:   DefaultSummary,
		Notes:     parsed.Notes,
		Questions: parsed.Questions,
	}
	if parsed.Summary != nil {
		prep.Summary = *parsed.Summary
	}
	c.logger.Debug("meeting prep received", slog.String("title", title), slog.Int("notes", len(prep.Notes)))
	return prep, nil
}
