package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var ErrCredentialRefresh = errors.New("calendar credential refresh failed")

const primaryCalendar = "primary"

// GoogleProvider reads the primary Google calendar of a user holding a refresh token.
type GoogleProvider struct {
	oauth   *oauth2.Config
	options []option.ClientOption
	logger  *slog.Logger
}

// NewGoogleProvider builds a provider; options are appended to every calendar client (tests point them at a fake endpoint).
func NewGoogleProvider(log *slog.Logger, oauthCfg *oauth2.Config, options ...option.ClientOption) *GoogleProvider {
	if log == nil {
		log = slog.Default()
	}
	return &GoogleProvider{
		oauth:   oauthCfg,
		options: options,
		logger:  log.With(slog.String("provider", "google_calendar")),
	}
}

// FetchEvents returns the raw events overlapping w. The API treats timeMax as
// exclusive, so one second is added to keep the window's upper bound inclusive.
func (p *GoogleProvider) FetchEvents(ctx context.Context, refreshToken string, w Window) ([]RawEvent, error) {
	if p.oauth == nil {
		return nil, errors.New("google oauth not configured")
	}
	if strings.TrimSpace(refreshToken) == "" {
		return nil, fmt.Errorf("%w: empty refresh token", ErrCredentialRefresh)
	}
	token, err := p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCredentialRefresh, err)
	}

	opts := append([]option.ClientOption{option.WithTokenSource(oauth2.StaticTokenSource(token))}, p.options...)
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar client: %w", err)
	}

	call := svc.Events.List(primaryCalendar).
		TimeMin(w.From.Format(time.RFC3339)).
		TimeMax(w.To.Add(time.Second).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	var events []RawEvent
	err = call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			if item == nil {
				continue
			}
			events = append(events, fromGoogleEvent(item))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	p.logger.Debug("events fetched", slog.Int("count", len(events)))
	return events, nil
}

func fromGoogleEvent(item *gcal.Event) RawEvent {
	ev := RawEvent{
		ID:     item.Id,
		Title:  item.Summary,
		Status: item.Status,
		Link:   item.HtmlLink,
	}
	if item.Start != nil {
		ev.Start = EventTime{DateTime: item.Start.DateTime, Date: item.Start.Date}
	}
	if item.End != nil {
		ev.End = EventTime{DateTime: item.End.DateTime, Date: item.End.Date}
	}
	if item.Creator != nil {
		ev.CreatorEmail = item.Creator.Email
		ev.CreatorSelf = item.Creator.Self
	}
	if item.Organizer != nil {
		ev.OrganizerEmail = item.Organizer.Email
		ev.OrganizerSelf = item.Organizer.Self
	}
	for _, a := range item.Attendees {
		if a == nil {
			continue
		}
		ev.Attendees = append(ev.Attendees, RawAttendee{
			Email:          a.Email,
			DisplayName:    a.DisplayName,
			ResponseStatus: a.ResponseStatus,
			Self:           a.Self,
		})
	}
	return ev
}
