// Package calendar fetches calendar events and selects the meetings due for a reminder.
package calendar

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"
)

var ErrMissingStart = errors.New("event has no start time")

const dateLayout = "2006-01-02"

// FilterDue lazily yields the events that are due: not cancelled, starting
// inside w, and attended by who. Events with an unparseable start are logged
// and skipped.
func FilterDue(events []RawEvent, who Participant, w Window, log *slog.Logger) iter.Seq[Meeting] {
	if log == nil {
		log = slog.Default()
	}
	return func(yield func(Meeting) bool) {
		for _, ev := range events {
			if strings.EqualFold(ev.Status, StatusCancelled) {
				continue
			}
			start, allDay, err := parseEventTime(ev.Start)
			if err != nil {
				if !errors.Is(err, ErrMissingStart) {
					log.Warn("skip event with malformed start",
						slog.String("event_id", ev.ID), slog.Any("error", err))
				}
				continue
			}
			if !w.Contains(start) {
				continue
			}
			if !attends(ev, who) {
				continue
			}
			if !yield(toMeeting(ev, start, allDay)) {
				return
			}
		}
	}
}

// parseEventTime resolves a provider timestamp. Date-only values start at midnight UTC.
func parseEventTime(t EventTime) (time.Time, bool, error) {
	if dt := strings.TrimSpace(t.DateTime); dt != "" {
		parsed, err := time.Parse(time.RFC3339, dt)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("parse date-time %q: %w", dt, err)
		}
		return parsed.UTC(), false, nil
	}
	if d := strings.TrimSpace(t.Date); d != "" {
		parsed, err := time.ParseInLocation(dateLayout, d, time.UTC)
		if err != nil {
			return time.Time{}, true, fmt.Errorf("parse date %q: %w", d, err)
		}
		return parsed, true, nil
	}
	return time.Time{}, false, ErrMissingStart
}

func attends(ev RawEvent, who Participant) bool {
	if len(ev.Attendees) == 0 {
		return ev.CreatorSelf || ev.OrganizerSelf ||
			sameEmail(ev.CreatorEmail, who.Email) || sameEmail(ev.OrganizerEmail, who.Email)
	}
	for _, a := range ev.Attendees {
		if !a.Self && !sameEmail(a.Email, who.Email) {
			continue
		}
		switch a.ResponseStatus {
		case ResponseAccepted, ResponseTentative, ResponseNeedsAction:
			return true
		}
		return false
	}
	return false
}

func sameEmail(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

func toMeeting(ev RawEvent, start time.Time, allDay bool) Meeting {
	end, _, err := parseEventTime(ev.End)
	if err != nil || end.Before(start) {
		end = start
	}
	title := strings.TrimSpace(ev.Title)
	if title == "" {
		title = DefaultTitle
	}
	attendees := make([]Attendee, 0, len(ev.Attendees))
	for _, a := range ev.Attendees {
		if strings.TrimSpace(a.Email) == "" {
			continue
		}
		attendees = append(attendees, Attendee{Email: a.Email, DisplayName: a.DisplayName})
	}
	return Meeting{
		ID:        ev.ID,
		Title:     title,
		Start:     start,
		End:       end,
		AllDay:    allDay,
		Attendees: attendees,
		Link:      ev.Link,
	}
}
