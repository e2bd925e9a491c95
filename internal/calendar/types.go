package calendar

import (
	"time"
)

// Event statuses and attendee response statuses used by the provider.
const (
	StatusCancelled = "cancelled"

	ResponseAccepted    = "accepted"
	ResponseTentative   = "tentative"
	ResponseNeedsAction = "needsAction"
	ResponseDeclined    = "declined"
)

// DefaultTitle is used when an event has no summary.
const DefaultTitle = "No Title"

// EventTime is a provider timestamp: either a precise RFC 3339 DateTime or a date-only value.
type EventTime struct {
	DateTime string
	Date     string
}

// RawAttendee is an attendee entry as returned by the provider.
type RawAttendee struct {
	Email          string
	DisplayName    string
	ResponseStatus string
	Self           bool
}

// RawEvent is a calendar event before filtering.
type RawEvent struct {
	ID             string
	Title          string
	Status         string
	Start          EventTime
	End            EventTime
	Attendees      []RawAttendee
	CreatorEmail   string
	CreatorSelf    bool
	OrganizerEmail string
	OrganizerSelf  bool
	Link           string
}

// Attendee is an (email, display name) pair on a Meeting.
type Attendee struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Meeting is a due calendar event, normalized to UTC.
type Meeting struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	AllDay    bool       `json:"all_day,omitempty"`
	Attendees []Attendee `json:"attendees"`
	Link      string     `json:"link,omitempty"`
}

// AttendeeEmails returns the non-empty attendee emails in order.
func (m Meeting) AttendeeEmails() []string {
	out := make([]string, 0, len(m.Attendees))
	for _, a := range m.Attendees {
		if a.Email != "" {
			out = append(out, a.Email)
		}
	}
	return out
}

// Participant identifies whose calendar is being filtered.
type Participant struct {
	Email string
}
