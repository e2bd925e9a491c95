package reminder

import (
	"context"
	"iter"
	"time"

	"github.com/memohai/meetprep/internal/calendar"
	"github.com/memohai/meetprep/internal/users"
)

// Status is the outcome of one meeting within a run.
type Status string

const (
	StatusDispatched  Status = "dispatched"
	StatusAlreadySent Status = "already_sent"
	StatusFailed      Status = "failed"
)

type UserLister interface {
	ListAuthorized(ctx context.Context) ([]users.User, error)
}

type MeetingSource interface {
	DueMeetings(ctx context.Context, u users.User, now time.Time) (iter.Seq[calendar.Meeting], error)
}

type Ledger interface {
	HasBeenSent(ctx context.Context, userID, meetingID string) bool
	RecordSent(ctx context.Context, userID, meetingID string) error
}

// Dispatcher emits the prep request for one due meeting.
type Dispatcher interface {
	Dispatch(ctx context.Context, u users.User, m calendar.Meeting) error
}

// Report is the result of one scheduler run.
type Report struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Users      []UserResult `json:"users"`
}

// UserResult carries the per-user outcome. Err is set when the user's
// calendar could not be read; no meetings are attempted in that case.
type UserResult struct {
	UserID   string          `json:"user_id"`
	Err      error           `json:"-"`
	Error    string          `json:"error,omitempty"`
	Meetings []MeetingResult `json:"meetings,omitempty"`
}

// MeetingResult carries the outcome of one due meeting. RecordErr is set
// when the reminder went out but the ledger write failed.
type MeetingResult struct {
	MeetingID string `json:"meeting_id"`
	Title     string `json:"title"`
	Status    Status `json:"status"`
	Err       error  `json:"-"`
	RecordErr error  `json:"-"`
	Error     string `json:"error,omitempty"`
}

// Count returns the number of meetings with the given status across all users.
func (r Report) Count(status Status) int {
	n := 0
	for _, u := range r.Users {
		for _, m := range u.Meetings {
			if m.Status == status {
				n++
			}
		}
	}
	return n
}

// FailedUsers returns the ids of users whose calendar could not be read.
func (r Report) FailedUsers() []string {
	var out []string
	for _, u := range r.Users {
		if u.Err != nil {
			out = append(out, u.UserID)
		}
	}
	return out
}
