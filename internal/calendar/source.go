package calendar

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/memohai/meetprep/internal/users"
)

// EventFetcher is the calendar provider contract.
type EventFetcher interface {
	FetchEvents(ctx context.Context, refreshToken string, w Window) ([]RawEvent, error)
}

// Source combines a provider with the window filter.
type Source struct {
	fetcher     EventFetcher
	windowHours int
	logger      *slog.Logger
}

func NewSource(log *slog.Logger, fetcher EventFetcher, windowHours int) *Source {
	if log == nil {
		log = slog.Default()
	}
	return &Source{
		fetcher:     fetcher,
		windowHours: windowHours,
		logger:      log.With(slog.String("service", "calendar")),
	}
}

// DueMeetings fetches the user's events for the window starting at now and
// returns the due ones in provider order.
func (s *Source) DueMeetings(ctx context.Context, u users.User, now time.Time) (iter.Seq[Meeting], error) {
	w := NewWindow(now, s.windowHours)
	events, err := s.fetcher.FetchEvents(ctx, u.RefreshToken, w)
	if err != nil {
		return nil, err
	}
	log := s.logger.With(slog.String("user_id", u.SlackUserID))
	return FilterDue(events, Participant{Email: u.GoogleEmail}, w, log), nil
}
