// Package ledger records which (user, meeting) reminders were already delivered.
//
// The sent_notifications primary key is the only guard: inserts are idempotent
// and there is no application-level lock.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/memohai/meetprep/internal/db/sqlc"
)

var ErrInvalidKey = errors.New("user id and meeting id are required")

// Store is the subset of generated queries the ledger needs.
type Store interface {
	NotificationExists(ctx context.Context, arg sqlc.NotificationExistsParams) (bool, error)
	InsertSentNotification(ctx context.Context, arg sqlc.InsertSentNotificationParams) (int64, error)
}

type Ledger struct {
	store  Store
	logger *slog.Logger
}

func New(log *slog.Logger, store Store) *Ledger {
	if log == nil {
		log = slog.Default()
	}
	return &Ledger{
		store:  store,
		logger: log.With(slog.String("service", "ledger")),
	}
}

// HasBeenSent reports whether a reminder for the pair was recorded. It fails
// closed: any storage error is logged and reported as already sent.
func (l *Ledger) HasBeenSent(ctx context.Context, userID, meetingID string) bool {
	userID, meetingID = strings.TrimSpace(userID), strings.TrimSpace(meetingID)
	if userID == "" || meetingID == "" || l.store == nil {
		l.logger.Error("ledger lookup not possible, treating as sent",
			slog.String("user_id", userID), slog.String("meeting_id", meetingID))
		return true
	}
	sent, err := l.store.NotificationExists(ctx, sqlc.NotificationExistsParams{
		SlackUserID: userID,
		EventID:     meetingID,
	})
	if err != nil {
		l.logger.Error("ledger lookup failed, treating as sent",
			slog.String("user_id", userID), slog.String("meeting_id", meetingID), slog.Any("error", err))
		return true
	}
	return sent
}

// RecordSent stores the pair. Recording an existing pair is a no-op.
func (l *Ledger) RecordSent(ctx context.Context, userID, meetingID string) error {
	userID, meetingID = strings.TrimSpace(userID), strings.TrimSpace(meetingID)
	if userID == "" || meetingID == "" {
		return ErrInvalidKey
	}
	if l.store == nil {
		return errors.New("ledger store not configured")
	}
	n, err := l.store.InsertSentNotification(ctx, sqlc.InsertSentNotificationParams{
		SlackUserID: userID,
		EventID:     meetingID,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		l.logger.Debug("notification already recorded", slog.String("user_id", userID), slog.String("meeting_id", meetingID))
	}
	return nil
}
