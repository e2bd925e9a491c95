package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"

	"github.com/memohai/meetprep/internal/calendar"
	"github.com/memohai/meetprep/internal/correlation"
	"github.com/memohai/meetprep/internal/glean"
	"github.com/memohai/meetprep/internal/messaging"
	"github.com/memohai/meetprep/internal/users"
)

type Poster interface {
	PostMessage(ctx context.Context, channelID, text string, blocks ...slack.Block) (string, error)
}

type DirectSender interface {
	SendDirect(ctx context.Context, userID, text string, blocks ...slack.Block) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, title string, attendees []calendar.Attendee) (glean.Prep, error)
}

// ChannelDispatcher asks the assistant bot for prep in the shared channel and
// remembers which user the request was posted for.
type ChannelDispatcher struct {
	poster    Poster
	table     *correlation.Table
	channelID string
	mention   string
	logger    *slog.Logger
}

func NewChannelDispatcher(log *slog.Logger, poster Poster, table *correlation.Table, channelID, mention string) *ChannelDispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &ChannelDispatcher{
		poster:    poster,
		table:     table,
		channelID: channelID,
		mention:   mention,
		logger:    log.With(slog.String("dispatcher", "channel")),
	}
}

// RequestText is the message the assistant bot is asked to answer.
func RequestText(mention string, m calendar.Meeting) string {
	return fmt.Sprintf("%s Prep for meeting: '%s' with attendees: %s",
		mention, m.Title, strings.Join(m.AttendeeEmails(), ", "))
}

func (d *ChannelDispatcher) Dispatch(ctx context.Context, u users.User, m calendar.Meeting) error {
	ts, err := d.poster.PostMessage(ctx, d.channelID, RequestText(d.mention, m))
	if err != nil {
		return err
	}
	if ts == "" {
		// Posted, but a reply can never be matched.
		d.logger.Warn("prep request posted without timestamp", slog.String("meeting_id", m.ID))
		return nil
	}
	d.table.Track(ts, correlation.Pending{
		UserID:       u.SlackUserID,
		MeetingID:    m.ID,
		MeetingTitle: m.Title,
	})
	d.logger.Info("prep request posted",
		slog.String("user_id", u.SlackUserID), slog.String("meeting_id", m.ID), slog.String("ts", ts))
	return nil
}

// DirectDispatcher fetches prep from the assistant API and sends it privately.
type DirectDispatcher struct {
	assistant Summarizer
	sender    DirectSender
	logger    *slog.Logger
}

func NewDirectDispatcher(log *slog.Logger, assistant Summarizer, sender DirectSender) *DirectDispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &DirectDispatcher{
		assistant: assistant,
		sender:    sender,
		logger:    log.With(slog.String("dispatcher", "direct")),
	}
}

func (d *DirectDispatcher) Dispatch(ctx context.Context, u users.User, m calendar.Meeting) error {
	prep, err := d.assistant.Summarize(ctx, m.Title, m.Attendees)
	if err != nil {
		return fmt.Errorf("summarize %q: %w", m.Title, err)
	}
	blocks := messaging.PrepBlocks(messaging.PrepContent{
		Title:     m.Title,
		Summary:   prep.Summary,
		Notes:     prep.Notes,
		Questions: prep.Questions,
		Link:      m.Link,
	})
	if _, err := d.sender.SendDirect(ctx, u.SlackUserID, "Here's your prep for "+m.Title, blocks...); err != nil {
		return err
	}
	return nil
}
