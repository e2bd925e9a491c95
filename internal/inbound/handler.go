// Package inbound routes the assistant's threaded replies in the prep channel
// back to the user the request was posted for.
package inbound

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"

	"github.com/memohai/meetprep/internal/correlation"
	"github.com/memohai/meetprep/internal/messaging"
)

// Outcome describes what HandleMessage did with a message.
type Outcome string

const (
	OutcomeIgnoredSelf        Outcome = "ignored_self"
	OutcomeIgnoredSubtype     Outcome = "ignored_subtype"
	OutcomeIgnoredNotThreaded Outcome = "ignored_not_threaded"
	OutcomeIgnoredChannel     Outcome = "ignored_channel"
	OutcomeNoMatch            Outcome = "no_match"
	OutcomeDelivered          Outcome = "delivered"
)

// Message is a channel message event reduced to the fields routing needs.
type Message struct {
	Channel  string
	User     string
	BotID    string
	SubType  string
	Text     string
	TS       string
	ThreadTS string
}

// Threaded reports whether the message is a reply inside a thread.
func (m Message) Threaded() bool {
	return m.ThreadTS != "" && m.ThreadTS != m.TS
}

type IdentityResolver interface {
	Identity(ctx context.Context) (messaging.BotIdentity, error)
}

type DirectSender interface {
	SendDirect(ctx context.Context, userID, text string, blocks ...slack.Block) (string, error)
}

type Handler struct {
	identity  IdentityResolver
	table     *correlation.Table
	sender    DirectSender
	channelID string
	logger    *slog.Logger
}

func NewHandler(log *slog.Logger, identity IdentityResolver, table *correlation.Table, sender DirectSender, channelID string) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		identity:  identity,
		table:     table,
		sender:    sender,
		channelID: strings.TrimSpace(channelID),
		logger:    log.With(slog.String("service", "inbound")),
	}
}

// FormatReply renders the forwarded assistant answer.
func FormatReply(title, text string) string {
	return fmt.Sprintf("*Meeting prep for: %s*\n\n%s", title, text)
}

// HandleMessage forwards a qualifying threaded reply. Only identity lookup
// and delivery failures are errors; a table miss is a silent no-op. The table
// entry is consumed before delivery, so a failed delivery is not retried.
func (h *Handler) HandleMessage(ctx context.Context, msg Message) (Outcome, error) {
	switch msg.SubType {
	case "message_changed", "message_deleted", "channel_join", "channel_leave":
		return OutcomeIgnoredSubtype, nil
	}
	self, err := h.identity.Identity(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve bot identity: %w", err)
	}
	if (self.UserID != "" && msg.User == self.UserID) || (self.BotID != "" && msg.BotID == self.BotID) {
		return OutcomeIgnoredSelf, nil
	}
	if !msg.Threaded() {
		return OutcomeIgnoredNotThreaded, nil
	}
	if msg.Channel != h.channelID {
		return OutcomeIgnoredChannel, nil
	}

	pending, ok := h.table.Resolve(msg.ThreadTS)
	if !ok {
		h.logger.Debug("thread reply without pending request", slog.String("thread_ts", msg.ThreadTS))
		return OutcomeNoMatch, nil
	}

	if _, err := h.sender.SendDirect(ctx, pending.UserID, FormatReply(pending.MeetingTitle, msg.Text)); err != nil {
		h.logger.Error("forward prep reply failed",
			slog.String("user_id", pending.UserID), slog.String("meeting_id", pending.MeetingID), slog.Any("error", err))
		return "", fmt.Errorf("forward reply to %s: %w", pending.UserID, err)
	}
	h.logger.Info("prep reply forwarded",
		slog.String("user_id", pending.UserID), slog.String("meeting_id", pending.MeetingID))
	return OutcomeDelivered, nil
}
