package handlers

import (
	"context"

	"github.com/slack-go/slack"

	"github.com/memohai/meetprep/internal/calendar"
	"github.com/memohai/meetprep/internal/glean"
	"github.com/memohai/meetprep/internal/inbound"
	"github.com/memohai/meetprep/internal/oauth"
	"github.com/memohai/meetprep/internal/users"
)

// UserDirectory reads and stores calendar credentials.
type UserDirectory interface {
	Get(ctx context.Context, slackUserID string) (users.User, error)
	SaveCredential(ctx context.Context, req users.SaveCredentialRequest) (users.User, error)
}

// Messenger is the Slack surface the handlers talk back through.
type Messenger interface {
	SendDirect(ctx context.Context, userID, text string, blocks ...slack.Block) (string, error)
	LookupEmail(ctx context.Context, userID string) (string, error)
}

// Authorizer drives the Google consent flow.
type Authorizer interface {
	AuthURL(slackUserID string) (string, error)
	VerifyState(state string) (string, error)
	Exchange(ctx context.Context, code string) (oauth.Credential, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, title string, attendees []calendar.Attendee) (glean.Prep, error)
}

type MessageRouter interface {
	HandleMessage(ctx context.Context, msg inbound.Message) (inbound.Outcome, error)
}

// spawn runs slow work after Slack has been acknowledged.
type spawner func(func())

func goSpawn(f func()) { go f() }
