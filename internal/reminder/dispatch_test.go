package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/meetprep/internal/calendar"
	"github.com/memohai/meetprep/internal/correlation"
	"github.com/memohai/meetprep/internal/glean"
	"github.com/memohai/meetprep/internal/users"
)

type fakePoster struct {
	channel string
	text    string
	blocks  []slack.Block
	ts      string
	err     error
}

func (p *fakePoster) PostMessage(_ context.Context, channelID, text string, blocks ...slack.Block) (string, error) {
	p.channel, p.text, p.blocks = channelID, text, blocks
	return p.ts, p.err
}

func (p *fakePoster) SendDirect(ctx context.Context, userID, text string, blocks ...slack.Block) (string, error) {
	return p.PostMessage(ctx, userID, text, blocks...)
}

type fakeSummarizer struct {
	prep glean.Prep
	err  error
}

func (f fakeSummarizer) Summarize(context.Context, string, []calendar.Attendee) (glean.Prep, error) {
	return f.prep, f.err
}

var sampleMeeting = calendar.Meeting{
	ID:    "evt-1",
	Title: "Q3 Review",
	Start: testNow.Add(2 * time.Hour),
	Attendees: []calendar.Attendee{
		{Email: "john@company.com", DisplayName: "John"},
		{DisplayName: "Room 4"},
		{Email: "jane@company.com"},
	},
}

func TestChannelDispatcherPostsAndTracks(t *testing.T) {
	poster := &fakePoster{ts: "1719835200.000100"}
	table := correlation.New()
	d := NewChannelDispatcher(nil, poster, table, "C093W3B7F9T", "@Glean")

	require.NoError(t, d.Dispatch(context.Background(), users.User{SlackUserID: "U1"}, sampleMeeting))

	assert.Equal(t, "C093W3B7F9T", poster.channel)
	assert.Equal(t, "@Glean Prep for meeting: 'Q3 Review' with attendees: john@company.com, jane@company.com", poster.text)

	pending, ok := table.Resolve("1719835200.000100")
	require.True(t, ok)
	assert.Equal(t, "U1", pending.UserID)
	assert.Equal(t, "evt-1", pending.MeetingID)
	assert.Equal(t, "Q3 Review", pending.MeetingTitle)
}

func TestChannelDispatcherPostFailure(t *testing.T) {
	poster := &fakePoster{err: errors.New("not_in_channel")}
	table := correlation.New()
	d := NewChannelDispatcher(nil, poster, table, "C1", "@Glean")

	err := d.Dispatch(context.Background(), users.User{SlackUserID: "U1"}, sampleMeeting)
	assert.ErrorContains(t, err, "not_in_channel")
	assert.Zero(t, table.Len())
}

func TestDirectDispatcherSendsPrep(t *testing.T) {
	sender := &fakePoster{ts: "1.2"}
	assistant := fakeSummarizer{prep: glean.Prep{Summary: "Numbers are up", Questions: []string{"Hiring plan?"}}}
	d := NewDirectDispatcher(nil, assistant, sender)

	require.NoError(t, d.Dispatch(context.Background(), users.User{SlackUserID: "U1"}, sampleMeeting))
	assert.Equal(t, "U1", sender.channel)
	assert.Equal(t, "Here's your prep for Q3 Review", sender.text)
	assert.NotEmpty(t, sender.blocks)
}

func TestDirectDispatcherSummarizeFailure(t *testing.T) {
	sender := &fakePoster{}
	d := NewDirectDispatcher(nil, fakeSummarizer{err: errors.New("timeout")}, sender)

	err := d.Dispatch(context.Background(), users.User{SlackUserID: "U1"}, sampleMeeting)
	assert.ErrorContains(t, err, "timeout")
	assert.Empty(t, sender.channel, "nothing sent when the assistant fails")
}
