// Package messaging wraps the Slack Web API calls the bot makes.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

var ErrEmptyMessage = errors.New("message text or blocks required")

// BotIdentity is the bot's own user and bot id, used for loop prevention.
type BotIdentity struct {
	UserID string
	BotID  string
}

type Client struct {
	api     *slack.Client
	limiter *rate.Limiter
	logger  *slog.Logger

	identityMu sync.Mutex
	identity   *BotIdentity
}

type Option func(*clientOptions)

type clientOptions struct {
	apiURL string
	every  time.Duration
	burst  int
}

// WithAPIURL points the client at another Web API base URL.
func WithAPIURL(url string) Option {
	return func(o *clientOptions) {
		url = strings.TrimSpace(url)
		if url == "" {
			return
		}
		if !strings.HasSuffix(url, "/") {
			url += "/"
		}
		o.apiURL = url
	}
}

// WithRateLimit caps outbound posts to one per every, with the given burst.
func WithRateLimit(every time.Duration, burst int) Option {
	return func(o *clientOptions) {
		if every > 0 {
			o.every = every
		}
		if burst > 0 {
			o.burst = burst
		}
	}
}

func NewClient(log *slog.Logger, token string, opts ...Option) *Client {
	if log == nil {
		log = slog.Default()
	}
	o := clientOptions{every: time.Second, burst: 3}
	for _, opt := range opts {
		opt(&o)
	}
	var slackOpts []slack.Option
	if o.apiURL != "" {
		slackOpts = append(slackOpts, slack.OptionAPIURL(o.apiURL))
	}
	return &Client{
		api:     slack.New(strings.TrimSpace(token), slackOpts...),
		limiter: rate.NewLimiter(rate.Every(o.every), o.burst),
		logger:  log.With(slog.String("client", "slack")),
	}
}

// PostMessage posts to a channel and returns the message timestamp.
func (c *Client) PostMessage(ctx context.Context, channelID, text string, blocks ...slack.Block) (string, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return "", errors.New("channel id is required")
	}
	if strings.TrimSpace(text) == "" && len(blocks) == 0 {
		return "", ErrEmptyMessage
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	options := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if len(blocks) > 0 {
		options = append(options, slack.MsgOptionBlocks(blocks...))
	}
	_, ts, err := c.api.PostMessageContext(ctx, channelID, options...)
	if err != nil {
		return "", fmt.Errorf("post message to %s: %w", channelID, err)
	}
	c.logger.Debug("message posted", slog.String("channel", channelID), slog.String("ts", ts))
	return ts, nil
}

// SendDirect delivers a private message to a user. Slack opens the IM
// channel when the user id is used as the channel.
func (c *Client) SendDirect(ctx context.Context, userID, text string, blocks ...slack.Block) (string, error) {
	return c.PostMessage(ctx, userID, text, blocks...)
}

// LookupEmail returns the profile email of a Slack user.
func (c *Client) LookupEmail(ctx context.Context, userID string) (string, error) {
	user, err := c.api.GetUserInfoContext(ctx, strings.TrimSpace(userID))
	if err != nil {
		return "", fmt.Errorf("users.info %s: %w", userID, err)
	}
	email := strings.TrimSpace(user.Profile.Email)
	if email == "" {
		return "", fmt.Errorf("users.info %s: profile has no email", userID)
	}
	return email, nil
}

// Identity returns the bot's own ids. The first successful auth.test is cached.
func (c *Client) Identity(ctx context.Context) (BotIdentity, error) {
	c.identityMu.Lock()
	defer c.identityMu.Unlock()
	if c.identity != nil {
		return *c.identity, nil
	}
	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return BotIdentity{}, fmt.Errorf("auth.test: %w", err)
	}
	c.identity = &BotIdentity{UserID: resp.UserID, BotID: resp.BotID}
	c.logger.Info("bot identity resolved", slog.String("user_id", resp.UserID), slog.String("bot_id", resp.BotID))
	return *c.identity, nil
}
