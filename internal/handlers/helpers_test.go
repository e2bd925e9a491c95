package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/slack-go/slack"

	"github.com/memohai/meetprep/internal/calendar"
	"github.com/memohai/meetprep/internal/glean"
	"github.com/memohai/meetprep/internal/inbound"
	"github.com/memohai/meetprep/internal/oauth"
	"github.com/memohai/meetprep/internal/users"
)

const testSigningSecret = "8f742231b10e8888abcd99yyyzzz85a5"

func syncSpawn(f func()) { f() }

func signedRequest(method, path, body, contentType string) *http.Request {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(testSigningSecret))
	_, _ = mac.Write([]byte("v0:" + ts + ":" + body))
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Slack-Request-Timestamp", ts)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	req.Header.Set(echo.HeaderContentType, contentType)
	return req
}

func serve(t *testing.T, h interface{ Register(*echo.Echo) }, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h.Register(e)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type fakeDirectory struct {
	mu      sync.Mutex
	users   map[string]users.User
	getErr  error
	saveErr error
	saved   []users.SaveCredentialRequest
}

func (f *fakeDirectory) Get(_ context.Context, id string) (users.User, error) {
	if f.getErr != nil {
		return users.User{}, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return users.User{}, users.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeDirectory) SaveCredential(_ context.Context, req users.SaveCredentialRequest) (users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return users.User{}, f.saveErr
	}
	f.saved = append(f.saved, req)
	return users.User{SlackUserID: req.SlackUserID, RefreshToken: req.RefreshToken}, nil
}

type directMessage struct {
	userID string
	text   string
	blocks []slack.Block
}

type fakeMessenger struct {
	mu        sync.Mutex
	sent      []directMessage
	email     string
	lookupErr error
}

func (f *fakeMessenger) SendDirect(_ context.Context, userID, text string, blocks ...slack.Block) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, directMessage{userID: userID, text: text, blocks: blocks})
	return "1.1", nil
}

func (f *fakeMessenger) LookupEmail(context.Context, string) (string, error) {
	return f.email, f.lookupErr
}

type fakeAuthorizer struct {
	url         string
	stateUser   string
	stateErr    error
	cred        oauth.Credential
	exchangeErr error
}

func (f *fakeAuthorizer) AuthURL(string) (string, error) { return f.url, nil }

func (f *fakeAuthorizer) VerifyState(string) (string, error) { return f.stateUser, f.stateErr }

func (f *fakeAuthorizer) Exchange(context.Context, string) (oauth.Credential, error) {
	return f.cred, f.exchangeErr
}

type fakeRouter struct {
	got []inbound.Message
}

func (f *fakeRouter) HandleMessage(_ context.Context, msg inbound.Message) (inbound.Outcome, error) {
	f.got = append(f.got, msg)
	return inbound.OutcomeDelivered, nil
}

type fakeSummarizer struct {
	prep      glean.Prep
	err       error
	title     string
	attendees []calendar.Attendee
}

func (f *fakeSummarizer) Summarize(_ context.Context, title string, attendees []calendar.Attendee) (glean.Prep, error) {
	f.title, f.attendees = title, attendees
	return f.prep, f.err
}
