// Package oauth implements the Google calendar authorization flow started from Slack.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	stateIssuer     = "meetprep"
	DefaultStateTTL = 10 * time.Minute
)

var (
	ErrInvalidState   = errors.New("invalid oauth state")
	ErrNoRefreshToken = errors.New("google did not return a refresh token")
)

// Credential is the result of a completed authorization.
type Credential struct {
	RefreshToken string
	Expiry       time.Time
	GoogleEmail  string
}

// NewConfig builds the Google OAuth client configuration.
func NewConfig(clientID, clientSecret, redirectURL string, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}
}

type Flow struct {
	cfg      *oauth2.Config
	secret   []byte
	stateTTL time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewFlow(log *slog.Logger, cfg *oauth2.Config, stateSecret string) *Flow {
	if log == nil {
		log = slog.Default()
	}
	return &Flow{
		cfg:      cfg,
		secret:   []byte(stateSecret),
		stateTTL: DefaultStateTTL,
		now:      time.Now,
		logger:   log.With(slog.String("service", "oauth")),
	}
}

// AuthURL returns the consent URL for a Slack user. Offline access with a
// forced prompt makes Google issue a refresh token every time.
func (f *Flow) AuthURL(slackUserID string) (string, error) {
	state, err := f.issueState(slackUserID)
	if err != nil {
		return "", err
	}
	return f.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	), nil
}

func (f *Flow) issueState(slackUserID string) (string, error) {
	slackUserID = strings.TrimSpace(slackUserID)
	if slackUserID == "" {
		return "", errors.New("slack user id is required")
	}
	if len(f.secret) == 0 {
		return "", errors.New("state secret not configured")
	}
	now := f.now()
	claims := jwt.RegisteredClaims{
		Issuer:    stateIssuer,
		Subject:   slackUserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(f.stateTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.secret)
}

// VerifyState checks the signature and expiry of state and returns the Slack user id.
func (f *Flow) VerifyState(state string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(state), claims,
		func(*jwt.Token) (any, error) { return f.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(f.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidState)
	}
	return claims.Subject, nil
}

// Exchange trades an authorization code for a credential. The Google email
// is read from the unverified id_token claims.
func (f *Flow) Exchange(ctx context.Context, code string) (Credential, error) {
	if strings.TrimSpace(code) == "" {
		return Credential{}, errors.New("authorization code is required")
	}
	tok, err := f.cfg.Exchange(ctx, code)
	if err != nil {
		return Credential{}, fmt.Errorf("exchange code: %w", err)
	}
	if tok.RefreshToken == "" {
		return Credential{}, ErrNoRefreshToken
	}
	cred := Credential{RefreshToken: tok.RefreshToken, Expiry: tok.Expiry}
	if raw, ok := tok.Extra("id_token").(string); ok && raw != "" {
		email, err := emailFromIDToken(raw)
		if err != nil {
			f.logger.Warn("id_token unreadable", slog.Any("error", err))
		}
		cred.GoogleEmail = email
	}
	return cred, nil
}

func emailFromIDToken(raw string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return "", err
	}
	email, _ := claims["email"].(string)
	return strings.TrimSpace(email), nil
}
