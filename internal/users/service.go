// Package users is the directory of Slack users and their calendar credentials.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/memohai/meetprep/internal/db"
	"github.com/memohai/meetprep/internal/db/sqlc"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrMissingCredential = errors.New("refresh token is required")
	ErrGoogleAccountUsed = errors.New("google account already linked to another slack user")
)

// Store is the subset of generated queries the directory needs.
type Store interface {
	GetUser(ctx context.Context, slackUserID string) (sqlc.User, error)
	ListAuthorizedUsers(ctx context.Context) ([]sqlc.User, error)
	UpsertUserCredential(ctx context.Context, arg sqlc.UpsertUserCredentialParams) (sqlc.User, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(log *slog.Logger, store Store) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:  store,
		logger: log.With(slog.String("service", "users")),
	}
}

// ListAuthorized returns every user holding a non-empty calendar credential.
func (s *Service) ListAuthorized(ctx context.Context) ([]User, error) {
	if s.store == nil {
		return nil, fmt.Errorf("user store not configured")
	}
	rows, err := s.store.ListAuthorizedUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authorized users: %w", err)
	}
	items := make([]User, 0, len(rows))
	for _, row := range rows {
		u := toUser(row)
		if !u.Authorized() {
			continue
		}
		items = append(items, u)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, slackUserID string) (User, error) {
	if s.store == nil {
		return User{}, fmt.Errorf("user store not configured")
	}
	slackUserID = strings.TrimSpace(slackUserID)
	if slackUserID == "" {
		return User{}, ErrUserNotFound
	}
	row, err := s.store.GetUser(ctx, slackUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return toUser(row), nil
}

// SaveCredential creates the user or rotates the stored credential.
func (s *Service) SaveCredential(ctx context.Context, req SaveCredentialRequest) (User, error) {
	if s.store == nil {
		return User{}, fmt.Errorf("user store not configured")
	}
	slackUserID := strings.TrimSpace(req.SlackUserID)
	if slackUserID == "" {
		return User{}, fmt.Errorf("slack user id is required")
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		return User{}, ErrMissingCredential
	}
	row, err := s.store.UpsertUserCredential(ctx, sqlc.UpsertUserCredentialParams{
		SlackUserID:        slackUserID,
		SlackEmail:         strings.TrimSpace(req.SlackEmail),
		GoogleEmail:        db.StringToText(req.GoogleEmail),
		GoogleRefreshToken: db.StringToText(req.RefreshToken),
		GoogleTokenExpiry:  db.TimeToPg(req.TokenExpiry),
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, ErrGoogleAccountUsed
		}
		return User{}, fmt.Errorf("save credential: %w", err)
	}
	s.logger.Info("credential saved", slog.String("user_id", slackUserID))
	return toUser(row), nil
}

func toUser(row sqlc.User) User {
	return User{
		SlackUserID:  row.SlackUserID,
		SlackEmail:   row.SlackEmail,
		GoogleEmail:  db.TextToString(row.GoogleEmail),
		RefreshToken: db.TextToString(row.GoogleRefreshToken),
		TokenExpiry:  db.TimeFromPg(row.GoogleTokenExpiry),
		CreatedAt:    db.TimeFromPg(row.CreatedAt),
		UpdatedAt:    db.TimeFromPg(row.UpdatedAt),
	}
}
