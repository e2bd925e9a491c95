package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/meetprep/internal/db/sqlc"
)

type fakeStore struct {
	rows      map[string]sqlc.User
	listErr   error
	upsertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]sqlc.User{}}
}

func (f *fakeStore) GetUser(_ context.Context, id string) (sqlc.User, error) {
	row, ok := f.rows[id]
	if !ok {
		return sqlc.User{}, pgx.ErrNoRows
	}
	return row, nil
}

func (f *fakeStore) ListAuthorizedUsers(_ context.Context) ([]sqlc.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []sqlc.User
	for _, row := range f.rows {
		if row.GoogleRefreshToken.Valid {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertUserCredential(_ context.Context, arg sqlc.UpsertUserCredentialParams) (sqlc.User, error) {
	if f.upsertErr != nil {
		return sqlc.User{}, f.upsertErr
	}
	row := sqlc.User{
		SlackUserID:        arg.SlackUserID,
		SlackEmail:         arg.SlackEmail,
		GoogleEmail:        arg.GoogleEmail,
		GoogleRefreshToken: arg.GoogleRefreshToken,
		GoogleTokenExpiry:  arg.GoogleTokenExpiry,
	}
	f.rows[arg.SlackUserID] = row
	return row, nil
}

func TestSaveCredentialThenGet(t *testing.T) {
	store := newFakeStore()
	svc := NewService(nil, store)
	expiry := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	saved, err := svc.SaveCredential(context.Background(), SaveCredentialRequest{
		SlackUserID:  "U123",
		SlackEmail:   "test@company.com",
		GoogleEmail:  "test@gmail.com",
		RefreshToken: "refresh-1",
		TokenExpiry:  expiry,
	})
	require.NoError(t, err)
	assert.True(t, saved.Authorized())

	got, err := svc.Get(context.Background(), "U123")
	require.NoError(t, err)
	assert.Equal(t, "test@gmail.com", got.GoogleEmail)
	assert.Equal(t, "refresh-1", got.RefreshToken)
	assert.True(t, got.TokenExpiry.Equal(expiry))
}

func TestSaveCredentialRotates(t *testing.T) {
	store := newFakeStore()
	svc := NewService(nil, store)
	ctx := context.Background()

	_, err := svc.SaveCredential(ctx, SaveCredentialRequest{SlackUserID: "U1", SlackEmail: "a@x", RefreshToken: "old"})
	require.NoError(t, err)
	_, err = svc.SaveCredential(ctx, SaveCredentialRequest{SlackUserID: "U1", SlackEmail: "a@x", RefreshToken: "new"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.RefreshToken)
}

func TestSaveCredentialRequiresToken(t *testing.T) {
	svc := NewService(nil, newFakeStore())
	_, err := svc.SaveCredential(context.Background(), SaveCredentialRequest{SlackUserID: "U1"})
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestGetMissingUser(t *testing.T) {
	svc := NewService(nil, newFakeStore())
	_, err := svc.Get(context.Background(), "U404")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListAuthorizedSkipsEmptyCredential(t *testing.T) {
	store := newFakeStore()
	store.rows["U1"] = sqlc.User{SlackUserID: "U1", GoogleRefreshToken: pgtype.Text{String: "tok", Valid: true}}
	store.rows["U2"] = sqlc.User{SlackUserID: "U2", GoogleRefreshToken: pgtype.Text{String: "", Valid: true}}
	store.rows["U3"] = sqlc.User{SlackUserID: "U3"}
	svc := NewService(nil, store)

	items, err := svc.ListAuthorized(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "U1", items[0].SlackUserID)
}

func TestListAuthorizedWrapsStoreError(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("connection refused")
	svc := NewService(nil, store)

	_, err := svc.ListAuthorized(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestSaveCredentialGoogleAccountTaken(t *testing.T) {
	store := newFakeStore()
	store.upsertErr = &pgconn.PgError{Code: "23505", ConstraintName: "users_google_email_key"}
	svc := NewService(nil, store)

	_, err := svc.SaveCredential(context.Background(), SaveCredentialRequest{
		SlackUserID:  "U2",
		GoogleEmail:  "shared@gmail.com",
		RefreshToken: "tok",
	})
	assert.ErrorIs(t, err, ErrGoogleAccountUsed)
}

func TestSaveCredentialWrapsStoreError(t *testing.T) {
	store := newFakeStore()
	store.upsertErr = errors.New("deadlock detected")
	svc := NewService(nil, store)

	_, err := svc.SaveCredential(context.Background(), SaveCredentialRequest{SlackUserID: "U2", RefreshToken: "tok"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGoogleAccountUsed)
	assert.ErrorContains(t, err, "deadlock detected")
}
