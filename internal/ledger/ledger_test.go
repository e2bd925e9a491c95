package ledger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/meetprep/internal/db/sqlc"
)

type pair struct{ user, event string }

// memoryStore mimics the composite primary key with ON CONFLICT DO NOTHING.
type memoryStore struct {
	mu        sync.Mutex
	rows      map[pair]struct{}
	existsErr error
	insertErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: map[pair]struct{}{}}
}

func (m *memoryStore) NotificationExists(_ context.Context, arg sqlc.NotificationExistsParams) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[pair{arg.SlackUserID, arg.EventID}]
	return ok, nil
}

func (m *memoryStore) InsertSentNotification(_ context.Context, arg sqlc.InsertSentNotificationParams) (int64, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pair{arg.SlackUserID, arg.EventID}
	if _, ok := m.rows[key]; ok {
		return 0, nil
	}
	m.rows[key] = struct{}{}
	return 1, nil
}

func TestRecordSentIsIdempotent(t *testing.T) {
	store := newMemoryStore()
	l := New(nil, store)
	ctx := context.Background()

	assert.False(t, l.HasBeenSent(ctx, "U1", "evt-1"))

	require.NoError(t, l.RecordSent(ctx, "U1", "evt-1"))
	assert.True(t, l.HasBeenSent(ctx, "U1", "evt-1"))

	require.NoError(t, l.RecordSent(ctx, "U1", "evt-1"))
	assert.True(t, l.HasBeenSent(ctx, "U1", "evt-1"))
	assert.Len(t, store.rows, 1)
}

func TestPairsAreIndependent(t *testing.T) {
	l := New(nil, newMemoryStore())
	ctx := context.Background()

	require.NoError(t, l.RecordSent(ctx, "U1", "evt-1"))
	assert.False(t, l.HasBeenSent(ctx, "U2", "evt-1"))
	assert.False(t, l.HasBeenSent(ctx, "U1", "evt-2"))
}

func TestHasBeenSentFailsClosed(t *testing.T) {
	store := newMemoryStore()
	store.existsErr = errors.New("db down")
	var buf bytes.Buffer
	l := New(slog.New(slog.NewTextHandler(&buf, nil)), store)

	assert.True(t, l.HasBeenSent(context.Background(), "U1", "evt-1"))
	assert.Contains(t, buf.String(), "treating as sent")
}

func TestHasBeenSentWithoutKeyFailsClosed(t *testing.T) {
	l := New(nil, newMemoryStore())
	assert.True(t, l.HasBeenSent(context.Background(), "", "evt-1"))
}

func TestRecordSentReportsStorageError(t *testing.T) {
	store := newMemoryStore()
	store.insertErr = errors.New("disk full")
	l := New(nil, store)

	err := l.RecordSent(context.Background(), "U1", "evt-1")
	assert.ErrorContains(t, err, "disk full")
}

func TestRecordSentRejectsBlankKey(t *testing.T) {
	l := New(nil, newMemoryStore())
	assert.ErrorIs(t, l.RecordSent(context.Background(), "U1", " "), ErrInvalidKey)
}
