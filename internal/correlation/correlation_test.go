package correlation

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackResolveOnce(t *testing.T) {
	table := New()
	table.Track("1719835200.000100", Pending{UserID: "U1", MeetingID: "evt-1", MeetingTitle: "Sync"})

	got, ok := table.Resolve("1719835200.000100")
	require.True(t, ok)
	assert.Equal(t, "U1", got.UserID)
	assert.Equal(t, "evt-1", got.MeetingID)
	assert.False(t, got.CreatedAt.IsZero())

	_, ok = table.Resolve("1719835200.000100")
	assert.False(t, ok)
	assert.Zero(t, table.Len())
}

func TestResolveUnknownToken(t *testing.T) {
	table := New()
	_, ok := table.Resolve("never-tracked")
	assert.False(t, ok)
	_, ok = table.Resolve("")
	assert.False(t, ok)
}

func TestTrackIgnoresBlankToken(t *testing.T) {
	table := New()
	table.Track("  ", Pending{UserID: "U1"})
	assert.Zero(t, table.Len())
}

func TestTTLExpiry(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	table := New(WithTTL(time.Hour), WithClock(clock))

	table.Track("old", Pending{UserID: "U1"})
	table.Track("stale", Pending{UserID: "U2"})
	now = now.Add(2 * time.Hour)

	_, ok := table.Resolve("stale")
	assert.False(t, ok, "expired entry must miss")

	table.Track("fresh", Pending{UserID: "U3"})
	assert.Equal(t, 1, table.Len(), "track sweeps expired entries")

	got, ok := table.Resolve("fresh")
	require.True(t, ok)
	assert.Equal(t, "U3", got.UserID)
}

func TestZeroTTLKeepsEntries(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	table := New(WithTTL(0), WithClock(func() time.Time { return now }))
	table.Track("a", Pending{UserID: "U1"})
	now = now.Add(30 * 24 * time.Hour)
	table.Track("b", Pending{UserID: "U2"})

	_, ok := table.Resolve("a")
	assert.True(t, ok)
}

func TestConcurrentResolveHitsOnce(t *testing.T) {
	table := New()
	const tokens = 50
	for i := range tokens {
		table.Track(fmt.Sprintf("ts-%d", i), Pending{UserID: "U1"})
	}

	var hits atomic.Int64
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tokens {
				if _, ok := table.Resolve(fmt.Sprintf("ts-%d", i)); ok {
					hits.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(tokens), hits.Load())
	assert.Zero(t, table.Len())
}
