package runstore

import (
	"context"
	"testing"
	"time"

	"apastats/lib/runstore/db"
	"apastats/lib/sqliteutil"

	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) Store {
	database, err := sqliteutil.OpenDB(db.Schema, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestRecordAndRecent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, time.August, 25, 8, 0, 0, 0, time.UTC)
	runs := []Run{
		{
			StartedAt: base,
			Duration:  time.Second * 12,
			Operation: "player",
			Target:    "12345678",
			League:    "philadelphia",
		},
		{
			StartedAt: base.Add(time.Minute),
			Duration:  time.Second * 40,
			Operation: "team",
			Target:    "67890",
			Expanded:  true,
		},
		{
			StartedAt:       base.Add(time.Minute * 2),
			Duration:        time.Millisecond * 3,
			Operation:       "player",
			Target:          "12345678",
			League:          "philadelphia",
			CacheHit:        true,
			PartialFailures: 0,
		},
	}
	for _, r := range runs {
		require.NoError(t, s.Record(ctx, r))
	}

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// newest first
	require.True(t, recent[0].CacheHit)
	require.Equal(t, "player", recent[0].Operation)
	require.Equal(t, "team", recent[1].Operation)
	require.True(t, recent[1].Expanded)
	require.Equal(t, time.Second*40, recent[1].Duration)
	require.Equal(t, base.Add(time.Minute).Unix(), recent[1].StartedAt.Unix())
}

func TestRecentDefaultLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		err := s.Record(ctx, Run{
			StartedAt: time.Now().Add(time.Duration(i) * time.Second),
			Operation: "player",
			Target:    "1",
		})
		require.NoError(t, err)
	}

	recent, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 20)
}

func TestRecordError(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	err := s.Record(ctx, Run{
		StartedAt: time.Now(),
		Operation: "team",
		Target:    "67890",
		Error:     "session expired or not authenticated",
	})
	require.NoError(t, err)

	recent, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "session expired or not authenticated", recent[0].Error)
}
