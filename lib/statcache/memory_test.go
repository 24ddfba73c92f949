package statcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testMemStore() (*MemStore, *time.Time) {
	s := NewMemStore()
	now := time.Date(2026, time.August, 25, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestMemStoreRoundtrip(t *testing.T) {
	s, _ := testMemStore()
	ctx := context.Background()
	key := Key{Kind: KindPlayer, Identifier: "123", League: "philadelphia"}

	_, err := s.Get(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, key, testPayload{Name: "Bob Smith", Skill: 5}))

	entry, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, key, entry.Key)
	require.JSONEq(t, `{"name":"Bob Smith","skill":5}`, string(entry.Payload))
}

func TestMemStoreExpiry(t *testing.T) {
	s, now := testMemStore()
	ctx := context.Background()
	key := Key{Kind: KindTeam, Identifier: "42"}

	require.NoError(t, s.Put(ctx, key, testPayload{}))

	*now = now.Add(DefaultTTL)
	_, err := s.Get(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Total)
	require.Equal(t, 1, stats.Expired)

	removed, err := s.Cleanup(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, removed)
}

func TestMemStoreClear(t *testing.T) {
	s, _ := testMemStore()
	ctx := context.Background()

	philly := Key{Kind: KindPlayer, Identifier: "123", League: "philadelphia"}
	jersey := Key{Kind: KindPlayer, Identifier: "123", League: "new jersey"}
	require.NoError(t, s.Put(ctx, philly, testPayload{}))
	require.NoError(t, s.Put(ctx, jersey, testPayload{}))

	removed, err := s.Clear(ctx, Filter{Kind: KindPlayer, Identifier: "123", League: "philadelphia"})
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = s.Get(ctx, jersey)
	require.NoError(t, err)

	removed, err = s.ClearAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, removed)
}
