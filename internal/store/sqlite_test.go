package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hypersec/hypersecretary/internal/model"
	"github.com/hypersec/hypersecretary/internal/store"
	"github.com/hypersec/hypersecretary/tests/testutil"
)

func storeItems(t *testing.T, s *store.SQLiteStore, items ...store.NewItem) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id, err := s.Store(context.Background(), item)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestRecentReturnsNewestFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	var items []store.NewItem
	for i := 1; i <= 5; i++ {
		items = append(items, store.NewItem{
			Type:   model.TypeAlert,
			Source: "monitor",
			Title:  fmt.Sprintf("alert %d", i),
		})
	}
	ids := storeItems(t, s, items...)

	for n := 1; n <= 5; n++ {
		got, err := s.Recent(ctx, n, "")
		require.NoError(t, err)
		require.Len(t, got, n)
		// Items share a close received_at, so id descending breaks ties
		// and the most recently stored item always comes first.
		require.Equal(t, ids[len(ids)-1], got[0].ID)
		for i := 1; i < len(got); i++ {
			require.Greater(t, got[i-1].ID, got[i].ID,
				"items must be ordered newest first")
		}
	}
}

func TestRecentTypeFilter(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	storeItems(t, s,
		store.NewItem{Type: model.TypeEmail, Source: "a", Title: "mail"},
		store.NewItem{Type: model.TypeCalendar, Source: "b", Title: "meeting"},
		store.NewItem{Type: model.TypeEmail, Source: "c", Title: "more mail"},
	)

	got, err := s.Recent(ctx, 10, model.TypeEmail)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, item := range got {
		require.Equal(t, model.TypeEmail, item.Type)
	}
}

func TestStoredItemStartsUnread(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	storeItems(t, s, store.NewItem{
		Type: model.TypeCalendar, Source: "cal", Title: "standup",
	})

	got, err := s.Recent(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.False(t, got[0].Read)
}

func TestMarkAllReadThenNewItem(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	storeItems(t, s,
		store.NewItem{Type: model.TypeEmail, Source: "a", Title: "one"},
		store.NewItem{Type: model.TypeAlert, Source: "b", Title: "two"},
	)

	require.NoError(t, s.MarkAllRead(ctx, ""))

	count, err := s.UnreadCount(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 0, count)

	storeItems(t, s, store.NewItem{
		Type: model.TypeEmail, Source: "c", Title: "three",
	})

	count, err = s.UnreadCount(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestMarkAllReadScopedToType(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	storeItems(t, s,
		store.NewItem{Type: model.TypeEmail, Source: "a", Title: "mail"},
		store.NewItem{Type: model.TypeAlert, Source: "b", Title: "alarm"},
	)

	require.NoError(t, s.MarkAllRead(ctx, model.TypeEmail))

	unreadEmail, err := s.UnreadCount(ctx, model.TypeEmail)
	require.NoError(t, err)
	require.Equal(t, 0, unreadEmail)

	unreadAlert, err := s.UnreadCount(ctx, model.TypeAlert)
	require.NoError(t, err)
	require.Equal(t, 1, unreadAlert)
}

func TestSearchNoMatchReturnsEmpty(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	storeItems(t, s, store.NewItem{
		Type: model.TypeEmail, Source: "restaurant", Title: "booking confirmed",
	})

	got, err := s.Search(ctx, "xyz", 10)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSearchMatchesTitleBodySource(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	storeItems(t, s,
		store.NewItem{Type: model.TypeEmail, Source: "OpenTable", Title: "reservation"},
		store.NewItem{Type: model.TypeNews, Source: "feed", Title: "daily digest",
			Body: "opentable raises prices"},
		store.NewItem{Type: model.TypeAlert, Source: "monitor", Title: "disk full"},
	)

	got, err := s.Search(ctx, "opentable", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestStoreNormalizesUnknownType(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	storeItems(t, s, store.NewItem{
		Type: model.ItemType("carrier-pigeon"), Source: "x", Title: "squawk",
	})

	got, err := s.Recent(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, model.TypeOther, got[0].Type)
}

func TestMetadataRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	storeItems(t, s, store.NewItem{
		Type:   model.TypeMastodon,
		Source: "@someone",
		Title:  "mention",
		Metadata: map[string]any{
			"url": "https://mastodon.social/@someone/1",
		},
	})

	got, err := s.Recent(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "https://mastodon.social/@someone/1", got[0].Metadata["url"])
}

func TestTypeCounts(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	storeItems(t, s,
		store.NewItem{Type: model.TypeEmail, Source: "a", Title: "one"},
		store.NewItem{Type: model.TypeEmail, Source: "b", Title: "two"},
		store.NewItem{Type: model.TypeAlert, Source: "c", Title: "three"},
	)
	require.NoError(t, s.MarkAllRead(ctx, model.TypeAlert))

	counts, err := s.TypeCounts(ctx)
	require.NoError(t, err)
	require.Equal(t, model.TypeCount{Total: 2, Unread: 2}, counts[model.TypeEmail])
	require.Equal(t, model.TypeCount{Total: 1, Unread: 0}, counts[model.TypeAlert])
}

func TestCursorRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	cursor, err := s.GetCursor(ctx, "mastodon")
	require.NoError(t, err)
	require.Empty(t, cursor, "missing cursor must read as empty, not error")

	require.NoError(t, s.SetCursor(ctx, "mastodon", "12345"))
	require.NoError(t, s.SetCursor(ctx, "bluesky", "2026-08-29T10:00:00Z"))

	cursor, err = s.GetCursor(ctx, "mastodon")
	require.NoError(t, err)
	require.Equal(t, "12345", cursor)

	// Overwrite replaces the previous value.
	require.NoError(t, s.SetCursor(ctx, "mastodon", "67890"))
	cursor, err = s.GetCursor(ctx, "mastodon")
	require.NoError(t, err)
	require.Equal(t, "67890", cursor)

	cursor, err = s.GetCursor(ctx, "bluesky")
	require.NoError(t, err)
	require.Equal(t, "2026-08-29T10:00:00Z", cursor)
}
