package bluesky

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeTitles(t *testing.T) {
	tests := []struct {
		reason string
		want   string
	}{
		{"like", "🦋 Grace liked your post"},
		{"repost", "🦋 Grace reposted your post"},
		{"follow", "🦋 Grace followed you"},
		{"mention", "🦋 Grace mentioned you"},
		{"reply", "🦋 Grace replied to you"},
		{"quote", "🦋 Grace quoted your post"},
		{"starterpack-joined", "🦋 Grace: starterpack-joined"},
	}

	for _, tt := range tests {
		n := Notification{
			Reason: tt.reason,
			Author: Author{Handle: "grace.bsky.social", DisplayName: "Grace"},
		}
		got := normalize(n)
		require.Equal(t, tt.want, got.Title)
		require.Equal(t, "bluesky", got.Type)
		require.Equal(t, "@grace.bsky.social", got.Source)
	}
}

func TestNormalizeFallsBackToHandle(t *testing.T) {
	n := Notification{
		Reason: "follow",
		Author: Author{Handle: "grace.bsky.social"},
	}
	require.Equal(t, "🦋 grace.bsky.social followed you", normalize(n).Title)
}

func TestPostURL(t *testing.T) {
	uri := "at://did:plc:abc123/app.bsky.feed.post/3kxyz"
	want := "https://bsky.app/profile/grace.bsky.social/post/3kxyz"
	require.Equal(t, want, postURL(uri, "grace.bsky.social"))

	require.Empty(t, postURL("https://example.com/post/1", "grace.bsky.social"))
	require.Empty(t, postURL("at://malformed", "grace.bsky.social"))
}

func TestCursorAfter(t *testing.T) {
	a := &Adapter{}
	require.True(t, a.CursorAfter("2024-06-02T10:00:00Z", ""))
	require.True(t, a.CursorAfter("2024-06-02T10:00:00Z", "2024-06-01T10:00:00Z"))
	require.False(t, a.CursorAfter("2024-06-01T10:00:00Z", "2024-06-02T10:00:00Z"))
	require.False(t, a.CursorAfter("2024-06-01T10:00:00Z", "2024-06-01T10:00:00Z"))
}

func newTestClient(t *testing.T, notifications []Notification) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/xrpc/com.atproto.server.createSession",
		func(w http.ResponseWriter, r *http.Request) {
			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			require.Equal(t, "grace.bsky.social", creds["identifier"])
			_ = json.NewEncoder(w).Encode(Session{
				AccessJwt: "jwt-abc",
				Handle:    "grace.bsky.social",
			})
		})
	mux.HandleFunc("/xrpc/app.bsky.notification.listNotifications",
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Bearer jwt-abc", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(notificationList{
				Notifications: notifications,
			})
		})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient("grace.bsky.social", "app-password")
	client.serviceURL = srv.URL
	return client
}

func TestFetchFiltersAndSortsByIndexedAt(t *testing.T) {
	client := newTestClient(t, []Notification{
		{
			Reason:    "like",
			Author:    Author{Handle: "a.bsky.social", DisplayName: "A"},
			IndexedAt: "2024-06-03T10:00:00Z",
		},
		{
			Reason:    "follow",
			Author:    Author{Handle: "b.bsky.social", DisplayName: "B"},
			IndexedAt: "2024-06-02T10:00:00Z",
		},
		{
			Reason:    "reply",
			Author:    Author{Handle: "c.bsky.social", DisplayName: "C"},
			IndexedAt: "2024-06-01T10:00:00Z",
		},
	})

	adapter := NewAdapter(client)
	batch, next, err := adapter.Fetch(context.Background(), "2024-06-01T12:00:00Z")
	require.NoError(t, err)
	require.Equal(t, "2024-06-03T10:00:00Z", next)
	require.Len(t, batch, 2, "entry at or before the cursor is dropped")
	require.Equal(t, "🦋 B followed you", batch[0].Title)
	require.Equal(t, "🦋 A liked your post", batch[1].Title)
}

func TestFetchEmptyCursorTakesWholePage(t *testing.T) {
	client := newTestClient(t, []Notification{
		{
			Reason:    "like",
			Author:    Author{Handle: "a.bsky.social"},
			IndexedAt: "2024-06-03T10:00:00Z",
		},
		{
			Reason:    "follow",
			Author:    Author{Handle: "b.bsky.social"},
			IndexedAt: "2024-06-02T10:00:00Z",
		},
	})

	adapter := NewAdapter(client)
	batch, next, err := adapter.Fetch(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, batch, 2)
	require.Equal(t, "2024-06-03T10:00:00Z", next)
}

func TestFetchNothingFreshKeepsCursor(t *testing.T) {
	client := newTestClient(t, []Notification{
		{
			Reason:    "like",
			Author:    Author{Handle: "a.bsky.social"},
			IndexedAt: "2024-06-01T10:00:00Z",
		},
	})

	adapter := NewAdapter(client)
	batch, next, err := adapter.Fetch(context.Background(), "2024-06-05T00:00:00Z")
	require.NoError(t, err)
	require.Empty(t, batch)
	require.Equal(t, "2024-06-05T00:00:00Z", next)
}

func TestFetchBadPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
	t.Cleanup(srv.Close)

	client := NewClient("grace.bsky.social", "wrong")
	client.serviceURL = srv.URL

	adapter := NewAdapter(client)
	_, _, err := adapter.Fetch(context.Background(), "")
	require.Error(t, err)
}
