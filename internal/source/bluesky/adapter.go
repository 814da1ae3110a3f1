package bluesky

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hypersec/hypersecretary/internal/source"
)

const pageLimit = 30

// Adapter normalizes Bluesky notifications into the shared ingestion
// shape. The cursor is the maximum indexedAt timestamp seen, an RFC
// 3339 string in UTC, so cursor comparison is plain lexicographic.
type Adapter struct {
	client *Client
}

// NewAdapter creates a Bluesky adapter backed by client.
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Name() string {
	return "bluesky"
}

// Fetch authenticates, retrieves the latest notification page, filters
// to entries indexed strictly after cursor, and returns them oldest
// first. The listNotifications endpoint has no server-side "since"
// parameter, so filtering happens client-side on indexedAt.
func (a *Adapter) Fetch(
	ctx context.Context,
	cursor string,
) ([]source.Notification, string, error) {
	if err := a.client.Authenticate(ctx); err != nil {
		return nil, "", err
	}

	notifications, err := a.client.Notifications(ctx, pageLimit)
	if err != nil {
		return nil, "", err
	}

	var fresh []Notification
	for _, n := range notifications {
		if cursor == "" || n.IndexedAt > cursor {
			fresh = append(fresh, n)
		}
	}
	if len(fresh) == 0 {
		return nil, cursor, nil
	}

	sort.Slice(fresh, func(i, j int) bool {
		return fresh[i].IndexedAt < fresh[j].IndexedAt
	})

	batch := make([]source.Notification, 0, len(fresh))
	newest := ""
	for _, n := range fresh {
		batch = append(batch, normalize(n))
		if n.IndexedAt > newest {
			newest = n.IndexedAt
		}
	}
	return batch, newest, nil
}

// CursorAfter compares RFC 3339 timestamps lexicographically.
func (a *Adapter) CursorAfter(next, current string) bool {
	return next > current
}

func normalize(n Notification) source.Notification {
	display := n.Author.DisplayName
	if display == "" {
		display = n.Author.Handle
	}
	if display == "" {
		display = "someone"
	}

	var title string
	switch n.Reason {
	case "like":
		title = fmt.Sprintf("🦋 %s liked your post", display)
	case "repost":
		title = fmt.Sprintf("🦋 %s reposted your post", display)
	case "follow":
		title = fmt.Sprintf("🦋 %s followed you", display)
	case "mention":
		title = fmt.Sprintf("🦋 %s mentioned you", display)
	case "reply":
		title = fmt.Sprintf("🦋 %s replied to you", display)
	case "quote":
		title = fmt.Sprintf("🦋 %s quoted your post", display)
	default:
		title = fmt.Sprintf("🦋 %s: %s", display, n.Reason)
	}

	body := truncate(n.Record.Text, 500)

	var metadata map[string]any
	if postURL := postURL(n.URI, n.Author.Handle); postURL != "" {
		metadata = map[string]any{"url": postURL}
	}

	return source.Notification{
		Type:     "bluesky",
		Source:   "@" + n.Author.Handle,
		Title:    title,
		Body:     body,
		Metadata: metadata,
	}
}

// postURL converts an at:// record URI into a public bsky.app link,
// e.g. at://did:plc:xxx/app.bsky.feed.post/yyy becomes
// https://bsky.app/profile/{handle}/post/yyy.
func postURL(uri, handle string) string {
	if !strings.HasPrefix(uri, "at://") {
		return ""
	}
	parts := strings.Split(uri, "/")
	if len(parts) < 5 {
		return ""
	}
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s",
		handle, parts[len(parts)-1])
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
