package mastodon

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hypersec/hypersecretary/internal/source"
)

const pageLimit = 30

// Adapter normalizes Mastodon notifications into the shared ingestion
// shape. The cursor is the numeric notification ID of the newest event
// seen; Mastodon IDs are ordinal, so comparison is by magnitude.
type Adapter struct {
	client *Client
}

// NewAdapter creates a Mastodon adapter backed by client.
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Name() string {
	return "mastodon"
}

// Fetch retrieves notifications newer than cursor, oldest first.
func (a *Adapter) Fetch(
	ctx context.Context,
	cursor string,
) ([]source.Notification, string, error) {
	notifications, err := a.client.Notifications(ctx, cursor, pageLimit)
	if err != nil {
		return nil, "", err
	}
	if len(notifications) == 0 {
		return nil, cursor, nil
	}

	// The API returns newest first; deliver oldest first.
	batch := make([]source.Notification, 0, len(notifications))
	for i := len(notifications) - 1; i >= 0; i-- {
		batch = append(batch, normalize(notifications[i]))
	}

	// Highest ID is the first element of the API response.
	return batch, notifications[0].ID, nil
}

// CursorAfter compares numeric ID strings: a longer decimal string is
// always the larger number, equal lengths compare lexicographically.
func (a *Adapter) CursorAfter(next, current string) bool {
	if current == "" {
		return next != ""
	}
	if len(next) != len(current) {
		return len(next) > len(current)
	}
	return next > current
}

func normalize(n Notification) source.Notification {
	display := n.Account.DisplayName
	if display == "" {
		display = n.Account.Acct
	}
	if display == "" {
		display = "someone"
	}

	var title string
	switch n.Type {
	case "mention":
		title = fmt.Sprintf("🐘 %s mentioned you", display)
	case "reblog":
		title = fmt.Sprintf("🐘 %s boosted your post", display)
	case "favourite":
		title = fmt.Sprintf("🐘 %s favourited your post", display)
	case "follow":
		title = fmt.Sprintf("🐘 %s followed you", display)
	case "follow_request":
		title = fmt.Sprintf("🐘 %s requested to follow you", display)
	case "poll":
		title = "🐘 A poll you voted in has ended"
	case "status":
		title = fmt.Sprintf("🐘 %s posted", display)
	case "update":
		title = "🐘 A post you boosted was edited"
	default:
		title = fmt.Sprintf("🐘 %s: %s", display, n.Type)
	}

	var body, statusURL string
	if n.Status != nil {
		body = truncate(stripHTML(n.Status.Content), 500)
		statusURL = n.Status.URL
	}

	var metadata map[string]any
	if statusURL != "" {
		metadata = map[string]any{"url": statusURL}
	}

	return source.Notification{
		Type:     "mastodon",
		Source:   "@" + n.Account.Acct,
		Title:    title,
		Body:     body,
		Metadata: metadata,
	}
}

var (
	brPattern      = regexp.MustCompile(`<br\s*/?>`)
	tagPattern     = regexp.MustCompile(`<[^>]+>`)
	newlinePattern = regexp.MustCompile(`\n{3,}`)
)

// stripHTML removes markup from status content and collapses runs of
// blank lines.
func stripHTML(text string) string {
	text = brPattern.ReplaceAllString(text, "\n")
	text = tagPattern.ReplaceAllString(text, "")
	text = newlinePattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// truncate cuts s to at most n runes without splitting a character.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
