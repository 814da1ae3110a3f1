package mastodon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hypersec/hypersecretary/internal/source"
)

// Client is a thin HTTP client for the Mastodon notifications API.
// It handles Bearer token authentication against a single instance.
type Client struct {
	instanceURL string
	token       string
	httpClient  *http.Client
}

// NewClient creates a Mastodon client for the given instance
// (e.g. https://mastodon.social). The token needs the
// read:notifications scope.
func NewClient(instanceURL, token string) *Client {
	return &Client{
		instanceURL: strings.TrimRight(instanceURL, "/"),
		token:       token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Notifications fetches up to limit notifications with IDs greater than
// sinceID. An empty sinceID fetches the most recent page. The API
// returns newest first.
func (c *Client) Notifications(
	ctx context.Context,
	sinceID string,
	limit int,
) ([]Notification, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	if sinceID != "" {
		params.Set("since_id", sinceID)
	}

	reqURL := c.instanceURL + "/api/v1/notifications?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &source.RemoteError{
			Source:  "mastodon",
			Message: "fetching notifications",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &source.AuthError{
			Source: "mastodon",
			Message: fmt.Sprintf(
				"authentication failed (401): check your access token for %s",
				c.instanceURL,
			),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &source.RemoteError{
			Source: "mastodon",
			Message: fmt.Sprintf(
				"unexpected status %d: %s", resp.StatusCode, string(body),
			),
		}
	}

	var notifications []Notification
	if err := json.Unmarshal(body, &notifications); err != nil {
		return nil, fmt.Errorf("unmarshaling notifications: %w", err)
	}
	return notifications, nil
}
