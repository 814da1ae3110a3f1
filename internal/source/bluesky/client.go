package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hypersec/hypersecretary/internal/source"
)

const defaultServiceURL = "https://bsky.social"

// Client is a minimal AT Protocol client for the Bluesky notification
// API. Each polling cycle authenticates with an app password to obtain
// a short-lived access JWT; sessions are not cached between runs.
type Client struct {
	serviceURL string
	handle     string
	password   string
	httpClient *http.Client

	accessJwt string
}

// NewClient creates a Bluesky client authenticating as handle with an
// app password (not the account password).
func NewClient(handle, password string) *Client {
	return &Client{
		serviceURL: defaultServiceURL,
		handle:     handle,
		password:   password,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Authenticate creates a session and stores the access JWT for
// subsequent calls.
func (c *Client) Authenticate(ctx context.Context) error {
	payload := map[string]string{
		"identifier": c.handle,
		"password":   c.password,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.serviceURL+"/xrpc/com.atproto.server.createSession",
		bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &source.RemoteError{
			Source:  "bluesky",
			Message: "creating session",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &source.AuthError{
			Source: "bluesky",
			Message: fmt.Sprintf(
				"authentication failed (401): check the app password for %s",
				c.handle,
			),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &source.RemoteError{
			Source: "bluesky",
			Message: fmt.Sprintf(
				"createSession returned %d: %s", resp.StatusCode, string(body),
			),
		}
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return fmt.Errorf("unmarshaling session: %w", err)
	}
	c.accessJwt = session.AccessJwt
	return nil
}

// Notifications fetches the most recent page of notifications, newest
// first. Authenticate must have succeeded first.
func (c *Client) Notifications(
	ctx context.Context,
	limit int,
) ([]Notification, error) {
	reqURL := fmt.Sprintf(
		"%s/xrpc/app.bsky.notification.listNotifications?limit=%d",
		c.serviceURL, limit,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessJwt)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &source.RemoteError{
			Source:  "bluesky",
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
			Source:  "bluesky",
			Message: "access token rejected (401)",
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &source.RemoteError{
			Source: "bluesky",
			Message: fmt.Sprintf(
				"listNotifications returned %d: %s",
				resp.StatusCode, string(body),
			),
		}
	}

	var list notificationList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("unmarshaling notifications: %w", err)
	}
	return list.Notifications, nil
}
