package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const forwardTimeout = 15 * time.Second

// HTTPForwarder delivers notifications to the bot's ingestion webhook,
// authenticated with a shared secret header.
type HTTPForwarder struct {
	botURL     string
	secret     string
	httpClient *http.Client
}

// NewHTTPForwarder returns a forwarder posting to botURL's
// /webhook/notify endpoint.
func NewHTTPForwarder(botURL, secret string) *HTTPForwarder {
	return &HTTPForwarder{
		botURL:     strings.TrimRight(botURL, "/"),
		secret:     secret,
		httpClient: &http.Client{Timeout: forwardTimeout},
	}
}

// Forward posts one normalized notification. A non-200 response or
// transport failure is returned as an error so the caller can hold the
// cursor and retry the batch on the next run.
func (f *HTTPForwarder) Forward(ctx context.Context, n Notification) error {
	payload := map[string]any{
		"type":   n.Type,
		"source": n.Source,
		"title":  n.Title,
		"body":   n.Body,
		"notify": true,
	}
	if len(n.Metadata) > 0 {
		payload["metadata"] = n.Metadata
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		f.botURL+"/webhook/notify", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", f.secret)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
