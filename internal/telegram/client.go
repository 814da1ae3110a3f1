// Package telegram implements the chat transport: a minimal Bot API
// client, the command dispatcher, and inbox display formatting.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	apiBaseURL = "https://api.telegram.org"

	// Telegram rejects messages over 4096 characters; longer replies
	// are split into chunks below that limit.
	maxMessageLen = 4096
	chunkLen      = 4000

	longPollSeconds = 30
)

// Update is one incoming Bot API update.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is the subset of a Telegram message the bot reads.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// User identifies the sender of a message.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// Client is a thin HTTP client for the Telegram Bot API using long
// polling.
type Client struct {
	token      string
	httpClient *http.Client
}

// NewClient creates a Bot API client for the given bot token.
func NewClient(token string) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			// Longer than the long-poll window so getUpdates can
			// block server-side without tripping the client timeout.
			Timeout: (longPollSeconds + 10) * time.Second,
		},
	}
}

// GetUpdates long-polls for updates after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	params := map[string]any{
		"offset":          offset,
		"timeout":         longPollSeconds,
		"allowed_updates": []string{"message"},
	}

	var result struct {
		OK     bool     `json:"ok"`
		Result []Update `json:"result"`
	}
	if err := c.call(ctx, "getUpdates", params, &result); err != nil {
		return nil, err
	}
	if !result.OK {
		return nil, fmt.Errorf("getUpdates returned ok=false")
	}
	return result.Result, nil
}

// SendMessage sends text to a chat, splitting messages that exceed the
// Bot API length limit.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if len(text) <= maxMessageLen {
		return c.sendOne(ctx, chatID, text)
	}

	for start := 0; start < len(text); {
		end := start + chunkLen
		if end > len(text) {
			end = len(text)
		} else {
			// Back off to a rune boundary.
			for end > start && text[end]&0xC0 == 0x80 {
				end--
			}
		}
		if err := c.sendOne(ctx, chatID, text[start:end]); err != nil {
			return err
		}
		start = end
	}
	return nil
}

func (c *Client) sendOne(ctx context.Context, chatID int64, text string) error {
	params := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	var result struct {
		OK bool `json:"ok"`
	}
	if err := c.call(ctx, "sendMessage", params, &result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("sendMessage returned ok=false")
	}
	return nil
}

// SendTyping shows the "typing…" indicator in a chat. Failures are
// ignored by callers; the indicator is cosmetic.
func (c *Client) SendTyping(ctx context.Context, chatID int64) error {
	params := map[string]any{
		"chat_id": chatID,
		"action":  "typing",
	}
	var result struct {
		OK bool `json:"ok"`
	}
	return c.call(ctx, "sendChatAction", params, &result)
}

// call posts a JSON request to one Bot API method.
func (c *Client) call(
	ctx context.Context, method string, params, result any,
) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", apiBaseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url,
		bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", method, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d: %s", method, resp.StatusCode,
			string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}
	return nil
}
