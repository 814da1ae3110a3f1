package email

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hypersec/hypersecretary/internal/source"
)

const pageLimit = 30

// Adapter normalizes IMAP messages into the shared ingestion shape.
// The cursor is the decimal UID of the newest message seen; UIDs are
// monotonic within a mailbox.
type Adapter struct {
	client *IMAPClient
}

// NewAdapter creates an email adapter backed by client.
func NewAdapter(client *IMAPClient) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Name() string {
	return "email"
}

// Fetch retrieves messages with UIDs above cursor, oldest first.
func (a *Adapter) Fetch(
	ctx context.Context,
	cursor string,
) ([]source.Notification, string, error) {
	var afterUID uint32
	if cursor != "" {
		parsed, err := strconv.ParseUint(cursor, 10, 32)
		if err != nil {
			return nil, "", fmt.Errorf("parsing email cursor %q: %w", cursor, err)
		}
		afterUID = uint32(parsed)
	}

	messages, err := a.client.FetchAfterUID(ctx, afterUID, pageLimit)
	if err != nil {
		return nil, "", err
	}
	if len(messages) == 0 {
		return nil, cursor, nil
	}

	batch := make([]source.Notification, 0, len(messages))
	var maxUID uint32
	for _, m := range messages {
		batch = append(batch, normalize(m))
		if m.Envelope.UID > maxUID {
			maxUID = m.Envelope.UID
		}
	}
	return batch, strconv.FormatUint(uint64(maxUID), 10), nil
}

// CursorAfter compares decimal UID strings by magnitude.
func (a *Adapter) CursorAfter(next, current string) bool {
	if current == "" {
		return next != ""
	}
	if len(next) != len(current) {
		return len(next) > len(current)
	}
	return next > current
}

func normalize(m Message) source.Notification {
	from := m.Envelope.From
	if from == "" {
		from = "unknown sender"
	}
	subject := m.Envelope.Subject
	if subject == "" {
		subject = "(no subject)"
	}

	messageID := m.Envelope.MessageID
	if messageID == "" {
		// Some senders omit Message-ID; synthesize one so downstream
		// consumers always have a stable reference.
		messageID = uuid.NewString() + "@generated"
	}

	metadata := map[string]any{
		"message_id": messageID,
		"uid":        m.Envelope.UID,
	}
	if !m.Envelope.Date.IsZero() {
		metadata["date"] = m.Envelope.Date.Format("2006-01-02 15:04")
	}

	return source.Notification{
		Type:     "email",
		Source:   from,
		Title:    fmt.Sprintf("📧 %s: %s", from, subject),
		Body:     truncate(strings.TrimSpace(m.TextBody), 500),
		Metadata: metadata,
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
