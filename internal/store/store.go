package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/hypersec/hypersecretary/internal/model"
)

// StorageError indicates that the persistence layer itself failed. It is
// fatal for the triggering request; callers must not retry inside the store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err (or any error in its chain) is a
// StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// NewItem is the ingestion shape accepted by the inbox: the mandatory
// title plus everything a caller may supply. ID, ReceivedAt, and Read are
// owned by the store.
type NewItem struct {
	Type     model.ItemType
	Source   string
	Title    string
	Body     string
	Metadata map[string]any
}

// InboxStore is the persistence interface for the unified inbox. Items are
// append-only: nothing is ever updated except the read flag, and nothing
// is deleted. All read operations reflect all prior committed writes.
type InboxStore interface {
	// Store inserts one new item with ReceivedAt set to now (UTC) and
	// Read false, returning the assigned id.
	Store(ctx context.Context, item NewItem) (int64, error)

	// Recent returns at most limit items, newest first (ReceivedAt then
	// id descending), optionally restricted to one type.
	Recent(ctx context.Context, limit int, typeFilter model.ItemType) ([]model.InboxItem, error)

	// Search returns items whose title, body, or source contains the
	// keyword (case-insensitive), newest first, capped at limit.
	Search(ctx context.Context, keyword string, limit int) ([]model.InboxItem, error)

	// UnreadCount counts unread items, optionally restricted to one type.
	UnreadCount(ctx context.Context, typeFilter model.ItemType) (int, error)

	// MarkAllRead atomically marks every currently-unread item read,
	// optionally restricted to one type. Items stored afterwards remain
	// unread.
	MarkAllRead(ctx context.Context, typeFilter model.ItemType) error

	// TypeCounts returns total and unread counts per item type.
	TypeCounts(ctx context.Context) (map[model.ItemType]model.TypeCount, error)
}

// CursorStore persists per-source poller positions. A cursor is an opaque
// string; the empty string means "no cursor yet" (first run).
type CursorStore interface {
	GetCursor(ctx context.Context, source string) (string, error)
	SetCursor(ctx context.Context, source string, cursor string) error
}
