package source

import (
	"context"
	"errors"
	"fmt"
)

// AuthError indicates that authentication has failed for a remote source.
// It is returned by source clients when the remote API rejects credentials.
type AuthError struct {
	Source  string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Source, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// RemoteError indicates that a remote source API was unreachable or
// returned an error. The batch is skipped and the cursor left in place;
// the next scheduled run retries from the same position.
type RemoteError struct {
	Source  string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote error (%s): %s: %v", e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("remote error (%s): %s", e.Source, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Notification is the normalized event shape forwarded to the ingestion
// boundary: a kind label, an origin handle, a synthesized title, an
// optional body snippet, and optional origin metadata.
type Notification struct {
	Type     string
	Source   string
	Title    string
	Body     string
	Metadata map[string]any
}

// Adapter is the source-specific strategy behind the shared polling
// control flow: fetch remote events newer than a cursor, normalize them,
// and say how cursor values compare.
type Adapter interface {
	// Name identifies the source; it scopes the persisted cursor key.
	Name() string

	// Fetch retrieves a bounded page of events strictly newer than
	// cursor (empty means "from the beginning"), normalized and ordered
	// oldest-first, together with the cursor for the newest event seen.
	Fetch(ctx context.Context, cursor string) ([]Notification, string, error)

	// CursorAfter reports whether next is strictly newer than current
	// in this source's ordering (ordinal id or timestamp). An empty
	// current is before any non-empty next.
	CursorAfter(next, current string) bool
}

// Forwarder delivers one normalized notification to the ingestion
// boundary.
type Forwarder interface {
	Forward(ctx context.Context, n Notification) error
}
