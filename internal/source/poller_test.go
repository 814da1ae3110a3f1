package source_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hypersec/hypersecretary/internal/source"
	"github.com/hypersec/hypersecretary/tests/testutil"
)

// fakeAdapter serves a scripted batch with numeric cursors.
type fakeAdapter struct {
	name     string
	batch    []source.Notification
	next     string
	fetchErr error

	gotCursor string
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) Fetch(
	_ context.Context, cursor string,
) ([]source.Notification, string, error) {
	a.gotCursor = cursor
	if a.fetchErr != nil {
		return nil, "", a.fetchErr
	}
	return a.batch, a.next, nil
}

func (a *fakeAdapter) CursorAfter(next, current string) bool {
	if current == "" {
		return next != ""
	}
	n, _ := strconv.Atoi(next)
	c, _ := strconv.Atoi(current)
	return n > c
}

// fakeForwarder records deliveries and can fail after a number of
// successful forwards.
type fakeForwarder struct {
	delivered []source.Notification
	failAfter int
	err       error
}

func (f *fakeForwarder) Forward(_ context.Context, n source.Notification) error {
	if f.err != nil && len(f.delivered) >= f.failAfter {
		return f.err
	}
	f.delivered = append(f.delivered, n)
	return nil
}

func notif(title string) source.Notification {
	return source.Notification{Type: "mastodon", Source: "@x", Title: title}
}

func TestRunForwardsBatchAndAdvancesCursor(t *testing.T) {
	cursors := testutil.NewTestStore(t)
	forwarder := &fakeForwarder{}
	poller := source.NewPoller(cursors, forwarder, zap.NewNop())

	adapter := &fakeAdapter{
		name:  "mastodon",
		batch: []source.Notification{notif("one"), notif("two")},
		next:  "20",
	}

	require.NoError(t, poller.Run(context.Background(), adapter))
	require.Len(t, forwarder.delivered, 2)
	require.Equal(t, "one", forwarder.delivered[0].Title)

	cursor, err := cursors.GetCursor(context.Background(), "mastodon")
	require.NoError(t, err)
	require.Equal(t, "20", cursor)
}

func TestRunFetchFailureLeavesCursor(t *testing.T) {
	cursors := testutil.NewTestStore(t)
	ctx := context.Background()
	require.NoError(t, cursors.SetCursor(ctx, "mastodon", "10"))

	forwarder := &fakeForwarder{}
	poller := source.NewPoller(cursors, forwarder, zap.NewNop())

	adapter := &fakeAdapter{
		name:     "mastodon",
		fetchErr: &source.RemoteError{Source: "mastodon", Message: "boom"},
	}

	err := poller.Run(ctx, adapter)
	require.Error(t, err)
	require.Equal(t, "10", adapter.gotCursor)
	require.Empty(t, forwarder.delivered)

	cursor, err := cursors.GetCursor(ctx, "mastodon")
	require.NoError(t, err)
	require.Equal(t, "10", cursor, "failed fetch must not move the cursor")
}

func TestRunForwardFailureLeavesCursor(t *testing.T) {
	cursors := testutil.NewTestStore(t)
	ctx := context.Background()
	require.NoError(t, cursors.SetCursor(ctx, "mastodon", "10"))

	forwarder := &fakeForwarder{failAfter: 1, err: errors.New("bot unreachable")}
	poller := source.NewPoller(cursors, forwarder, zap.NewNop())

	adapter := &fakeAdapter{
		name:  "mastodon",
		batch: []source.Notification{notif("one"), notif("two"), notif("three")},
		next:  "20",
	}

	err := poller.Run(ctx, adapter)
	require.Error(t, err)

	// The cursor stays put so the whole batch is retried next run.
	cursor, err := cursors.GetCursor(ctx, "mastodon")
	require.NoError(t, err)
	require.Equal(t, "10", cursor)
}

func TestRunIgnoresRegressedCursor(t *testing.T) {
	cursors := testutil.NewTestStore(t)
	ctx := context.Background()
	require.NoError(t, cursors.SetCursor(ctx, "mastodon", "30"))

	forwarder := &fakeForwarder{}
	poller := source.NewPoller(cursors, forwarder, zap.NewNop())

	// The remote offers a cursor older than the stored one.
	adapter := &fakeAdapter{
		name:  "mastodon",
		batch: []source.Notification{notif("stale")},
		next:  "20",
	}

	require.NoError(t, poller.Run(ctx, adapter))
	require.Len(t, forwarder.delivered, 1)

	cursor, err := cursors.GetCursor(ctx, "mastodon")
	require.NoError(t, err)
	require.Equal(t, "30", cursor, "cursor must never move backwards")
}

func TestRunEmptyBatchIsNoOp(t *testing.T) {
	cursors := testutil.NewTestStore(t)
	ctx := context.Background()
	require.NoError(t, cursors.SetCursor(ctx, "bluesky", "abc"))

	forwarder := &fakeForwarder{}
	poller := source.NewPoller(cursors, forwarder, zap.NewNop())

	adapter := &fakeAdapter{name: "bluesky", next: "abc"}

	require.NoError(t, poller.Run(ctx, adapter))
	require.Empty(t, forwarder.delivered)
}

func TestRunAllIsolatesSourceFailures(t *testing.T) {
	cursors := testutil.NewTestStore(t)
	ctx := context.Background()

	forwarder := &fakeForwarder{}
	poller := source.NewPoller(cursors, forwarder, zap.NewNop())

	broken := &fakeAdapter{
		name:     "mastodon",
		fetchErr: errors.New("api down"),
	}
	healthy := &fakeAdapter{
		name:  "bluesky",
		batch: []source.Notification{notif("hi")},
		next:  "5",
	}

	err := poller.RunAll(ctx, []source.Adapter{broken, healthy})
	require.Error(t, err, "first failure is reported")
	require.Len(t, forwarder.delivered, 1, "healthy source still polled")

	cursor, err := cursors.GetCursor(ctx, "bluesky")
	require.NoError(t, err)
	require.Equal(t, "5", cursor)
}
