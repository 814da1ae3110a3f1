package source

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hypersec/hypersecretary/internal/store"
)

// Poller drives one or more source adapters through an incremental
// fetch-forward-advance cycle against a persistent cursor store.
//
// Cursor semantics are at-least-once: the cursor is advanced only after
// every notification in a batch has been forwarded. If forwarding fails
// partway through, the cursor stays put and the whole batch is retried
// on the next run. Notifications may be delivered twice; they are never
// lost.
type Poller struct {
	cursors   store.CursorStore
	forwarder Forwarder
	log       *zap.Logger
}

// NewPoller returns a poller that persists cursors in cursors and
// delivers normalized notifications through forwarder.
func NewPoller(cursors store.CursorStore, forwarder Forwarder, log *zap.Logger) *Poller {
	return &Poller{cursors: cursors, forwarder: forwarder, log: log}
}

// Run executes one polling cycle for a single adapter.
func (p *Poller) Run(ctx context.Context, adapter Adapter) error {
	name := adapter.Name()

	cursor, err := p.cursors.GetCursor(ctx, name)
	if err != nil {
		return fmt.Errorf("loading cursor for %s: %w", name, err)
	}

	batch, next, err := adapter.Fetch(ctx, cursor)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", name, err)
	}

	if len(batch) == 0 {
		p.log.Debug("no new notifications", zap.String("source", name))
		return nil
	}

	for _, n := range batch {
		if err := p.forwarder.Forward(ctx, n); err != nil {
			return fmt.Errorf("forwarding %s notification: %w", name, err)
		}
	}

	if next != "" && adapter.CursorAfter(next, cursor) {
		if err := p.cursors.SetCursor(ctx, name, next); err != nil {
			return fmt.Errorf("saving cursor for %s: %w", name, err)
		}
	} else if next != "" && next != cursor {
		// A regressed cursor usually means the remote returned stale
		// data. Keep the stored position to avoid replaying history.
		p.log.Warn("ignoring non-advancing cursor",
			zap.String("source", name),
			zap.String("stored", cursor),
			zap.String("offered", next))
	}

	p.log.Info("forwarded notifications",
		zap.String("source", name),
		zap.Int("count", len(batch)))
	return nil
}

// RunAll executes one cycle per adapter. A failure in one source is
// logged and does not stop the others; the first error is returned
// after all adapters have been attempted.
func (p *Poller) RunAll(ctx context.Context, adapters []Adapter) error {
	var firstErr error
	for _, adapter := range adapters {
		if err := p.Run(ctx, adapter); err != nil {
			p.log.Error("poll cycle failed",
				zap.String("source", adapter.Name()),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
