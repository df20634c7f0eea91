// Package worker turns mutation events into audit trail rows.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"budgetmcp/internal/events"
	"budgetmcp/internal/export"
)

// AuditWorker consumes mutation events and appends them to the audit
// sink in batches: a batch is flushed when it reaches batchSize or
// when the flush interval elapses, whichever comes first. Handler
// errors bubble up to the consumer, which nacks and requeues the
// message.
type AuditWorker struct {
	sink      export.AuditWriter
	batchSize int
	interval  time.Duration

	mu      sync.Mutex
	pending []export.AuditEntry
}

func NewAuditWorker(sink export.AuditWriter, batchSize int, interval time.Duration) *AuditWorker {
	if batchSize <= 0 {
		batchSize = 1
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &AuditWorker{
		sink:      sink,
		batchSize: batchSize,
		interval:  interval,
	}
}

// HandleMutationEvent buffers one event, flushing the batch once it
// is full.
func (w *AuditWorker) HandleMutationEvent(ctx context.Context, ev *events.MutationEvent) error {
	slog.InfoContext(ctx, "Processing mutation event",
		"operation", ev.Operation,
		"resource_type", ev.ResourceType,
		"ids", ev.ResourceIDs)

	if ev.Operation == "" || ev.ResourceType == "" {
		// Malformed events are dropped, not requeued, or the queue
		// would never drain.
		slog.WarnContext(ctx, "Dropping malformed mutation event", "event", ev)
		return nil
	}

	w.mu.Lock()
	w.pending = append(w.pending, export.AuditEntry{
		Timestamp:    ev.Timestamp,
		Operation:    ev.Operation,
		ResourceType: ev.ResourceType,
		ResourceIDs:  ev.ResourceIDs,
		Summary:      ev.Summary,
	})
	full := len(w.pending) >= w.batchSize
	w.mu.Unlock()

	if full {
		return w.Flush(ctx)
	}
	return nil
}

// Run flushes the pending batch every interval until ctx is
// cancelled, then drains whatever is left.
func (w *AuditWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.Flush(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic audit flush failed", "error", err)
			}
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := w.Flush(drainCtx); err != nil {
				slog.ErrorContext(drainCtx, "Final audit flush failed", "error", err)
			}
			cancel()
			return
		}
	}
}

// Flush appends all pending entries to the sink. On failure the
// unwritten remainder stays buffered for the next attempt.
func (w *AuditWorker) Flush(ctx context.Context) error {
	w.mu.Lock()
	batch := w.pending
	w.pending = nil
	w.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	for i, entry := range batch {
		rowRef, err := w.sink.Append(ctx, entry)
		if err != nil {
			w.mu.Lock()
			w.pending = append(batch[i:], w.pending...)
			w.mu.Unlock()
			return fmt.Errorf("append audit entry: %w", err)
		}
		slog.InfoContext(ctx, "Audit entry written", "row", rowRef)
	}
	return nil
}

// Pending reports the number of buffered entries.
func (w *AuditWorker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
