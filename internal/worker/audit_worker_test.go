package worker

import (
	"context"
	"testing"
	"time"

	"budgetmcp/internal/events"
	"budgetmcp/internal/export/memory"
)

func TestHandleMutationEventFlushesFullBatch(t *testing.T) {
	sink := memory.New()
	w := NewAuditWorker(sink, 2, time.Minute)

	first := events.NewMutationEvent("create", "transaction", []string{"t1"}, "Created 1 transaction (ID: t1)")
	if err := w.HandleMutationEvent(context.Background(), first); err != nil {
		t.Fatalf("HandleMutationEvent: %v", err)
	}
	if len(sink.Entries()) != 0 {
		t.Fatal("entry written before the batch filled")
	}
	if w.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", w.Pending())
	}

	second := events.NewMutationEvent("delete", "payee", []string{"p1"}, "Deleted 1 payee (ID: p1)")
	if err := w.HandleMutationEvent(context.Background(), second); err != nil {
		t.Fatalf("HandleMutationEvent: %v", err)
	}

	entries := sink.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if w.Pending() != 0 {
		t.Fatalf("pending = %d after flush, want 0", w.Pending())
	}
	got := entries[0]
	if got.Operation != "create" || got.ResourceType != "transaction" {
		t.Errorf("entry = %+v", got)
	}
	if len(got.ResourceIDs) != 1 || got.ResourceIDs[0] != "t1" {
		t.Errorf("ids = %v", got.ResourceIDs)
	}
	if time.Since(got.Timestamp) > time.Minute {
		t.Errorf("timestamp not stamped: %v", got.Timestamp)
	}
}

func TestFlushDrainsPartialBatch(t *testing.T) {
	sink := memory.New()
	w := NewAuditWorker(sink, 10, time.Minute)

	ev := events.NewMutationEvent("update", "account", []string{"a1"}, "Updated 1 account (ID: a1)")
	if err := w.HandleMutationEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleMutationEvent: %v", err)
	}
	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(sink.Entries()) != 1 {
		t.Fatalf("entries = %d, want 1", len(sink.Entries()))
	}
	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("empty Flush: %v", err)
	}
	if len(sink.Entries()) != 1 {
		t.Fatal("empty flush wrote entries")
	}
}

func TestRunDrainsOnCancel(t *testing.T) {
	sink := memory.New()
	w := NewAuditWorker(sink, 10, time.Hour)

	ev := events.NewMutationEvent("create", "rule", []string{"r1"}, "Created 1 rule (ID: r1)")
	if err := w.HandleMutationEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleMutationEvent: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if len(sink.Entries()) != 1 {
		t.Fatalf("entries = %d after drain, want 1", len(sink.Entries()))
	}
}

func TestHandleMutationEventDropsMalformed(t *testing.T) {
	sink := memory.New()
	w := NewAuditWorker(sink, 1, time.Minute)

	// Missing operation: dropped without error so the queue drains.
	if err := w.HandleMutationEvent(context.Background(), &events.MutationEvent{ResourceType: "payee"}); err != nil {
		t.Fatalf("malformed event returned error: %v", err)
	}
	if len(sink.Entries()) != 0 {
		t.Fatal("malformed event was written")
	}
}
