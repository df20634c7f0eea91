package engine

import (
	"context"
	"errors"
	"testing"

	"budgetmcp/internal/core"
)

type stubEngine struct {
	Engine
	closed bool
}

func (s *stubEngine) Close() error {
	s.closed = true
	return nil
}

func (s *stubEngine) ListAccounts(context.Context) ([]core.Account, error) {
	return nil, nil
}

func TestSessionAcquireIsLazyAndIdempotent(t *testing.T) {
	opens := 0
	eng := &stubEngine{}
	sess := NewSession(func(ctx context.Context, budgetID string) (Engine, error) {
		opens++
		if budgetID != "b1" {
			t.Fatalf("budget id = %q", budgetID)
		}
		return eng, nil
	}, "b1", nil)

	if sess.Initialized() {
		t.Fatal("session should start uninitialized")
	}
	for i := 0; i < 3; i++ {
		got, err := sess.Acquire(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if got != eng {
			t.Fatal("wrong engine returned")
		}
	}
	if opens != 1 {
		t.Fatalf("opener called %d times, want 1", opens)
	}
}

func TestSessionAcquireFailureResets(t *testing.T) {
	boom := errors.New("connection refused")
	calls := 0
	sess := NewSession(func(context.Context, string) (Engine, error) {
		calls++
		return nil, boom
	}, "b1", nil)

	if _, err := sess.Acquire(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if sess.Initialized() {
		t.Fatal("failed init must leave session reset")
	}
	// No automatic retry of the original request; the next Acquire is a
	// fresh attempt.
	if calls != 1 {
		t.Fatalf("opener called %d times", calls)
	}
}

func TestSessionShutdownClosesEngine(t *testing.T) {
	eng := &stubEngine{}
	sess := NewSession(func(context.Context, string) (Engine, error) {
		return eng, nil
	}, "b1", nil)

	if _, err := sess.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := sess.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if !eng.closed {
		t.Fatal("engine not closed")
	}
	if sess.Initialized() {
		t.Fatal("session still initialized after shutdown")
	}
	if err := sess.Shutdown(); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
}

func TestSessionSwitchBudget(t *testing.T) {
	eng := &stubEngine{}
	sess := NewSession(func(context.Context, string) (Engine, error) {
		return eng, nil
	}, "b1", nil)
	if _, err := sess.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Same budget already loaded: skip the reopen.
	if err := sess.SwitchBudget(context.Background(), "b1"); err != nil {
		t.Fatal(err)
	}
	if eng.closed || !sess.Initialized() {
		t.Fatal("same-budget switch must not tear down the engine")
	}

	if err := sess.SwitchBudget(context.Background(), "b2"); err != nil {
		t.Fatal(err)
	}
	if !eng.closed {
		t.Fatal("old engine not closed on switch")
	}
	if sess.BudgetID() != "b2" {
		t.Fatalf("budget id = %q", sess.BudgetID())
	}
}

func TestSessionSwitchBudgetHonorsCancellation(t *testing.T) {
	eng := &stubEngine{}
	sess := NewSession(func(context.Context, string) (Engine, error) {
		return eng, nil
	}, "b1", nil)
	if _, err := sess.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Same-budget no-op still succeeds.
	if err := sess.SwitchBudget(ctx, "b1"); err != nil {
		t.Fatal(err)
	}

	err := sess.SwitchBudget(ctx, "b2")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if eng.closed {
		t.Fatal("engine torn down despite cancelled switch")
	}
	if sess.BudgetID() != "b1" {
		t.Fatalf("budget id = %q, want b1 untouched", sess.BudgetID())
	}
}
