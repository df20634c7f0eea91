package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Opener connects to the engine's data location and loads one budget.
type Opener func(ctx context.Context, budgetID string) (Engine, error)

// Session owns the engine connection lifecycle for one transport
// connection. Lifecycle state lives here, not in module-level
// variables, so sessions stay isolated and testable.
type Session struct {
	mu       sync.Mutex
	opener   Opener
	logger   *slog.Logger
	budgetID string
	engine   Engine
}

// NewSession returns an uninitialized session bound to a budget ID.
func NewSession(opener Opener, budgetID string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{opener: opener, budgetID: budgetID, logger: logger}
}

// Acquire lazily initializes the engine on first use and returns it.
// When the same budget is already loaded the open is skipped. A failed
// open gets one cleanup-and-reset pass; the original request is not
// retried.
func (s *Session) Acquire(ctx context.Context) (Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine != nil {
		return s.engine, nil
	}

	eng, err := s.opener(ctx, s.budgetID)
	if err != nil {
		s.logger.Warn("engine init failed, resetting session",
			"budget_id", s.budgetID, "error", err)
		s.reset()
		return nil, fmt.Errorf("initialize engine for budget %s: %w", s.budgetID, err)
	}

	s.engine = eng
	s.logger.Info("engine initialized", "budget_id", s.budgetID)
	return s.engine, nil
}

// SwitchBudget shuts the current engine down and points the session at
// another budget. A no-op when the budget is already loaded.
func (s *Session) SwitchBudget(ctx context.Context, budgetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if budgetID == s.budgetID && s.engine != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("switch budget: %w", err)
	}
	if s.engine != nil {
		if err := s.engine.Close(); err != nil {
			s.logger.Warn("engine close during budget switch", "error", err)
		}
	}
	s.reset()
	s.budgetID = budgetID
	return nil
}

// Shutdown tears the engine connection down, bounding resource growth
// between request cycles. Safe to call repeatedly.
func (s *Session) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return nil
	}
	err := s.engine.Close()
	s.reset()
	if err != nil {
		return fmt.Errorf("shutdown engine: %w", err)
	}
	s.logger.Info("engine shut down", "budget_id", s.budgetID)
	return nil
}

// BudgetID returns the budget the session is bound to.
func (s *Session) BudgetID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgetID
}

// Initialized reports whether an engine is currently loaded.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine != nil
}

func (s *Session) reset() {
	s.engine = nil
}

// ErrNoBudget is returned by openers when the requested budget does
// not exist at the data location.
var ErrNoBudget = errors.New("budget not found")
