// Package services holds the read-side lookup helpers and the
// split-transaction update guard that tool handlers compose around the
// engine.
package services

import (
	"context"
	"strings"

	"budgetmcp/internal/core"
	"budgetmcp/internal/engine"
)

// Lookup resolves display names to IDs and checks account validity.
// Category and payee lists are small (tens to low hundreds), so a
// linear scan per call is fine.
type Lookup struct {
	engine engine.Engine
}

func NewLookup(eng engine.Engine) *Lookup {
	return &Lookup{engine: eng}
}

// FindCategoryByName returns the category whose name matches
// case-insensitively, or core.ErrCategoryNotFound.
func (l *Lookup) FindCategoryByName(ctx context.Context, name string) (core.Category, error) {
	cats, err := l.engine.ListCategories(ctx)
	if err != nil {
		return core.Category{}, err
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return core.Category{}, core.ErrCategoryNotFound
}

// FindPayeeByName returns the payee whose name matches
// case-insensitively, or core.ErrPayeeNotFound.
func (l *Lookup) FindPayeeByName(ctx context.Context, name string) (core.Payee, error) {
	payees, err := l.engine.ListPayees(ctx)
	if err != nil {
		return core.Payee{}, err
	}
	for _, p := range payees {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return core.Payee{}, core.ErrPayeeNotFound
}

// ValidateAccount confirms the account exists and is open. Called
// before any mutation that targets an account; side-effect free.
func (l *Lookup) ValidateAccount(ctx context.Context, accountID string) (core.Account, error) {
	accounts, err := l.engine.ListAccounts(ctx)
	if err != nil {
		return core.Account{}, err
	}
	for _, a := range accounts {
		if a.ID == accountID {
			if a.Closed {
				return core.Account{}, core.ErrAccountClosed
			}
			return a, nil
		}
	}
	return core.Account{}, core.ErrAccountNotFound
}
