// Package engine defines the boundary to the external budgeting
// engine. The server treats the engine as an opaque asynchronous
// service: all storage, querying, and business rules live behind this
// interface, and everything above it works with typed core entities.
package engine

import (
	"context"

	"budgetmcp/internal/core"
)

// NewTransaction is the input to CreateTransaction. Amounts are
// already in minor units by the time they reach the engine.
type NewTransaction struct {
	AccountID       string
	Date            string
	AmountMinor     int64
	Notes           string
	CategoryID      string
	PayeeID         string
	Cleared         bool
	Subtransactions []core.Subtransaction
}

// TransactionPatch is the field-level update payload. Nil pointers are
// never sent to the engine; partial update semantics are preserved
// field by field, not defaulted. Subtransactions is nil when the split
// structure is untouched; the update guard guarantees it is never a
// non-nil empty list.
type TransactionPatch struct {
	ID              string
	Date            *string
	CategoryID      *string
	PayeeID         *string
	Notes           *string
	AmountMinor     *int64
	Cleared         *bool
	Subtransactions []core.Subtransaction
}

// Query is the generic filter/sort/paginate primitive over the
// transaction table.
type Query struct {
	AccountID      string
	CategoryID     string
	PayeeID        string
	StartDate      string
	EndDate        string
	MinAmountMinor *int64
	MaxAmountMinor *int64
	SearchText     string
	SortBy         string // "date" or "amount"; date descending by default
	SortAsc        bool
	Limit          int
	Offset         int
}

// QueryResult carries one page of matches plus the total match count
// for pagination metadata.
type QueryResult struct {
	Transactions []core.Transaction
	Total        int
}

// Engine is the full surface consumed from the external budgeting
// engine. Every call may suspend; implementations must honor ctx.
type Engine interface {
	ListAccounts(ctx context.Context) ([]core.Account, error)
	CreateAccount(ctx context.Context, account core.Account, initialBalanceMinor int64) (string, error)
	CloseAccount(ctx context.Context, id string) error

	ListCategoryGroups(ctx context.Context) ([]core.CategoryGroup, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	CreateCategory(ctx context.Context, name, groupID string) (string, error)
	UpdateCategory(ctx context.Context, id, name string) error
	DeleteCategory(ctx context.Context, id string) error

	ListPayees(ctx context.Context) ([]core.Payee, error)
	CreatePayee(ctx context.Context, name string) (string, error)
	UpdatePayee(ctx context.Context, id, name string) error

	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	GetTransactions(ctx context.Context, accountID, startDate, endDate string) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, tx NewTransaction) (string, error)
	UpdateTransaction(ctx context.Context, patch TransactionPatch) error
	DeleteTransaction(ctx context.Context, id string) error
	RunQuery(ctx context.Context, q Query) (QueryResult, error)

	GetBudgetMonth(ctx context.Context, month string) (core.BudgetMonth, error)
	SetBudgetAmount(ctx context.Context, month, categoryID string, amountMinor int64) error
	SetBudgetCarryover(ctx context.Context, month, categoryID string, carryover bool) error
	HoldForNextMonth(ctx context.Context, month string, amountMinor int64) error

	ListRules(ctx context.Context) ([]core.Rule, error)
	CreateRule(ctx context.Context, rule core.Rule) (string, error)
	UpdateRule(ctx context.Context, rule core.Rule) error
	DeleteRule(ctx context.Context, id string) error

	Close() error
}
