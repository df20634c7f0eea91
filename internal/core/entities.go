package core

import (
	"errors"
	"strings"
	"time"
)

// Entities are validated once, at the boundary where engine responses
// are first received. Internal code never inspects untyped payloads.

type (
	// Account is a budget or off-budget account known to the engine.
	Account struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Type         string `json:"type,omitempty"`
		Closed       bool   `json:"closed"`
		OffBudget    bool   `json:"offBudget"`
		BalanceMinor int64  `json:"balance"`
	}

	// CategoryGroup groups categories for presentation.
	CategoryGroup struct {
		ID       string     `json:"id"`
		Name     string     `json:"name"`
		Income   bool       `json:"isIncome"`
		Children []Category `json:"categories,omitempty"`
	}

	Category struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		GroupID string `json:"groupId,omitempty"`
		Income  bool   `json:"isIncome"`
	}

	Payee struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	// Subtransaction is one line item of a split transaction. The engine
	// supports a single level of nesting, so it carries no children.
	Subtransaction struct {
		ID          string `json:"id,omitempty"`
		AmountMinor int64  `json:"amount"`
		CategoryID  string `json:"categoryId,omitempty"`
		Notes       string `json:"notes,omitempty"`
	}

	// Transaction is the domain-mapped read shape. A transaction with
	// Subtransactions present is a split parent; its own amount is the
	// authoritative total and the line items should sum to it, though
	// the engine does not enforce that.
	Transaction struct {
		ID              string           `json:"id"`
		AccountID       string           `json:"accountId"`
		Date            string           `json:"date"`
		AmountMinor     int64            `json:"amount"`
		Notes           string           `json:"notes,omitempty"`
		CategoryID      string           `json:"categoryId,omitempty"`
		CategoryName    string           `json:"categoryName,omitempty"`
		PayeeID         string           `json:"payeeId,omitempty"`
		PayeeName       string           `json:"payeeName,omitempty"`
		Cleared         bool             `json:"cleared"`
		Subtransactions []Subtransaction `json:"subtransactions,omitempty"`
	}

	// BudgetCategory is one category row of a budget month.
	BudgetCategory struct {
		CategoryID    string `json:"categoryId"`
		CategoryName  string `json:"categoryName"`
		BudgetedMinor int64  `json:"budgeted"`
		SpentMinor    int64  `json:"spent"`
		BalanceMinor  int64  `json:"balance"`
		Carryover     bool   `json:"carryover"`
	}

	// BudgetMonth is the engine's budget table for one calendar month.
	BudgetMonth struct {
		Month         string           `json:"month"`
		IncomeMinor   int64            `json:"income"`
		BudgetedMinor int64            `json:"budgeted"`
		SpentMinor    int64            `json:"spent"`
		Categories    []BudgetCategory `json:"categories"`
	}

	RuleCondition struct {
		Field string `json:"field"`
		Op    string `json:"op"`
		Value string `json:"value"`
	}

	RuleAction struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}

	// Rule is an engine-side categorization rule.
	Rule struct {
		ID           string          `json:"id"`
		Stage        string          `json:"stage,omitempty"`
		ConditionsOp string          `json:"conditionsOp"`
		Conditions   []RuleCondition `json:"conditions"`
		Actions      []RuleAction    `json:"actions"`
	}
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrInvalidDate          = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidMonth         = errors.New("invalid month, expected YYYY-MM")
	ErrEmptyName            = errors.New("name must not be empty")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountClosed        = errors.New("account is closed")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrPayeeNotFound        = errors.New("payee not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrRuleNotFound         = errors.New("rule not found")
	ErrMissingTransactionID = errors.New("transaction id is required")

	// ErrEmptySubtransactions guards the one engine call pattern known to
	// be destructive. It gets dedicated wording because the consequence
	// is data corruption, not just a bad argument.
	ErrEmptySubtransactions = errors.New(
		"subtransactions must not be an empty array: clearing a split's line items " +
			"can corrupt the parent transaction and crash the budgeting application; " +
			"delete the transaction and recreate it without a split instead")
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// ValidateDate checks an ISO calendar date string.
func ValidateDate(s string) error {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// ValidateMonth checks a YYYY-MM budget month string.
func ValidateMonth(s string) error {
	if _, err := time.Parse(monthLayout, s); err != nil {
		return ErrInvalidMonth
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.AccountID == "" {
		return errors.New("transaction account id is required")
	}
	return ValidateDate(t.Date)
}

// IsSplit reports whether the transaction is a split parent.
func (t Transaction) IsSplit() bool {
	return len(t.Subtransactions) > 0
}

// SubtransactionTotal sums the line items of a split parent. Consumers
// should warn, not fail, when it differs from the parent amount.
func (t Transaction) SubtransactionTotal() int64 {
	var total int64
	for _, sub := range t.Subtransactions {
		total += sub.AmountMinor
	}
	return total
}
