package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"budgetmcp/internal/core"
	"budgetmcp/internal/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAccountLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.CreateAccount(ctx, core.Account{Name: "Checking"}, 50000)
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.CreateTransaction(ctx, engine.NewTransaction{
		AccountID: id, Date: "2025-01-10", AmountMinor: -2550,
	})
	if err != nil {
		t.Fatal(err)
	}

	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 || accounts[0].BalanceMinor != 47450 {
		t.Fatalf("accounts = %+v", accounts)
	}

	if err := s.CloseAccount(ctx, id); err != nil {
		t.Fatal(err)
	}
	accounts, _ = s.ListAccounts(ctx)
	if !accounts[0].Closed {
		t.Fatal("account not closed")
	}

	if err := s.CloseAccount(ctx, "missing"); !errors.Is(err, core.ErrAccountNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestSplitTransactionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	acct, _ := s.CreateAccount(ctx, core.Account{Name: "Checking"}, 0)
	food, _ := s.CreateCategory(ctx, "Food", "")
	household, _ := s.CreateCategory(ctx, "Household", "")

	id, err := s.CreateTransaction(ctx, engine.NewTransaction{
		AccountID:   acct,
		Date:        "2025-02-01",
		AmountMinor: -5000,
		Subtransactions: []core.Subtransaction{
			{AmountMinor: -3000, CategoryID: food},
			{AmountMinor: -2000, CategoryID: household},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	tx, err := s.GetTransaction(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !tx.IsSplit() || len(tx.Subtransactions) != 2 {
		t.Fatalf("tx = %+v", tx)
	}
	if tx.SubtransactionTotal() != -5000 {
		t.Fatalf("sub total = %d", tx.SubtransactionTotal())
	}

	// Replacing the split rewrites the line items without touching the
	// parent's own fields.
	err = s.UpdateTransaction(ctx, engine.TransactionPatch{
		ID: id,
		Subtransactions: []core.Subtransaction{
			{AmountMinor: -5000, CategoryID: food, Notes: "all food"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	tx, _ = s.GetTransaction(ctx, id)
	if len(tx.Subtransactions) != 1 || tx.Subtransactions[0].Notes != "all food" {
		t.Fatalf("subs after replace = %+v", tx.Subtransactions)
	}
	if tx.AmountMinor != -5000 || tx.Date != "2025-02-01" {
		t.Fatalf("parent fields touched: %+v", tx)
	}

	// Deleting the parent cascades to line items; the account balance
	// only ever counted the parent.
	if err := s.DeleteTransaction(ctx, id); err != nil {
		t.Fatal(err)
	}
	accounts, _ := s.ListAccounts(ctx)
	if accounts[0].BalanceMinor != 0 {
		t.Fatalf("balance = %d", accounts[0].BalanceMinor)
	}
}

func TestRunQueryPagination(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	acct, _ := s.CreateAccount(ctx, core.Account{Name: "Checking"}, 0)
	payee, _ := s.CreatePayee(ctx, "Coffee Shop")

	dates := []string{"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-04"}
	for i, d := range dates {
		_, err := s.CreateTransaction(ctx, engine.NewTransaction{
			AccountID: acct, Date: d, AmountMinor: int64(-100 * (i + 1)), PayeeID: payee,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	res, err := s.RunQuery(ctx, engine.Query{
		SearchText: "coffee",
		Limit:      2,
		Offset:     2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 4 || len(res.Transactions) != 2 {
		t.Fatalf("total = %d, page = %d", res.Total, len(res.Transactions))
	}
	// Date descending by default: page two holds the two oldest.
	if res.Transactions[0].Date != "2025-01-02" || res.Transactions[1].Date != "2025-01-01" {
		t.Fatalf("page dates = %s, %s", res.Transactions[0].Date, res.Transactions[1].Date)
	}
	if res.Transactions[0].PayeeName != "Coffee Shop" {
		t.Fatalf("payee name not joined: %q", res.Transactions[0].PayeeName)
	}
}

func TestBudgetMonth(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	acct, _ := s.CreateAccount(ctx, core.Account{Name: "Checking"}, 0)
	food, _ := s.CreateCategory(ctx, "Food", "")

	if err := s.SetBudgetAmount(ctx, "2025-01", food, 40000); err != nil {
		t.Fatal(err)
	}
	if err := s.SetBudgetCarryover(ctx, "2025-01", food, true); err != nil {
		t.Fatal(err)
	}
	if err := s.SetBudgetAmount(ctx, "2025-01", "missing", 1); !errors.Is(err, core.ErrCategoryNotFound) {
		t.Fatalf("err = %v", err)
	}

	_, _ = s.CreateTransaction(ctx, engine.NewTransaction{
		AccountID: acct, Date: "2025-01-15", AmountMinor: -12500, CategoryID: food,
	})
	_, _ = s.CreateTransaction(ctx, engine.NewTransaction{
		AccountID: acct, Date: "2025-01-20", AmountMinor: 300000,
	})

	bm, err := s.GetBudgetMonth(ctx, "2025-01")
	if err != nil {
		t.Fatal(err)
	}
	if bm.IncomeMinor != 300000 {
		t.Fatalf("income = %d", bm.IncomeMinor)
	}
	if len(bm.Categories) != 1 {
		t.Fatalf("categories = %d", len(bm.Categories))
	}
	row := bm.Categories[0]
	if row.BudgetedMinor != 40000 || row.SpentMinor != 12500 || row.BalanceMinor != 27500 || !row.Carryover {
		t.Fatalf("row = %+v", row)
	}
}

func TestRulesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.CreateRule(ctx, core.Rule{
		Conditions: []core.RuleCondition{{Field: "payee", Op: "contains", Value: "Coffee"}},
		Actions:    []core.RuleAction{{Field: "category", Value: "cat-food"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	rules, err := s.ListRules(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 1 || rules[0].ConditionsOp != "and" {
		t.Fatalf("rules = %+v", rules)
	}
	if rules[0].Conditions[0].Value != "Coffee" {
		t.Fatalf("conditions = %+v", rules[0].Conditions)
	}

	rules[0].Actions[0].Value = "cat-out"
	if err := s.UpdateRule(ctx, rules[0]); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteRule(ctx, id); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteRule(ctx, id); !errors.Is(err, core.ErrRuleNotFound) {
		t.Fatalf("err = %v", err)
	}
}
