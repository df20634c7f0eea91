package memory

import (
	"context"
	"testing"

	"budgetmcp/internal/core"
	"budgetmcp/internal/engine"
)

func seedStore(t *testing.T) (*Store, string, string, string) {
	t.Helper()
	s := New()
	ctx := context.Background()

	accountID, err := s.CreateAccount(ctx, core.Account{Name: "Checking"}, 100000)
	if err != nil {
		t.Fatal(err)
	}
	catID, err := s.CreateCategory(ctx, "Food", "")
	if err != nil {
		t.Fatal(err)
	}
	payeeID, err := s.CreatePayee(ctx, "Grocery Store")
	if err != nil {
		t.Fatal(err)
	}
	return s, accountID, catID, payeeID
}

func TestAccountBalanceTracksTransactions(t *testing.T) {
	s, accountID, catID, payeeID := seedStore(t)
	ctx := context.Background()

	_, err := s.CreateTransaction(ctx, engine.NewTransaction{
		AccountID:   accountID,
		Date:        "2025-01-10",
		AmountMinor: -2550,
		CategoryID:  catID,
		PayeeID:     payeeID,
	})
	if err != nil {
		t.Fatal(err)
	}

	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 {
		t.Fatalf("accounts = %d", len(accounts))
	}
	if accounts[0].BalanceMinor != 97450 {
		t.Fatalf("balance = %d, want 97450", accounts[0].BalanceMinor)
	}
}

func TestUpdateTransactionPatchSemantics(t *testing.T) {
	s, accountID, catID, _ := seedStore(t)
	ctx := context.Background()

	id, err := s.CreateTransaction(ctx, engine.NewTransaction{
		AccountID:   accountID,
		Date:        "2025-01-10",
		AmountMinor: -2550,
		Notes:       "weekly shop",
		CategoryID:  catID,
	})
	if err != nil {
		t.Fatal(err)
	}

	cleared := true
	if err := s.UpdateTransaction(ctx, engine.TransactionPatch{ID: id, Cleared: &cleared}); err != nil {
		t.Fatal(err)
	}

	tx, err := s.GetTransaction(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !tx.Cleared {
		t.Fatal("cleared flag not applied")
	}
	// Unset fields stay untouched.
	if tx.Notes != "weekly shop" || tx.AmountMinor != -2550 || tx.Date != "2025-01-10" {
		t.Fatalf("patch touched unset fields: %+v", tx)
	}
	if tx.CategoryName != "Food" {
		t.Fatalf("category name not resolved: %q", tx.CategoryName)
	}
}

func TestRunQueryFilterSortPaginate(t *testing.T) {
	s, accountID, catID, payeeID := seedStore(t)
	ctx := context.Background()

	amounts := []int64{-100, -300, -200, -500, -400}
	for i, amt := range amounts {
		_, err := s.CreateTransaction(ctx, engine.NewTransaction{
			AccountID:   accountID,
			Date:        "2025-01-1" + string(rune('0'+i)),
			AmountMinor: amt,
			CategoryID:  catID,
			PayeeID:     payeeID,
			Notes:       "coffee run",
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	res, err := s.RunQuery(ctx, engine.Query{
		AccountID:  accountID,
		SearchText: "coffee",
		SortBy:     "amount",
		SortAsc:    true,
		Limit:      2,
		Offset:     1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 5 {
		t.Fatalf("total = %d, want 5", res.Total)
	}
	if len(res.Transactions) != 2 {
		t.Fatalf("page size = %d, want 2", len(res.Transactions))
	}
	if res.Transactions[0].AmountMinor != -400 || res.Transactions[1].AmountMinor != -300 {
		t.Fatalf("page order = %d, %d", res.Transactions[0].AmountMinor, res.Transactions[1].AmountMinor)
	}
}

func TestBudgetMonthAggregation(t *testing.T) {
	s, accountID, catID, _ := seedStore(t)
	ctx := context.Background()

	if err := s.SetBudgetAmount(ctx, "2025-01", catID, 40000); err != nil {
		t.Fatal(err)
	}
	_, err := s.CreateTransaction(ctx, engine.NewTransaction{
		AccountID:   accountID,
		Date:        "2025-01-05",
		AmountMinor: -15000,
		CategoryID:  catID,
	})
	if err != nil {
		t.Fatal(err)
	}
	// Income and another month should not count as spending.
	_, _ = s.CreateTransaction(ctx, engine.NewTransaction{
		AccountID: accountID, Date: "2025-01-06", AmountMinor: 200000,
	})
	_, _ = s.CreateTransaction(ctx, engine.NewTransaction{
		AccountID: accountID, Date: "2025-02-01", AmountMinor: -9999, CategoryID: catID,
	})

	bm, err := s.GetBudgetMonth(ctx, "2025-01")
	if err != nil {
		t.Fatal(err)
	}
	if bm.IncomeMinor != 200000 {
		t.Fatalf("income = %d", bm.IncomeMinor)
	}
	if len(bm.Categories) != 1 {
		t.Fatalf("categories = %d", len(bm.Categories))
	}
	row := bm.Categories[0]
	if row.BudgetedMinor != 40000 || row.SpentMinor != 15000 || row.BalanceMinor != 25000 {
		t.Fatalf("row = %+v", row)
	}
}

func TestSplitSpendingCountsLineItems(t *testing.T) {
	s, accountID, catID, _ := seedStore(t)
	ctx := context.Background()
	otherCat, _ := s.CreateCategory(ctx, "Household", "")

	_, err := s.CreateTransaction(ctx, engine.NewTransaction{
		AccountID:   accountID,
		Date:        "2025-03-02",
		AmountMinor: -5000,
		Subtransactions: []core.Subtransaction{
			{AmountMinor: -3000, CategoryID: catID},
			{AmountMinor: -2000, CategoryID: otherCat},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	bm, err := s.GetBudgetMonth(ctx, "2025-03")
	if err != nil {
		t.Fatal(err)
	}
	bySpent := map[string]int64{}
	for _, row := range bm.Categories {
		bySpent[row.CategoryName] = row.SpentMinor
	}
	if bySpent["Food"] != 3000 || bySpent["Household"] != 2000 {
		t.Fatalf("split spending = %v", bySpent)
	}
}
