package services

import (
	"context"
	"errors"
	"testing"

	"budgetmcp/internal/core"
	"budgetmcp/internal/engine/memory"
)

func seedLookup(t *testing.T) (*Lookup, string, string) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	openID, err := store.CreateAccount(ctx, core.Account{Name: "Checking"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	closedID, err := store.CreateAccount(ctx, core.Account{Name: "Old Savings"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.CloseAccount(ctx, closedID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateCategory(ctx, "Groceries", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreatePayee(ctx, "Corner Shop"); err != nil {
		t.Fatal(err)
	}
	return NewLookup(store), openID, closedID
}

func TestFindCategoryByNameCaseInsensitive(t *testing.T) {
	lookup, _, _ := seedLookup(t)
	ctx := context.Background()

	for _, name := range []string{"Groceries", "groceries", "GROCERIES"} {
		cat, err := lookup.FindCategoryByName(ctx, name)
		if err != nil {
			t.Fatalf("%q: %v", name, err)
		}
		if cat.Name != "Groceries" {
			t.Fatalf("%q resolved to %q", name, cat.Name)
		}
	}

	if _, err := lookup.FindCategoryByName(ctx, "Grocerie"); !errors.Is(err, core.ErrCategoryNotFound) {
		t.Fatalf("partial match must not resolve: %v", err)
	}
}

func TestFindPayeeByName(t *testing.T) {
	lookup, _, _ := seedLookup(t)
	ctx := context.Background()

	payee, err := lookup.FindPayeeByName(ctx, "corner shop")
	if err != nil {
		t.Fatal(err)
	}
	if payee.Name != "Corner Shop" {
		t.Fatalf("payee = %+v", payee)
	}
	if _, err := lookup.FindPayeeByName(ctx, "Unknown"); !errors.Is(err, core.ErrPayeeNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestValidateAccount(t *testing.T) {
	lookup, openID, closedID := seedLookup(t)
	ctx := context.Background()

	if _, err := lookup.ValidateAccount(ctx, openID); err != nil {
		t.Fatalf("open account rejected: %v", err)
	}
	if _, err := lookup.ValidateAccount(ctx, closedID); !errors.Is(err, core.ErrAccountClosed) {
		t.Fatalf("err = %v", err)
	}
	if _, err := lookup.ValidateAccount(ctx, "missing"); !errors.Is(err, core.ErrAccountNotFound) {
		t.Fatalf("err = %v", err)
	}
}
