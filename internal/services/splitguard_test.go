package services

import (
	"errors"
	"testing"

	"budgetmcp/internal/core"
)

func strptr(s string) *string   { return &s }
func f64ptr(f float64) *float64 { return &f }
func boolptr(b bool) *bool      { return &b }

func TestGuardRejectsEmptySubtransactions(t *testing.T) {
	empty := []core.SubtransactionEdit{}
	cases := []core.TransactionUpdate{
		{ID: "t1", Subtransactions: &empty},
		// Other fields present must not rescue the request.
		{ID: "t1", Date: strptr("2025-01-01"), Cleared: boolptr(true), Subtransactions: &empty},
	}
	for _, u := range cases {
		_, warnings, err := PrepareTransactionUpdate(u)
		if !errors.Is(err, core.ErrEmptySubtransactions) {
			t.Fatalf("err = %v, want ErrEmptySubtransactions", err)
		}
		if warnings != nil {
			t.Fatalf("warnings on hard reject: %v", warnings)
		}
	}
}

func TestGuardRequiresID(t *testing.T) {
	_, _, err := PrepareTransactionUpdate(core.TransactionUpdate{})
	if !errors.Is(err, core.ErrMissingTransactionID) {
		t.Fatalf("err = %v", err)
	}
}

func TestGuardPassThroughNoWarnings(t *testing.T) {
	// Absent subtransactions and none of date/amount/notes: no advisory.
	u := core.TransactionUpdate{ID: "t1", Cleared: boolptr(true), CategoryID: strptr("c1")}
	patch, warnings, err := PrepareTransactionUpdate(u)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if patch.Cleared == nil || !*patch.Cleared {
		t.Fatal("cleared not carried into patch")
	}
	// Unset fields must stay unset in the payload.
	if patch.Date != nil || patch.Notes != nil || patch.AmountMinor != nil || patch.Subtransactions != nil {
		t.Fatalf("patch carries unset fields: %+v", patch)
	}
}

func TestGuardAdvisoryCoverage(t *testing.T) {
	t.Run("amount alone warns about split parents", func(t *testing.T) {
		_, warnings, err := PrepareTransactionUpdate(core.TransactionUpdate{
			ID: "t1", Amount: f64ptr(-12.34),
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(warnings) != 1 || warnings[0] != WarnSplitParentFields {
			t.Fatalf("warnings = %v", warnings)
		}
	})

	t.Run("subtransactions warn about persistence", func(t *testing.T) {
		subs := []core.SubtransactionEdit{{Amount: -10, CategoryID: "c1"}}
		_, warnings, err := PrepareTransactionUpdate(core.TransactionUpdate{
			ID: "t1", Subtransactions: &subs,
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(warnings) != 1 || warnings[0] != WarnSubtransactionUpdate {
			t.Fatalf("warnings = %v", warnings)
		}
	})

	t.Run("date plus subtransactions warns once", func(t *testing.T) {
		subs := []core.SubtransactionEdit{{Amount: -10}}
		_, warnings, err := PrepareTransactionUpdate(core.TransactionUpdate{
			ID: "t1", Date: strptr("2025-01-05"), Subtransactions: &subs,
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(warnings) != 1 || warnings[0] != WarnSubtransactionUpdate {
			t.Fatalf("warnings = %v", warnings)
		}
	})
}

func TestGuardConvertsAmountsToMinorUnits(t *testing.T) {
	subs := []core.SubtransactionEdit{
		{Amount: -10.505, CategoryID: "c1"},
		{Amount: -2.5, CategoryID: "c2", Notes: "second leg"},
	}
	patch, _, err := PrepareTransactionUpdate(core.TransactionUpdate{
		ID: "t1", Subtransactions: &subs, Amount: f64ptr(-13.01),
	})
	if err != nil {
		t.Fatal(err)
	}
	if patch.AmountMinor == nil || *patch.AmountMinor != -1301 {
		t.Fatalf("amount = %v", patch.AmountMinor)
	}
	if len(patch.Subtransactions) != 2 {
		t.Fatalf("subs = %+v", patch.Subtransactions)
	}
	if patch.Subtransactions[0].AmountMinor != -1051 {
		t.Fatalf("sub amount = %d", patch.Subtransactions[0].AmountMinor)
	}
	if patch.Subtransactions[1].Notes != "second leg" {
		t.Fatalf("sub notes = %q", patch.Subtransactions[1].Notes)
	}
}

func TestGuardValidatesDate(t *testing.T) {
	_, _, err := PrepareTransactionUpdate(core.TransactionUpdate{
		ID: "t1", Date: strptr("01/05/2025"),
	})
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("err = %v", err)
	}
}
