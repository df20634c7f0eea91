package core

import (
	"encoding/json"
	"testing"
)

func TestValidateDate(t *testing.T) {
	if err := ValidateDate("2025-03-14"); err != nil {
		t.Fatalf("valid date rejected: %v", err)
	}
	for _, bad := range []string{"", "2025-3-14", "14/03/2025", "2025-13-01"} {
		if err := ValidateDate(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestValidateMonth(t *testing.T) {
	if err := ValidateMonth("2025-03"); err != nil {
		t.Fatalf("valid month rejected: %v", err)
	}
	if err := ValidateMonth("2025-03-01"); err == nil {
		t.Fatal("full date should not validate as month")
	}
}

func TestTransactionSplitHelpers(t *testing.T) {
	tx := Transaction{
		ID:          "t1",
		AccountID:   "a1",
		Date:        "2025-01-02",
		AmountMinor: -5000,
		Subtransactions: []Subtransaction{
			{AmountMinor: -3000},
			{AmountMinor: -2000},
		},
	}
	if !tx.IsSplit() {
		t.Fatal("expected split parent")
	}
	if got := tx.SubtransactionTotal(); got != -5000 {
		t.Fatalf("SubtransactionTotal = %d, want -5000", got)
	}
}

func TestTransactionUpdateTriState(t *testing.T) {
	t.Run("absent stays nil", func(t *testing.T) {
		var u TransactionUpdate
		if err := json.Unmarshal([]byte(`{"id":"t1","cleared":true}`), &u); err != nil {
			t.Fatal(err)
		}
		if u.Subtransactions != nil {
			t.Fatal("absent subtransactions must decode to nil")
		}
		if u.Cleared == nil || !*u.Cleared {
			t.Fatal("cleared not decoded")
		}
	})

	t.Run("empty array decodes non-nil", func(t *testing.T) {
		var u TransactionUpdate
		if err := json.Unmarshal([]byte(`{"id":"t1","subtransactions":[]}`), &u); err != nil {
			t.Fatal(err)
		}
		if u.Subtransactions == nil {
			t.Fatal("explicit [] must decode to a non-nil pointer")
		}
		if len(*u.Subtransactions) != 0 {
			t.Fatalf("expected empty list, got %d items", len(*u.Subtransactions))
		}
	})

	t.Run("populated list", func(t *testing.T) {
		var u TransactionUpdate
		body := `{"id":"t1","subtransactions":[{"amount":-12.34,"categoryId":"c1"}]}`
		if err := json.Unmarshal([]byte(body), &u); err != nil {
			t.Fatal(err)
		}
		if u.Subtransactions == nil || len(*u.Subtransactions) != 1 {
			t.Fatal("populated list not decoded")
		}
	})
}
