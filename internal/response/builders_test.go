package response

import (
	"errors"
	"reflect"
	"testing"

	"budgetmcp/internal/core"
)

func TestQueryAutoSummary(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		env := NewQuery("transaction", []string{}).Build()
		if env.Summary != "Retrieved 0 transactions" {
			t.Fatalf("summary = %q", env.Summary)
		}
		if env.Operation != OpQuery {
			t.Fatalf("operation = %q", env.Operation)
		}
	})

	t.Run("single non-array item", func(t *testing.T) {
		env := NewQuery("account", struct{ ID string }{"a1"}).Build()
		if env.Summary != "Retrieved 1 account" {
			t.Fatalf("summary = %q", env.Summary)
		}
	})

	t.Run("explicit count wins over data length", func(t *testing.T) {
		env := NewQuery("payee", []int{1, 2, 3}).Count(10).Build()
		if env.Summary != "Retrieved 10 payees" {
			t.Fatalf("summary = %q", env.Summary)
		}
		if env.Metadata["count"] != 10 {
			t.Fatalf("metadata count = %v", env.Metadata["count"])
		}
	})

	t.Run("caller summary passes through", func(t *testing.T) {
		env := NewQuery("account", nil).Summary("Two open accounts").Build()
		if env.Summary != "Two open accounts" {
			t.Fatalf("summary = %q", env.Summary)
		}
	})
}

func TestQueryMetadataPassThrough(t *testing.T) {
	filters := map[string]any{"accountId": "a1"}
	env := NewQuery("transaction", []int{1}).
		Filters(filters).
		Period("2025-01-01", "2025-01-31").
		Pagination(Pagination{Limit: 50, Offset: 0, Total: 120, HasMore: true}).
		Build()

	if !reflect.DeepEqual(env.Metadata["filters"], filters) {
		t.Fatalf("filters not passed through: %v", env.Metadata["filters"])
	}
	p, ok := env.Metadata["pagination"].(Pagination)
	if !ok || !p.HasMore || p.Total != 120 {
		t.Fatalf("pagination = %v", env.Metadata["pagination"])
	}
}

func TestMutationIDNormalization(t *testing.T) {
	single := NewMutation(OpUpdate, "transaction", "t1").Build()
	list := NewMutation(OpUpdate, "transaction", []string{"t1"}...).Build()

	if single.Affected.Count != 1 || list.Affected.Count != 1 {
		t.Fatalf("counts = %d, %d", single.Affected.Count, list.Affected.Count)
	}
	if single.Summary != list.Summary {
		t.Fatalf("summaries differ: %q vs %q", single.Summary, list.Summary)
	}
	if single.Summary != "Updated 1 transaction (ID: t1)" {
		t.Fatalf("summary = %q", single.Summary)
	}
}

func TestMutationAutoSummaryVerbs(t *testing.T) {
	cases := []struct {
		op   Operation
		want string
	}{
		{OpCreate, "Created 2 transactions"},
		{OpUpdate, "Updated 2 transactions"},
		{OpDelete, "Deleted 2 transactions"},
	}
	for _, tc := range cases {
		env := NewMutation(tc.op, "transaction", "t1", "t2").Build()
		if env.Summary != tc.want {
			t.Fatalf("%s summary = %q, want %q", tc.op, env.Summary, tc.want)
		}
	}
}

func TestMutationSummaryPluralSuffix(t *testing.T) {
	// Plural forms are a plain "s" suffix, irregular nouns included.
	env := NewMutation(OpCreate, "category", "c1", "c2").Build()
	if env.Summary != "Created 2 categorys" {
		t.Fatalf("summary = %q", env.Summary)
	}
}

func TestMutationChangesShallowMerge(t *testing.T) {
	env := NewMutation(OpUpdate, "transaction", "t1").
		Meta("engine", "sqlite").
		Changes(Changes{
			UpdatedFields: []string{"cleared"},
			NewValues:     map[string]any{"cleared": true},
		}).
		Warnings("verify persistence").
		Build()

	if env.Metadata["engine"] != "sqlite" {
		t.Fatal("existing metadata entry was dropped by Changes")
	}
	c, ok := env.Metadata["changes"].(Changes)
	if !ok || len(c.UpdatedFields) != 1 || c.UpdatedFields[0] != "cleared" {
		t.Fatalf("changes = %v", env.Metadata["changes"])
	}
	w, ok := env.Metadata["warnings"].([]string)
	if !ok || len(w) != 1 {
		t.Fatalf("warnings = %v", env.Metadata["warnings"])
	}
}

func TestReportRequiresCallerSummary(t *testing.T) {
	env := NewReport(OpReport, "spending", "January spending by category").
		Section("Top categories", "Food led spending at $420.00", nil).
		Period("2025-01-01", "2025-01-31").
		Build()

	if env.Summary != "January spending by category" {
		t.Fatalf("summary = %q", env.Summary)
	}
	if len(env.Sections) != 1 || env.Sections[0].Title != "Top categories" {
		t.Fatalf("sections = %v", env.Sections)
	}
	if env.Operation != OpReport {
		t.Fatalf("operation = %q", env.Operation)
	}
}

func TestErrorEnvelopeClassification(t *testing.T) {
	cases := []struct {
		err  error
		kind ErrorKind
	}{
		{core.ErrEmptySubtransactions, ErrKindDestructive},
		{core.ErrAccountClosed, ErrKindReference},
		{core.ErrInvalidDate, ErrKindValidation},
		{errors.New("engine connection refused"), ErrKindEngine},
	}
	for _, tc := range cases {
		env := NewError("transaction", tc.err)
		if env.Operation != OpError {
			t.Fatalf("operation = %q", env.Operation)
		}
		if env.Error == nil || env.Error.Kind != tc.kind {
			t.Fatalf("error %v classified as %v, want %v", tc.err, env.Error, tc.kind)
		}
	}
}
