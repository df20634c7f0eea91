package tools

import (
	"context"
	"fmt"
	"sort"

	"budgetmcp/internal/core"
	"budgetmcp/internal/engine"
	"budgetmcp/internal/response"
)

type categorySpending struct {
	CategoryID   string `json:"categoryId,omitempty"`
	CategoryName string `json:"categoryName"`
	SpentMinor   int64  `json:"spent"`
	Spent        string `json:"spentFormatted"`
	Count        int    `json:"transactionCount"`
}

func reportTools() []Tool {
	return []Tool{
		{
			Name:         "spending_by_category",
			Description:  "Aggregate spending per category over a date range.",
			ResourceType: "spending",
			ReadOnly:     true,
			InputSchema: schemaObject(map[string]any{
				"startDate": propString("Range start, YYYY-MM-DD"),
				"endDate":   propString("Range end, YYYY-MM-DD"),
				"accountId": propString("Restrict to one account"),
			}, "startDate", "endDate"),
			handler: handleSpendingByCategory,
		},
		{
			Name:         "monthly_summary",
			Description:  "Summarize one budget month: income, spending, and category performance.",
			ResourceType: "summary",
			ReadOnly:     true,
			InputSchema: schemaObject(map[string]any{
				"month": propString("Budget month, YYYY-MM"),
			}, "month"),
			handler: handleMonthlySummary,
		},
	}
}

func handleSpendingByCategory(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	startDate, err := args.RequireString("startDate")
	if err != nil {
		return response.Envelope{}, err
	}
	endDate, err := args.RequireString("endDate")
	if err != nil {
		return response.Envelope{}, err
	}
	if err := core.ValidateDate(startDate); err != nil {
		return response.Envelope{}, err
	}
	if err := core.ValidateDate(endDate); err != nil {
		return response.Envelope{}, err
	}

	q := engine.Query{StartDate: startDate, EndDate: endDate, Limit: 10000}
	q.AccountID, _ = args.String("accountId")
	res, err := eng.RunQuery(ctx, q)
	if err != nil {
		return response.Envelope{}, err
	}

	cats, err := eng.ListCategories(ctx)
	if err != nil {
		return response.Envelope{}, err
	}
	names := make(map[string]string, len(cats))
	for _, cat := range cats {
		names[cat.ID] = cat.Name
	}

	rows := aggregateSpending(res.Transactions, names)
	var totalMinor int64
	for _, row := range rows {
		totalMinor += row.SpentMinor
	}

	summary := fmt.Sprintf("Spending across %d categories between %s and %s totals %s",
		len(rows), startDate, endDate, core.FormatAmount(totalMinor))
	builder := response.NewReport(response.OpReport, "spending", summary).
		Data(rows).
		Period(startDate, endDate).
		Meta("total", core.FormatAmount(totalMinor))
	for _, row := range rows {
		builder.Section(row.CategoryName,
			fmt.Sprintf("%s across %d transactions", row.Spent, row.Count), nil)
	}
	return builder.Build(), nil
}

// aggregateSpending sums negative amounts per category. Split parents
// are expanded into their line items so spending lands on the line
// item categories rather than on the parent. Names come from the
// catalog map because line items carry only category IDs.
func aggregateSpending(txs []core.Transaction, names map[string]string) []categorySpending {
	type bucket struct {
		name  string
		spent int64
		count int
	}
	buckets := make(map[string]*bucket)
	add := func(id string, amount int64) {
		if amount >= 0 {
			return
		}
		name := names[id]
		if id == "" || name == "" {
			name = "Uncategorized"
		}
		b, ok := buckets[id]
		if !ok {
			b = &bucket{name: name}
			buckets[id] = b
		}
		b.spent += -amount
		b.count++
	}
	for _, tx := range txs {
		if tx.IsSplit() {
			for _, sub := range tx.Subtransactions {
				add(sub.CategoryID, sub.AmountMinor)
			}
			continue
		}
		add(tx.CategoryID, tx.AmountMinor)
	}

	rows := make([]categorySpending, 0, len(buckets))
	for id, b := range buckets {
		rows = append(rows, categorySpending{
			CategoryID:   id,
			CategoryName: b.name,
			SpentMinor:   b.spent,
			Spent:        core.FormatAmount(b.spent),
			Count:        b.count,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SpentMinor != rows[j].SpentMinor {
			return rows[i].SpentMinor > rows[j].SpentMinor
		}
		return rows[i].CategoryName < rows[j].CategoryName
	})
	return rows
}

func handleMonthlySummary(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	month, err := args.RequireString("month")
	if err != nil {
		return response.Envelope{}, err
	}
	if err := core.ValidateMonth(month); err != nil {
		return response.Envelope{}, err
	}
	bm, err := eng.GetBudgetMonth(ctx, month)
	if err != nil {
		return response.Envelope{}, err
	}

	net := bm.IncomeMinor - bm.SpentMinor
	var overspent []core.BudgetCategory
	for _, cat := range bm.Categories {
		if cat.BalanceMinor < 0 {
			overspent = append(overspent, cat)
		}
	}

	summary := fmt.Sprintf("In %s income was %s, spending was %s, net %s",
		month, core.FormatAmount(bm.IncomeMinor), core.FormatAmount(bm.SpentMinor),
		core.FormatAmount(net))

	builder := response.NewReport(response.OpAnalyze, "summary", summary).
		Data(bm).
		Meta("month", month).
		Meta("net", core.FormatAmount(net)).
		Section("Income", core.FormatAmount(bm.IncomeMinor), nil).
		Section("Spending",
			fmt.Sprintf("%s spent of %s budgeted across %d categories",
				core.FormatAmount(bm.SpentMinor), core.FormatAmount(bm.BudgetedMinor),
				len(bm.Categories)), nil)

	if len(overspent) > 0 {
		names := make([]string, len(overspent))
		for i, cat := range overspent {
			names[i] = fmt.Sprintf("%s (%s)", cat.CategoryName, core.FormatAmount(cat.BalanceMinor))
		}
		builder.Section("Overspent categories",
			fmt.Sprintf("%d categories are over budget", len(overspent)), names)
	}
	return builder.Build(), nil
}
