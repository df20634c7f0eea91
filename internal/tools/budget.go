package tools

import (
	"context"

	"budgetmcp/internal/core"
	"budgetmcp/internal/engine"
	"budgetmcp/internal/response"
)

// budgetCategoryView renders one budget row with formatted money
// alongside the raw minor units.
type budgetCategoryView struct {
	core.BudgetCategory
	Budgeted string `json:"budgetedFormatted"`
	Spent    string `json:"spentFormatted"`
	Balance  string `json:"balanceFormatted"`
}

func budgetTools() []Tool {
	return []Tool{
		{
			Name:         "get_budget_month",
			Description:  "Read the budget table for one month: income, budgeted, spent, per-category rows.",
			ResourceType: "budget",
			ReadOnly:     true,
			InputSchema: schemaObject(map[string]any{
				"month": propString("Budget month, YYYY-MM"),
			}, "month"),
			handler: handleGetBudgetMonth,
		},
		{
			Name:         "set_budget_amount",
			Description:  "Set the budgeted amount for a category in a month.",
			ResourceType: "budget",
			InputSchema: schemaObject(map[string]any{
				"month":      propString("Budget month, YYYY-MM"),
				"categoryId": propString("Category to budget"),
				"amount":     propNumber("Budgeted amount in dollars"),
			}, "month", "categoryId", "amount"),
			handler: handleSetBudgetAmount,
		},
		{
			Name:         "set_budget_carryover",
			Description:  "Enable or disable balance carryover for a category in a month.",
			ResourceType: "budget",
			InputSchema: schemaObject(map[string]any{
				"month":      propString("Budget month, YYYY-MM"),
				"categoryId": propString("Category to flag"),
				"carryover":  propBool("Whether leftover balance rolls into the next month"),
			}, "month", "categoryId", "carryover"),
			handler: handleSetBudgetCarryover,
		},
		{
			Name:         "hold_budget_for_next_month",
			Description:  "Hold part of this month's available funds for next month.",
			ResourceType: "budget",
			InputSchema: schemaObject(map[string]any{
				"month":  propString("Budget month, YYYY-MM"),
				"amount": propNumber("Amount to hold in dollars"),
			}, "month", "amount"),
			handler: handleHoldForNextMonth,
		},
	}
}

func handleGetBudgetMonth(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
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
	rows := make([]budgetCategoryView, len(bm.Categories))
	for i, cat := range bm.Categories {
		rows[i] = budgetCategoryView{
			BudgetCategory: cat,
			Budgeted:       core.FormatAmount(cat.BudgetedMinor),
			Spent:          core.FormatAmount(cat.SpentMinor),
			Balance:        core.FormatAmount(cat.BalanceMinor),
		}
	}
	return response.NewQuery("budget", rows).
		Count(len(rows)).
		Meta("month", bm.Month).
		Meta("income", core.FormatAmount(bm.IncomeMinor)).
		Meta("budgeted", core.FormatAmount(bm.BudgetedMinor)).
		Meta("spent", core.FormatAmount(bm.SpentMinor)).
		Build(), nil
}

func budgetMonthAndCategory(args Args) (string, string, error) {
	month, err := args.RequireString("month")
	if err != nil {
		return "", "", err
	}
	if err := core.ValidateMonth(month); err != nil {
		return "", "", err
	}
	categoryID, err := args.RequireString("categoryId")
	if err != nil {
		return "", "", err
	}
	return month, categoryID, nil
}

func handleSetBudgetAmount(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	month, categoryID, err := budgetMonthAndCategory(args)
	if err != nil {
		return response.Envelope{}, err
	}
	amount, err := args.RequireFloat("amount")
	if err != nil {
		return response.Envelope{}, err
	}
	minor, err := core.ToMinorUnits(amount)
	if err != nil {
		return response.Envelope{}, err
	}
	if err := eng.SetBudgetAmount(ctx, month, categoryID, minor); err != nil {
		return response.Envelope{}, err
	}
	return response.NewMutation(response.OpUpdate, "budget", categoryID).
		Summary("Set budget for category " + categoryID + " in " + month + " to " + core.FormatAmount(minor)).
		Changes(response.Changes{
			UpdatedFields: []string{"budgeted"},
			NewValues:     map[string]any{"month": month, "budgeted": core.FormatAmount(minor)},
		}).
		Build(), nil
}

func handleSetBudgetCarryover(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	month, categoryID, err := budgetMonthAndCategory(args)
	if err != nil {
		return response.Envelope{}, err
	}
	carryover, _ := args.Bool("carryover")
	if err := eng.SetBudgetCarryover(ctx, month, categoryID, carryover); err != nil {
		return response.Envelope{}, err
	}
	return response.NewMutation(response.OpUpdate, "budget", categoryID).
		Changes(response.Changes{
			UpdatedFields: []string{"carryover"},
			NewValues:     map[string]any{"month": month, "carryover": carryover},
		}).
		Build(), nil
}

func handleHoldForNextMonth(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	month, err := args.RequireString("month")
	if err != nil {
		return response.Envelope{}, err
	}
	if err := core.ValidateMonth(month); err != nil {
		return response.Envelope{}, err
	}
	amount, err := args.RequireFloat("amount")
	if err != nil {
		return response.Envelope{}, err
	}
	minor, err := core.ToMinorUnits(amount)
	if err != nil {
		return response.Envelope{}, err
	}
	if err := eng.HoldForNextMonth(ctx, month, minor); err != nil {
		return response.Envelope{}, err
	}
	return response.NewMutation(response.OpUpdate, "budget", month).
		Summary("Held " + core.FormatAmount(minor) + " from " + month + " for next month").
		Changes(response.Changes{
			UpdatedFields: []string{"hold"},
			NewValues:     map[string]any{"month": month, "hold": core.FormatAmount(minor)},
		}).
		Build(), nil
}
