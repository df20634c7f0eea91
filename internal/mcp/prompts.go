package mcp

import (
	"encoding/json"
	"fmt"
)

// Canned prompts give clients a starting point for the two workflows
// the tool catalog is built around.
func promptDefinitions() []map[string]any {
	return []map[string]any{
		{
			"name":        "budget-review",
			"description": "Review one budget month: overspending, leftover funds, suggested adjustments",
			"arguments": []map[string]any{
				{"name": "month", "description": "Budget month, YYYY-MM", "required": true},
			},
		},
		{
			"name":        "categorize-transactions",
			"description": "Find uncategorized transactions and suggest categories for them",
			"arguments": []map[string]any{
				{"name": "accountId", "description": "Restrict to one account", "required": false},
			},
		},
	}
}

type promptGetParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments"`
}

func (c *conn) handlePromptGet(req jsonRPCRequest, base jsonRPCResponse) *jsonRPCResponse {
	var params promptGetParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		base.Error = &rpcError{Code: codeInvalidParams, Message: "invalid params: " + err.Error()}
		return &base
	}

	var text string
	switch params.Name {
	case "budget-review":
		month := params.Arguments["month"]
		if month == "" {
			base.Error = &rpcError{Code: codeInvalidParams, Message: "month argument is required"}
			return &base
		}
		text = fmt.Sprintf(
			"Review my budget for %s. Use get_budget_month and monthly_summary, point out "+
				"categories that are overspent or have large unused balances, and suggest "+
				"set_budget_amount adjustments for next month.", month)

	case "categorize-transactions":
		text = "Find transactions without a category using search_transactions, look at their " +
			"payees and notes, and suggest a category for each. Use get_categories for the " +
			"available categories and update_transaction to apply the ones I confirm."
		if accountID := params.Arguments["accountId"]; accountID != "" {
			text += fmt.Sprintf(" Only look at account %s.", accountID)
		}

	default:
		base.Error = &rpcError{Code: codeInvalidParams, Message: "unknown prompt: " + params.Name}
		return &base
	}

	base.Result = map[string]any{
		"messages": []map[string]any{
			{
				"role":    "user",
				"content": map[string]any{"type": "text", "text": text},
			},
		},
	}
	return &base
}
