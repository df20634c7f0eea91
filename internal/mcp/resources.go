package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"budgetmcp/internal/core"
	"budgetmcp/internal/engine"
)

const (
	resourceAccountsURI     = "budget://accounts"
	resourceTransactionsURI = "budget://transactions/recent"
)

func resourceDefinitions() []map[string]any {
	return []map[string]any{
		{
			"uri":         resourceAccountsURI,
			"name":        "Accounts",
			"description": "All accounts with current balances",
			"mimeType":    "text/plain",
		},
		{
			"uri":         resourceTransactionsURI,
			"name":        "Recent transactions",
			"description": "Transactions across all accounts from the last 30 days",
			"mimeType":    "text/plain",
		},
	}
}

type resourceReadParams struct {
	URI string `json:"uri"`
}

func (c *conn) handleResourceRead(ctx context.Context, req jsonRPCRequest, base jsonRPCResponse) *jsonRPCResponse {
	var params resourceReadParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		base.Error = &rpcError{Code: codeInvalidParams, Message: "invalid params: " + err.Error()}
		return &base
	}

	var text string
	var err error
	switch params.URI {
	case resourceAccountsURI:
		text, err = c.renderAccounts(ctx)
	case resourceTransactionsURI:
		text, err = c.renderRecentTransactions(ctx)
	default:
		base.Error = &rpcError{Code: codeInvalidParams, Message: "unknown resource: " + params.URI}
		return &base
	}
	if err != nil {
		base.Error = &rpcError{Code: codeInternal, Message: err.Error()}
		return &base
	}

	base.Result = map[string]any{
		"contents": []map[string]any{
			{"uri": params.URI, "mimeType": "text/plain", "text": text},
		},
	}
	return &base
}

func (c *conn) renderAccounts(ctx context.Context) (string, error) {
	eng, err := c.session.Acquire(ctx)
	if err != nil {
		return "", err
	}
	accounts, err := eng.ListAccounts(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d accounts\n\n", len(accounts))
	for _, a := range accounts {
		state := "open"
		if a.Closed {
			state = "closed"
		}
		fmt.Fprintf(&b, "%s (%s, %s): %s\n", a.Name, a.ID, state, core.FormatAmount(a.BalanceMinor))
	}
	return b.String(), nil
}

func (c *conn) renderRecentTransactions(ctx context.Context) (string, error) {
	eng, err := c.session.Acquire(ctx)
	if err != nil {
		return "", err
	}
	now := time.Now()
	res, err := eng.RunQuery(ctx, engine.Query{
		StartDate: now.AddDate(0, 0, -30).Format("2006-01-02"),
		EndDate:   now.Format("2006-01-02"),
		Limit:     100,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d transactions in the last 30 days (%d shown)\n\n", res.Total, len(res.Transactions))
	for _, tx := range res.Transactions {
		line := fmt.Sprintf("%s  %s", tx.Date, core.FormatAmount(tx.AmountMinor))
		if tx.PayeeName != "" {
			line += "  " + tx.PayeeName
		}
		if tx.CategoryName != "" {
			line += "  [" + tx.CategoryName + "]"
		}
		if tx.IsSplit() {
			line += fmt.Sprintf("  (split, %d items)", len(tx.Subtransactions))
		}
		b.WriteString(line + "\n")
	}
	return b.String(), nil
}
