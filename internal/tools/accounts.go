package tools

import (
	"context"

	"budgetmcp/internal/core"
	"budgetmcp/internal/engine"
	"budgetmcp/internal/response"
	"budgetmcp/internal/services"
)

// accountView is the caller-facing account shape with the balance
// rendered in both units.
type accountView struct {
	core.Account
	Balance string `json:"balanceFormatted"`
}

func accountTools() []Tool {
	return []Tool{
		{
			Name:         "get_accounts",
			Description:  "List all accounts with their current balances.",
			ResourceType: "account",
			ReadOnly:     true,
			InputSchema:  schemaObject(map[string]any{}),
			handler:      handleGetAccounts,
		},
		{
			Name:         "create_account",
			Description:  "Create a new account with an optional starting balance.",
			ResourceType: "account",
			InputSchema: schemaObject(map[string]any{
				"name":           propString("Account name"),
				"type":           propString("Account type, e.g. checking or savings"),
				"offBudget":      propBool("Exclude the account from the budget"),
				"initialBalance": propNumber("Starting balance in dollars"),
			}, "name"),
			handler: handleCreateAccount,
		},
		{
			Name:         "close_account",
			Description:  "Close an account. Closed accounts reject further mutations.",
			ResourceType: "account",
			Destructive:  true,
			InputSchema: schemaObject(map[string]any{
				"accountId": propString("ID of the account to close"),
			}, "accountId"),
			handler: handleCloseAccount,
		},
	}
}

func handleGetAccounts(ctx context.Context, eng engine.Engine, _ Args) (response.Envelope, error) {
	accounts, err := eng.ListAccounts(ctx)
	if err != nil {
		return response.Envelope{}, err
	}
	views := make([]accountView, len(accounts))
	for i, a := range accounts {
		views[i] = accountView{Account: a, Balance: core.FormatAmount(a.BalanceMinor)}
	}
	return response.NewQuery("account", views).Count(len(views)).Build(), nil
}

func handleCreateAccount(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	name, err := args.RequireString("name")
	if err != nil {
		return response.Envelope{}, err
	}
	accountType, _ := args.String("type")
	offBudget, _ := args.Bool("offBudget")

	var balanceMinor int64
	if balance, ok := args.Float("initialBalance"); ok {
		if balanceMinor, err = core.ToMinorUnits(balance); err != nil {
			return response.Envelope{}, err
		}
	}

	id, err := eng.CreateAccount(ctx, core.Account{
		Name:      name,
		Type:      accountType,
		OffBudget: offBudget,
	}, balanceMinor)
	if err != nil {
		return response.Envelope{}, err
	}

	return response.NewMutation(response.OpCreate, "account", id).
		Changes(response.Changes{
			UpdatedFields: []string{"name", "type", "offBudget", "initialBalance"},
			NewValues: map[string]any{
				"name":           name,
				"type":           accountType,
				"offBudget":      offBudget,
				"initialBalance": core.FormatAmount(balanceMinor),
			},
		}).
		Build(), nil
}

func handleCloseAccount(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	accountID, err := args.RequireString("accountId")
	if err != nil {
		return response.Envelope{}, err
	}
	// Validate first so a closed account reports ErrAccountClosed
	// instead of silently re-closing.
	if _, err := services.NewLookup(eng).ValidateAccount(ctx, accountID); err != nil {
		return response.Envelope{}, err
	}
	if err := eng.CloseAccount(ctx, accountID); err != nil {
		return response.Envelope{}, err
	}
	return response.NewMutation(response.OpUpdate, "account", accountID).
		Summary("Closed account " + accountID).
		Changes(response.Changes{
			UpdatedFields: []string{"closed"},
			NewValues:     map[string]any{"closed": true},
		}).
		Build(), nil
}
