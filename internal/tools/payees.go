package tools

import (
	"context"

	"budgetmcp/internal/engine"
	"budgetmcp/internal/response"
)

func payeeTools() []Tool {
	return []Tool{
		{
			Name:         "get_payees",
			Description:  "List all payees.",
			ResourceType: "payee",
			ReadOnly:     true,
			InputSchema:  schemaObject(map[string]any{}),
			handler:      handleGetPayees,
		},
		{
			Name:         "create_payee",
			Description:  "Create a payee.",
			ResourceType: "payee",
			InputSchema: schemaObject(map[string]any{
				"name": propString("Payee name"),
			}, "name"),
			handler: handleCreatePayee,
		},
		{
			Name:         "update_payee",
			Description:  "Rename a payee.",
			ResourceType: "payee",
			InputSchema: schemaObject(map[string]any{
				"id":   propString("Payee to rename"),
				"name": propString("New name"),
			}, "id", "name"),
			handler: handleUpdatePayee,
		},
	}
}

func handleGetPayees(ctx context.Context, eng engine.Engine, _ Args) (response.Envelope, error) {
	payees, err := eng.ListPayees(ctx)
	if err != nil {
		return response.Envelope{}, err
	}
	return response.NewQuery("payee", payees).Count(len(payees)).Build(), nil
}

func handleCreatePayee(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	name, err := args.RequireString("name")
	if err != nil {
		return response.Envelope{}, err
	}
	id, err := eng.CreatePayee(ctx, name)
	if err != nil {
		return response.Envelope{}, err
	}
	return response.NewMutation(response.OpCreate, "payee", id).
		Changes(response.Changes{
			UpdatedFields: []string{"name"},
			NewValues:     map[string]any{"name": name},
		}).
		Build(), nil
}

func handleUpdatePayee(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	id, err := args.RequireString("id")
	if err != nil {
		return response.Envelope{}, err
	}
	name, err := args.RequireString("name")
	if err != nil {
		return response.Envelope{}, err
	}
	if err := eng.UpdatePayee(ctx, id, name); err != nil {
		return response.Envelope{}, err
	}
	return response.NewMutation(response.OpUpdate, "payee", id).
		Changes(response.Changes{
			UpdatedFields: []string{"name"},
			NewValues:     map[string]any{"name": name},
		}).
		Build(), nil
}
