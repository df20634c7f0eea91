package tools

import (
	"context"
	"fmt"

	"budgetmcp/internal/core"
	"budgetmcp/internal/engine"
	"budgetmcp/internal/response"
)

var (
	ruleConditionSchema = schemaObject(map[string]any{
		"field": propString("Transaction field to match, e.g. payee or notes"),
		"op":    propString("Match operator, e.g. is, contains, matches"),
		"value": propString("Value to match against"),
	}, "field", "op", "value")

	ruleActionSchema = schemaObject(map[string]any{
		"field": propString("Transaction field to set, e.g. category"),
		"value": propString("Value to assign"),
	}, "field", "value")
)

func ruleTools() []Tool {
	return []Tool{
		{
			Name:         "get_rules",
			Description:  "List categorization rules.",
			ResourceType: "rule",
			ReadOnly:     true,
			InputSchema:  schemaObject(map[string]any{}),
			handler:      handleGetRules,
		},
		{
			Name:         "create_rule",
			Description:  "Create a categorization rule with conditions and actions.",
			ResourceType: "rule",
			InputSchema: schemaObject(map[string]any{
				"stage":        propString("Rule stage: pre, default, or post"),
				"conditionsOp": propString("How conditions combine: and or or, default and"),
				"conditions":   propArray("Match conditions", ruleConditionSchema),
				"actions":      propArray("Actions applied on match", ruleActionSchema),
			}, "conditions", "actions"),
			handler: handleCreateRule,
		},
		{
			Name:         "update_rule",
			Description:  "Replace an existing rule's conditions and actions.",
			ResourceType: "rule",
			InputSchema: schemaObject(map[string]any{
				"id":           propString("Rule to update"),
				"stage":        propString("Rule stage: pre, default, or post"),
				"conditionsOp": propString("How conditions combine: and or or, default and"),
				"conditions":   propArray("Match conditions", ruleConditionSchema),
				"actions":      propArray("Actions applied on match", ruleActionSchema),
			}, "id", "conditions", "actions"),
			handler: handleUpdateRule,
		},
		{
			Name:         "delete_rule",
			Description:  "Delete a categorization rule.",
			ResourceType: "rule",
			Destructive:  true,
			InputSchema: schemaObject(map[string]any{
				"id": propString("Rule to delete"),
			}, "id"),
			handler: handleDeleteRule,
		},
	}
}

func handleGetRules(ctx context.Context, eng engine.Engine, _ Args) (response.Envelope, error) {
	rules, err := eng.ListRules(ctx)
	if err != nil {
		return response.Envelope{}, err
	}
	return response.NewQuery("rule", rules).Count(len(rules)).Build(), nil
}

func decodeRule(args Args) (core.Rule, error) {
	var rule core.Rule
	if err := args.Decode(&rule); err != nil {
		return core.Rule{}, err
	}
	if len(rule.Conditions) == 0 {
		return core.Rule{}, fmt.Errorf("%w: conditions must not be empty", core.ErrInvalidArgument)
	}
	if len(rule.Actions) == 0 {
		return core.Rule{}, fmt.Errorf("%w: actions must not be empty", core.ErrInvalidArgument)
	}
	if rule.ConditionsOp == "" {
		rule.ConditionsOp = "and"
	}
	return rule, nil
}

func handleCreateRule(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	rule, err := decodeRule(args)
	if err != nil {
		return response.Envelope{}, err
	}
	id, err := eng.CreateRule(ctx, rule)
	if err != nil {
		return response.Envelope{}, err
	}
	return response.NewMutation(response.OpCreate, "rule", id).
		Changes(response.Changes{
			NewValues: map[string]any{
				"conditionCount": len(rule.Conditions),
				"actionCount":    len(rule.Actions),
			},
		}).
		Build(), nil
}

func handleUpdateRule(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	rule, err := decodeRule(args)
	if err != nil {
		return response.Envelope{}, err
	}
	if rule.ID == "" {
		return response.Envelope{}, fmt.Errorf("%w: id is required", core.ErrInvalidArgument)
	}
	if err := eng.UpdateRule(ctx, rule); err != nil {
		return response.Envelope{}, err
	}
	return response.NewMutation(response.OpUpdate, "rule", rule.ID).
		Changes(response.Changes{
			UpdatedFields: []string{"conditions", "actions"},
			NewValues: map[string]any{
				"conditionCount": len(rule.Conditions),
				"actionCount":    len(rule.Actions),
			},
		}).
		Build(), nil
}

func handleDeleteRule(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	id, err := args.RequireString("id")
	if err != nil {
		return response.Envelope{}, err
	}
	if err := eng.DeleteRule(ctx, id); err != nil {
		return response.Envelope{}, err
	}
	return response.NewMutation(response.OpDelete, "rule", id).Build(), nil
}
