package tools

import (
	"context"

	"budgetmcp/internal/engine"
	"budgetmcp/internal/response"
)

func categoryTools() []Tool {
	return []Tool{
		{
			Name:         "get_categories",
			Description:  "List category groups with their categories.",
			ResourceType: "category",
			ReadOnly:     true,
			InputSchema:  schemaObject(map[string]any{}),
			handler:      handleGetCategories,
		},
		{
			Name:         "create_category",
			Description:  "Create a category, optionally inside a specific group.",
			ResourceType: "category",
			InputSchema: schemaObject(map[string]any{
				"name":    propString("Category name"),
				"groupId": propString("Group to place the category in; a default group is used when absent"),
			}, "name"),
			handler: handleCreateCategory,
		},
		{
			Name:         "update_category",
			Description:  "Rename a category.",
			ResourceType: "category",
			InputSchema: schemaObject(map[string]any{
				"id":   propString("Category to rename"),
				"name": propString("New name"),
			}, "id", "name"),
			handler: handleUpdateCategory,
		},
		{
			Name:         "delete_category",
			Description:  "Delete a category. Transactions keep their rows but lose the category link.",
			ResourceType: "category",
			Destructive:  true,
			InputSchema: schemaObject(map[string]any{
				"id": propString("Category to delete"),
			}, "id"),
			handler: handleDeleteCategory,
		},
	}
}

func handleGetCategories(ctx context.Context, eng engine.Engine, _ Args) (response.Envelope, error) {
	groups, err := eng.ListCategoryGroups(ctx)
	if err != nil {
		return response.Envelope{}, err
	}
	total := 0
	for _, g := range groups {
		total += len(g.Children)
	}
	return response.NewQuery("category", groups).
		Count(total).
		Meta("groupCount", len(groups)).
		Build(), nil
}

func handleCreateCategory(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	name, err := args.RequireString("name")
	if err != nil {
		return response.Envelope{}, err
	}
	groupID, _ := args.String("groupId")
	id, err := eng.CreateCategory(ctx, name, groupID)
	if err != nil {
		return response.Envelope{}, err
	}
	return response.NewMutation(response.OpCreate, "category", id).
		Changes(response.Changes{
			UpdatedFields: []string{"name"},
			NewValues:     map[string]any{"name": name},
		}).
		Build(), nil
}

func handleUpdateCategory(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	id, err := args.RequireString("id")
	if err != nil {
		return response.Envelope{}, err
	}
	name, err := args.RequireString("name")
	if err != nil {
		return response.Envelope{}, err
	}
	if err := eng.UpdateCategory(ctx, id, name); err != nil {
		return response.Envelope{}, err
	}
	return response.NewMutation(response.OpUpdate, "category", id).
		Changes(response.Changes{
			UpdatedFields: []string{"name"},
			NewValues:     map[string]any{"name": name},
		}).
		Build(), nil
}

func handleDeleteCategory(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	id, err := args.RequireString("id")
	if err != nil {
		return response.Envelope{}, err
	}
	if err := eng.DeleteCategory(ctx, id); err != nil {
		return response.Envelope{}, err
	}
	return response.NewMutation(response.OpDelete, "category", id).Build(), nil
}
