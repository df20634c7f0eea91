package tools

// JSON Schema fragments for tool input shapes. Kept as plain maps;
// the transport serializes them verbatim into the tool catalog.

func schemaObject(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func propString(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func propNumber(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

func propInteger(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

func propBool(description string) map[string]any {
	return map[string]any{"type": "boolean", "description": description}
}

func propArray(description string, items map[string]any) map[string]any {
	return map[string]any{"type": "array", "description": description, "items": items}
}

var subtransactionItemSchema = schemaObject(map[string]any{
	"amount":     propNumber("Line item amount in dollars (negative for spending)"),
	"categoryId": propString("Category ID for this line item"),
	"notes":      propString("Line item note"),
}, "amount")
