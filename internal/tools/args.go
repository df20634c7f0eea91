package tools

import (
	"encoding/json"
	"fmt"

	"budgetmcp/internal/core"
)

// Args wraps the raw tool arguments. JSON numbers arrive as float64
// and optional fields as missing keys; these helpers normalize both.
type Args map[string]any

func (a Args) String(key string) (string, bool) {
	v, ok := a[key].(string)
	return v, ok && v != ""
}

func (a Args) RequireString(key string) (string, error) {
	v, ok := a.String(key)
	if !ok {
		return "", fmt.Errorf("%w: %s is required", core.ErrInvalidArgument, key)
	}
	return v, nil
}

func (a Args) Float(key string) (float64, bool) {
	v, ok := a[key].(float64)
	return v, ok
}

func (a Args) RequireFloat(key string) (float64, error) {
	v, ok := a.Float(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s is required and must be a number", core.ErrInvalidArgument, key)
	}
	return v, nil
}

func (a Args) Bool(key string) (bool, bool) {
	v, ok := a[key].(bool)
	return v, ok
}

func (a Args) Int(key string, fallback int) int {
	if v, ok := a[key].(float64); ok {
		return int(v)
	}
	return fallback
}

// Decode re-marshals the arguments into a typed struct. Used where a
// tool's input is richer than flat scalars (the transaction update
// request), preserving the absent-vs-empty distinction of slices.
func (a Args) Decode(target any) error {
	raw, err := json.Marshal(map[string]any(a))
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
	}
	return nil
}
