package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"budgetmcp/internal/core"
)

// Rule conditions and actions are stored as JSON columns; the engine
// only needs to round-trip them, not index them.

func (s *Store) ListRules(ctx context.Context) ([]core.Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stage, conditions_op, conditions, actions FROM rules ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var out []core.Rule
	for rows.Next() {
		var r core.Rule
		var conditions, actions string
		if err := rows.Scan(&r.ID, &r.Stage, &r.ConditionsOp, &conditions, &actions); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		if err := json.Unmarshal([]byte(conditions), &r.Conditions); err != nil {
			return nil, fmt.Errorf("decode rule conditions: %w", err)
		}
		if err := json.Unmarshal([]byte(actions), &r.Actions); err != nil {
			return nil, fmt.Errorf("decode rule actions: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) CreateRule(ctx context.Context, rule core.Rule) (string, error) {
	rule.ID = uuid.NewString()
	if rule.ConditionsOp == "" {
		rule.ConditionsOp = "and"
	}
	conditions, actions, err := encodeRule(rule)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rules (id, stage, conditions_op, conditions, actions)
		VALUES (?, ?, ?, ?, ?)`,
		rule.ID, rule.Stage, rule.ConditionsOp, conditions, actions)
	if err != nil {
		return "", fmt.Errorf("create rule: %w", err)
	}
	return rule.ID, nil
}

func (s *Store) UpdateRule(ctx context.Context, rule core.Rule) error {
	conditions, actions, err := encodeRule(rule)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE rules SET stage = ?, conditions_op = ?, conditions = ?, actions = ?
		WHERE id = ?`,
		rule.Stage, rule.ConditionsOp, conditions, actions, rule.ID)
	if err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	return requireAffected(res, core.ErrRuleNotFound)
}

func (s *Store) DeleteRule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return requireAffected(res, core.ErrRuleNotFound)
}

func encodeRule(rule core.Rule) (string, string, error) {
	if rule.Conditions == nil {
		rule.Conditions = []core.RuleCondition{}
	}
	if rule.Actions == nil {
		rule.Actions = []core.RuleAction{}
	}
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return "", "", fmt.Errorf("encode rule conditions: %w", err)
	}
	actions, err := json.Marshal(rule.Actions)
	if err != nil {
		return "", "", fmt.Errorf("encode rule actions: %w", err)
	}
	return string(conditions), string(actions), nil
}
