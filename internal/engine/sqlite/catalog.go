package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"budgetmcp/internal/core"
)

func (s *Store) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.name, a.type, a.closed, a.off_budget,
		       a.initial_balance + COALESCE((
		           SELECT SUM(t.amount) FROM transactions t
		           WHERE t.account_id = a.id AND t.parent_id IS NULL
		       ), 0)
		FROM accounts a
		ORDER BY a.name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Closed, &a.OffBudget, &a.BalanceMinor); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) CreateAccount(ctx context.Context, account core.Account, initialBalanceMinor int64) (string, error) {
	if err := account.Validate(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, type, closed, off_budget, initial_balance)
		VALUES (?, ?, ?, 0, ?, ?)`,
		id, account.Name, account.Type, account.OffBudget, initialBalanceMinor)
	if err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}
	return id, nil
}

func (s *Store) CloseAccount(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET closed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("close account: %w", err)
	}
	return requireAffected(res, core.ErrAccountNotFound)
}

func (s *Store) ListCategoryGroups(ctx context.Context) ([]core.CategoryGroup, error) {
	groups := []core.CategoryGroup{}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, is_income FROM category_groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list category groups: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var g core.CategoryGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Income); err != nil {
			return nil, fmt.Errorf("scan category group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cats, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		for _, c := range cats {
			if c.GroupID == groups[i].ID {
				groups[i].Children = append(groups[i].Children, c)
			}
		}
	}
	return groups, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, group_id, is_income FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.GroupID, &c.Income); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateCategory(ctx context.Context, name, groupID string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", core.ErrEmptyName
	}
	if groupID == "" {
		var err error
		groupID, err = s.defaultGroup(ctx)
		if err != nil {
			return "", err
		}
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, group_id) VALUES (?, ?, ?)`,
		id, name, groupID)
	if err != nil {
		return "", fmt.Errorf("create category: %w", err)
	}
	return id, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id, name string) error {
	if strings.TrimSpace(name) == "" {
		return core.ErrEmptyName
	}
	res, err := s.db.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireAffected(res, core.ErrCategoryNotFound)
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireAffected(res, core.ErrCategoryNotFound)
}

func (s *Store) ListPayees(ctx context.Context) ([]core.Payee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM payees ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list payees: %w", err)
	}
	defer rows.Close()

	var out []core.Payee
	for rows.Next() {
		var p core.Payee
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan payee: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CreatePayee(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", core.ErrEmptyName
	}
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO payees (id, name) VALUES (?, ?)`, id, name); err != nil {
		return "", fmt.Errorf("create payee: %w", err)
	}
	return id, nil
}

func (s *Store) UpdatePayee(ctx context.Context, id, name string) error {
	if strings.TrimSpace(name) == "" {
		return core.ErrEmptyName
	}
	res, err := s.db.ExecContext(ctx, `UPDATE payees SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("update payee: %w", err)
	}
	return requireAffected(res, core.ErrPayeeNotFound)
}

// defaultGroup finds or creates the fallback category group.
func (s *Store) defaultGroup(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM category_groups ORDER BY rowid LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		id = uuid.NewString()
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO category_groups (id, name) VALUES (?, 'Usual Expenses')`, id); err != nil {
			return "", fmt.Errorf("create default group: %w", err)
		}
		return id, nil
	}
	if err != nil {
		return "", fmt.Errorf("find default group: %w", err)
	}
	return id, nil
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
