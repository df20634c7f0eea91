package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgetmcp/internal/core"
)

func (s *Store) GetBudgetMonth(ctx context.Context, month string) (core.BudgetMonth, error) {
	bm := core.BudgetMonth{Month: month}
	monthPrefix := month + "%"

	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE parent_id IS NULL AND amount > 0 AND date LIKE ?`, monthPrefix).
		Scan(&bm.IncomeMinor)
	if err != nil {
		return bm, fmt.Errorf("sum month income: %w", err)
	}

	// Spending per category: non-split parents count directly, split
	// parents count through their line items.
	spent := make(map[string]int64)
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.category_id, SUM(-t.amount)
		FROM transactions t
		WHERE t.amount < 0 AND t.date LIKE ?
		  AND (t.parent_id IS NOT NULL
		       OR NOT EXISTS (SELECT 1 FROM transactions s WHERE s.parent_id = t.id))
		GROUP BY t.category_id`, monthPrefix)
	if err != nil {
		return bm, fmt.Errorf("sum month spending: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var categoryID string
		var amount int64
		if err := rows.Scan(&categoryID, &amount); err != nil {
			return bm, fmt.Errorf("scan spending row: %w", err)
		}
		spent[categoryID] = amount
	}
	if err := rows.Err(); err != nil {
		return bm, err
	}

	cats, err := s.ListCategories(ctx)
	if err != nil {
		return bm, err
	}
	for _, cat := range cats {
		var budgeted int64
		var carryover bool
		err := s.db.QueryRowContext(ctx, `
			SELECT budgeted, carryover FROM budget_allocations
			WHERE month = ? AND category_id = ?`, month, cat.ID).
			Scan(&budgeted, &carryover)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return bm, fmt.Errorf("read allocation: %w", err)
		}
		row := core.BudgetCategory{
			CategoryID:    cat.ID,
			CategoryName:  cat.Name,
			BudgetedMinor: budgeted,
			SpentMinor:    spent[cat.ID],
			BalanceMinor:  budgeted - spent[cat.ID],
			Carryover:     carryover,
		}
		bm.BudgetedMinor += row.BudgetedMinor
		bm.SpentMinor += row.SpentMinor
		bm.Categories = append(bm.Categories, row)
	}
	return bm, nil
}

func (s *Store) SetBudgetAmount(ctx context.Context, month, categoryID string, amountMinor int64) error {
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budget_allocations (month, category_id, budgeted)
		VALUES (?, ?, ?)
		ON CONFLICT (month, category_id) DO UPDATE SET budgeted = excluded.budgeted`,
		month, categoryID, amountMinor)
	if err != nil {
		return fmt.Errorf("set budget amount: %w", err)
	}
	return nil
}

func (s *Store) SetBudgetCarryover(ctx context.Context, month, categoryID string, carryover bool) error {
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budget_allocations (month, category_id, carryover)
		VALUES (?, ?, ?)
		ON CONFLICT (month, category_id) DO UPDATE SET carryover = excluded.carryover`,
		month, categoryID, carryover)
	if err != nil {
		return fmt.Errorf("set budget carryover: %w", err)
	}
	return nil
}

func (s *Store) HoldForNextMonth(ctx context.Context, month string, amountMinor int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budget_holds (month, amount) VALUES (?, ?)
		ON CONFLICT (month) DO UPDATE SET amount = excluded.amount`,
		month, amountMinor)
	if err != nil {
		return fmt.Errorf("hold for next month: %w", err)
	}
	return nil
}

func (s *Store) requireCategory(ctx context.Context, categoryID string) error {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE id = ?`, categoryID).Scan(&n)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if n == 0 {
		return core.ErrCategoryNotFound
	}
	return nil
}
