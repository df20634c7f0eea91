package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"budgetmcp/internal/core"
	"budgetmcp/internal/engine"
)

const txSelect = `
	SELECT t.id, t.account_id, t.date, t.amount, t.notes,
	       t.category_id, COALESCE(c.name, ''),
	       t.payee_id, COALESCE(p.name, ''),
	       t.cleared
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id
	LEFT JOIN payees p ON p.id = t.payee_id`

func scanTransaction(scanner interface{ Scan(...any) error }) (core.Transaction, error) {
	var tx core.Transaction
	err := scanner.Scan(&tx.ID, &tx.AccountID, &tx.Date, &tx.AmountMinor, &tx.Notes,
		&tx.CategoryID, &tx.CategoryName, &tx.PayeeID, &tx.PayeeName, &tx.Cleared)
	return tx, err
}

func (s *Store) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, txSelect+` WHERE t.id = ? AND t.parent_id IS NULL`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	if tx.Subtransactions, err = s.subtransactions(ctx, tx.ID); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) GetTransactions(ctx context.Context, accountID, startDate, endDate string) ([]core.Transaction, error) {
	where := []string{"t.parent_id IS NULL"}
	var args []any
	if accountID != "" {
		where = append(where, "t.account_id = ?")
		args = append(args, accountID)
	}
	if startDate != "" {
		where = append(where, "t.date >= ?")
		args = append(args, startDate)
	}
	if endDate != "" {
		where = append(where, "t.date <= ?")
		args = append(args, endDate)
	}

	query := txSelect + " WHERE " + strings.Join(where, " AND ") + " ORDER BY t.date DESC"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Subtransactions, err = s.subtransactions(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx engine.NewTransaction) (string, error) {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	id := uuid.NewString()
	_, err = dbtx.ExecContext(ctx, `
		INSERT INTO transactions (id, account_id, date, amount, notes, category_id, payee_id, cleared)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, tx.AccountID, tx.Date, tx.AmountMinor, tx.Notes, tx.CategoryID, tx.PayeeID, tx.Cleared)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	if err := insertSubtransactions(ctx, dbtx, id, tx.AccountID, tx.Date, tx.Subtransactions); err != nil {
		return "", err
	}
	if err := dbtx.Commit(); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}
	return id, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, patch engine.TransactionPatch) error {
	current, err := s.GetTransaction(ctx, patch.ID)
	if err != nil {
		return err
	}

	var sets []string
	var args []any
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.Date != nil {
		set("date", *patch.Date)
	}
	if patch.CategoryID != nil {
		set("category_id", *patch.CategoryID)
	}
	if patch.PayeeID != nil {
		set("payee_id", *patch.PayeeID)
	}
	if patch.Notes != nil {
		set("notes", *patch.Notes)
	}
	if patch.AmountMinor != nil {
		set("amount", *patch.AmountMinor)
	}
	if patch.Cleared != nil {
		set("cleared", *patch.Cleared)
	}

	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	if len(sets) > 0 {
		args = append(args, patch.ID)
		_, err = dbtx.ExecContext(ctx,
			"UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
	}

	if patch.Subtransactions != nil {
		if _, err := dbtx.ExecContext(ctx,
			`DELETE FROM transactions WHERE parent_id = ?`, patch.ID); err != nil {
			return fmt.Errorf("clear subtransactions: %w", err)
		}
		date := current.Date
		if patch.Date != nil {
			date = *patch.Date
		}
		if err := insertSubtransactions(ctx, dbtx, patch.ID, current.AccountID, date, patch.Subtransactions); err != nil {
			return err
		}
	}

	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND parent_id IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireAffected(res, core.ErrTransactionNotFound)
}

func (s *Store) RunQuery(ctx context.Context, q engine.Query) (engine.QueryResult, error) {
	where := []string{"t.parent_id IS NULL"}
	var args []any
	add := func(cond string, vals ...any) {
		where = append(where, cond)
		args = append(args, vals...)
	}
	if q.AccountID != "" {
		add("t.account_id = ?", q.AccountID)
	}
	if q.CategoryID != "" {
		add("t.category_id = ?", q.CategoryID)
	}
	if q.PayeeID != "" {
		add("t.payee_id = ?", q.PayeeID)
	}
	if q.StartDate != "" {
		add("t.date >= ?", q.StartDate)
	}
	if q.EndDate != "" {
		add("t.date <= ?", q.EndDate)
	}
	if q.MinAmountMinor != nil {
		add("t.amount >= ?", *q.MinAmountMinor)
	}
	if q.MaxAmountMinor != nil {
		add("t.amount <= ?", *q.MaxAmountMinor)
	}
	if q.SearchText != "" {
		add("(t.notes LIKE ? OR COALESCE(p.name, '') LIKE ?)",
			"%"+q.SearchText+"%", "%"+q.SearchText+"%")
	}
	clause := " WHERE " + strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM transactions t
		LEFT JOIN payees p ON p.id = t.payee_id` + clause
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return engine.QueryResult{}, fmt.Errorf("count query matches: %w", err)
	}

	order := " ORDER BY t.date DESC"
	switch {
	case q.SortBy == "amount" && q.SortAsc:
		order = " ORDER BY t.amount ASC"
	case q.SortBy == "amount":
		order = " ORDER BY t.amount DESC"
	case q.SortAsc:
		order = " ORDER BY t.date ASC"
	}

	query := txSelect + clause + order
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", q.Limit, q.Offset)
	} else if q.Offset > 0 {
		query += fmt.Sprintf(" LIMIT -1 OFFSET %d", q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return engine.QueryResult{}, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()

	var matched []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return engine.QueryResult{}, fmt.Errorf("scan transaction: %w", err)
		}
		matched = append(matched, tx)
	}
	if err := rows.Err(); err != nil {
		return engine.QueryResult{}, err
	}
	for i := range matched {
		if matched[i].Subtransactions, err = s.subtransactions(ctx, matched[i].ID); err != nil {
			return engine.QueryResult{}, err
		}
	}
	return engine.QueryResult{Transactions: matched, Total: total}, nil
}

func (s *Store) subtransactions(ctx context.Context, parentID string) ([]core.Subtransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, category_id, notes FROM transactions
		WHERE parent_id = ? ORDER BY rowid`, parentID)
	if err != nil {
		return nil, fmt.Errorf("load subtransactions: %w", err)
	}
	defer rows.Close()

	var out []core.Subtransaction
	for rows.Next() {
		var sub core.Subtransaction
		if err := rows.Scan(&sub.ID, &sub.AmountMinor, &sub.CategoryID, &sub.Notes); err != nil {
			return nil, fmt.Errorf("scan subtransaction: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func insertSubtransactions(ctx context.Context, dbtx *sql.Tx, parentID, accountID, date string, subs []core.Subtransaction) error {
	for _, sub := range subs {
		_, err := dbtx.ExecContext(ctx, `
			INSERT INTO transactions (id, account_id, parent_id, date, amount, notes, category_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), accountID, parentID, date, sub.AmountMinor, sub.Notes, sub.CategoryID)
		if err != nil {
			return fmt.Errorf("insert subtransaction: %w", err)
		}
	}
	return nil
}
