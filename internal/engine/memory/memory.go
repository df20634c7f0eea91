// Package memory provides an in-process engine implementation. It
// backs the test suite and serves as a no-dependency demo backend.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"budgetmcp/internal/core"
	"budgetmcp/internal/engine"
)

type budgetKey struct {
	month      string
	categoryID string
}

type allocation struct {
	budgetedMinor int64
	carryover     bool
}

// Store is a mutex-guarded in-memory budget. All methods are safe for
// concurrent use.
type Store struct {
	mu           sync.Mutex
	accounts     []core.Account
	groups       []core.CategoryGroup
	categories   []core.Category
	payees       []core.Payee
	transactions []core.Transaction
	rules        []core.Rule
	budgets      map[budgetKey]allocation
	held         map[string]int64 // month -> held-for-next-month cents
}

var _ engine.Engine = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		budgets: make(map[budgetKey]allocation),
		held:    make(map[string]int64),
	}
}

// Opener adapts the store to the session lifecycle. The budget ID is
// ignored; an in-memory store holds exactly one budget.
func (s *Store) Opener() engine.Opener {
	return func(ctx context.Context, budgetID string) (engine.Engine, error) {
		return s, nil
	}
}

func newID() string { return uuid.NewString() }

func (s *Store) ListAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Account, len(s.accounts))
	for i, a := range s.accounts {
		a.BalanceMinor += s.transactionSumLocked(a.ID)
		out[i] = a
	}
	return out, nil
}

func (s *Store) CreateAccount(_ context.Context, account core.Account, initialBalanceMinor int64) (string, error) {
	if err := account.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	account.ID = newID()
	account.BalanceMinor = initialBalanceMinor
	s.accounts = append(s.accounts, account)
	return account.ID, nil
}

func (s *Store) CloseAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			s.accounts[i].Closed = true
			return nil
		}
	}
	return core.ErrAccountNotFound
}

func (s *Store) ListCategoryGroups(_ context.Context) ([]core.CategoryGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.CategoryGroup, len(s.groups))
	for i, g := range s.groups {
		g.Children = nil
		for _, c := range s.categories {
			if c.GroupID == g.ID {
				g.Children = append(g.Children, c)
			}
		}
		out[i] = g
	}
	return out, nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.categories...), nil
}

func (s *Store) CreateCategory(_ context.Context, name, groupID string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", core.ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if groupID == "" {
		groupID = s.defaultGroupLocked()
	}
	cat := core.Category{ID: newID(), Name: name, GroupID: groupID}
	s.categories = append(s.categories, cat)
	return cat.ID, nil
}

func (s *Store) UpdateCategory(_ context.Context, id, name string) error {
	if strings.TrimSpace(name) == "" {
		return core.ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories[i].Name = name
			return nil
		}
	}
	return core.ErrCategoryNotFound
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return core.ErrCategoryNotFound
}

func (s *Store) ListPayees(_ context.Context) ([]core.Payee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Payee(nil), s.payees...), nil
}

func (s *Store) CreatePayee(_ context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", core.ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := core.Payee{ID: newID(), Name: name}
	s.payees = append(s.payees, p)
	return p.ID, nil
}

func (s *Store) UpdatePayee(_ context.Context, id, name string) error {
	if strings.TrimSpace(name) == "" {
		return core.ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.payees {
		if s.payees[i].ID == id {
			s.payees[i].Name = name
			return nil
		}
	}
	return core.ErrPayeeNotFound
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.transactions {
		if tx.ID == id {
			return s.resolveLocked(tx), nil
		}
	}
	return core.Transaction{}, core.ErrTransactionNotFound
}

func (s *Store) GetTransactions(_ context.Context, accountID, startDate, endDate string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.transactions {
		if accountID != "" && tx.AccountID != accountID {
			continue
		}
		if startDate != "" && tx.Date < startDate {
			continue
		}
		if endDate != "" && tx.Date > endDate {
			continue
		}
		out = append(out, s.resolveLocked(tx))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, tx engine.NewTransaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := core.Transaction{
		ID:          newID(),
		AccountID:   tx.AccountID,
		Date:        tx.Date,
		AmountMinor: tx.AmountMinor,
		Notes:       tx.Notes,
		CategoryID:  tx.CategoryID,
		PayeeID:     tx.PayeeID,
		Cleared:     tx.Cleared,
	}
	for _, sub := range tx.Subtransactions {
		sub.ID = newID()
		t.Subtransactions = append(t.Subtransactions, sub)
	}
	s.transactions = append(s.transactions, t)
	return t.ID, nil
}

func (s *Store) UpdateTransaction(_ context.Context, patch engine.TransactionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		tx := &s.transactions[i]
		if tx.ID != patch.ID {
			continue
		}
		if patch.Date != nil {
			tx.Date = *patch.Date
		}
		if patch.CategoryID != nil {
			tx.CategoryID = *patch.CategoryID
		}
		if patch.PayeeID != nil {
			tx.PayeeID = *patch.PayeeID
		}
		if patch.Notes != nil {
			tx.Notes = *patch.Notes
		}
		if patch.AmountMinor != nil {
			tx.AmountMinor = *patch.AmountMinor
		}
		if patch.Cleared != nil {
			tx.Cleared = *patch.Cleared
		}
		if patch.Subtransactions != nil {
			tx.Subtransactions = nil
			for _, sub := range patch.Subtransactions {
				sub.ID = newID()
				tx.Subtransactions = append(tx.Subtransactions, sub)
			}
		}
		return nil
	}
	return core.ErrTransactionNotFound
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return nil
		}
	}
	return core.ErrTransactionNotFound
}

func (s *Store) RunQuery(_ context.Context, q engine.Query) (engine.QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []core.Transaction
	for _, tx := range s.transactions {
		if !s.matchesLocked(tx, q) {
			continue
		}
		matched = append(matched, s.resolveLocked(tx))
	}

	switch q.SortBy {
	case "amount":
		sort.SliceStable(matched, func(i, j int) bool {
			if q.SortAsc {
				return matched[i].AmountMinor < matched[j].AmountMinor
			}
			return matched[i].AmountMinor > matched[j].AmountMinor
		})
	default:
		sort.SliceStable(matched, func(i, j int) bool {
			if q.SortAsc {
				return matched[i].Date < matched[j].Date
			}
			return matched[i].Date > matched[j].Date
		})
	}

	total := len(matched)
	if q.Offset > 0 {
		if q.Offset >= total {
			matched = nil
		} else {
			matched = matched[q.Offset:]
		}
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return engine.QueryResult{Transactions: matched, Total: total}, nil
}

func (s *Store) GetBudgetMonth(_ context.Context, month string) (core.BudgetMonth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bm := core.BudgetMonth{Month: month}
	spent := make(map[string]int64)
	for _, tx := range s.transactions {
		if len(tx.Date) < 7 || tx.Date[:7] != month {
			continue
		}
		if tx.AmountMinor > 0 {
			bm.IncomeMinor += tx.AmountMinor
			continue
		}
		if tx.IsSplit() {
			for _, sub := range tx.Subtransactions {
				spent[sub.CategoryID] += -sub.AmountMinor
			}
			continue
		}
		spent[tx.CategoryID] += -tx.AmountMinor
	}

	for _, cat := range s.categories {
		alloc := s.budgets[budgetKey{month: month, categoryID: cat.ID}]
		row := core.BudgetCategory{
			CategoryID:    cat.ID,
			CategoryName:  cat.Name,
			BudgetedMinor: alloc.budgetedMinor,
			SpentMinor:    spent[cat.ID],
			BalanceMinor:  alloc.budgetedMinor - spent[cat.ID],
			Carryover:     alloc.carryover,
		}
		bm.BudgetedMinor += row.BudgetedMinor
		bm.SpentMinor += row.SpentMinor
		bm.Categories = append(bm.Categories, row)
	}
	return bm, nil
}

func (s *Store) SetBudgetAmount(_ context.Context, month, categoryID string, amountMinor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.categoryExistsLocked(categoryID) {
		return core.ErrCategoryNotFound
	}
	key := budgetKey{month: month, categoryID: categoryID}
	alloc := s.budgets[key]
	alloc.budgetedMinor = amountMinor
	s.budgets[key] = alloc
	return nil
}

func (s *Store) SetBudgetCarryover(_ context.Context, month, categoryID string, carryover bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.categoryExistsLocked(categoryID) {
		return core.ErrCategoryNotFound
	}
	key := budgetKey{month: month, categoryID: categoryID}
	alloc := s.budgets[key]
	alloc.carryover = carryover
	s.budgets[key] = alloc
	return nil
}

func (s *Store) HoldForNextMonth(_ context.Context, month string, amountMinor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held[month] = amountMinor
	return nil
}

func (s *Store) ListRules(_ context.Context) ([]core.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Rule(nil), s.rules...), nil
}

func (s *Store) CreateRule(_ context.Context, rule core.Rule) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rule.ID = newID()
	if rule.ConditionsOp == "" {
		rule.ConditionsOp = "and"
	}
	s.rules = append(s.rules, rule)
	return rule.ID, nil
}

func (s *Store) UpdateRule(_ context.Context, rule core.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID == rule.ID {
			s.rules[i] = rule
			return nil
		}
	}
	return core.ErrRuleNotFound
}

func (s *Store) DeleteRule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID == id {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			return nil
		}
	}
	return core.ErrRuleNotFound
}

func (s *Store) Close() error { return nil }

func (s *Store) matchesLocked(tx core.Transaction, q engine.Query) bool {
	if q.AccountID != "" && tx.AccountID != q.AccountID {
		return false
	}
	if q.CategoryID != "" && tx.CategoryID != q.CategoryID {
		return false
	}
	if q.PayeeID != "" && tx.PayeeID != q.PayeeID {
		return false
	}
	if q.StartDate != "" && tx.Date < q.StartDate {
		return false
	}
	if q.EndDate != "" && tx.Date > q.EndDate {
		return false
	}
	if q.MinAmountMinor != nil && tx.AmountMinor < *q.MinAmountMinor {
		return false
	}
	if q.MaxAmountMinor != nil && tx.AmountMinor > *q.MaxAmountMinor {
		return false
	}
	if q.SearchText != "" {
		needle := strings.ToLower(q.SearchText)
		hay := strings.ToLower(tx.Notes + " " + s.payeeNameLocked(tx.PayeeID))
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	return true
}

// resolveLocked fills in the category and payee display names.
func (s *Store) resolveLocked(tx core.Transaction) core.Transaction {
	tx.CategoryName = s.categoryNameLocked(tx.CategoryID)
	tx.PayeeName = s.payeeNameLocked(tx.PayeeID)
	tx.Subtransactions = append([]core.Subtransaction(nil), tx.Subtransactions...)
	return tx
}

func (s *Store) categoryNameLocked(id string) string {
	for _, c := range s.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (s *Store) payeeNameLocked(id string) string {
	for _, p := range s.payees {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}

func (s *Store) categoryExistsLocked(id string) bool {
	for _, c := range s.categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) transactionSumLocked(accountID string) int64 {
	var sum int64
	for _, tx := range s.transactions {
		if tx.AccountID == accountID {
			sum += tx.AmountMinor
		}
	}
	return sum
}

func (s *Store) defaultGroupLocked() string {
	if len(s.groups) > 0 {
		return s.groups[0].ID
	}
	g := core.CategoryGroup{ID: newID(), Name: "Usual Expenses"}
	s.groups = append(s.groups, g)
	return g.ID
}
