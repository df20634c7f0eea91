package tools

import (
	"context"
	"fmt"

	"budgetmcp/internal/core"
	"budgetmcp/internal/engine"
	"budgetmcp/internal/response"
	"budgetmcp/internal/services"
)

func transactionTools() []Tool {
	return []Tool{
		{
			Name:         "get_transactions",
			Description:  "List transactions for an account within a date range.",
			ResourceType: "transaction",
			ReadOnly:     true,
			InputSchema: schemaObject(map[string]any{
				"accountId": propString("Account to read from"),
				"startDate": propString("Range start, YYYY-MM-DD"),
				"endDate":   propString("Range end, YYYY-MM-DD"),
			}, "accountId", "startDate", "endDate"),
			handler: handleGetTransactions,
		},
		{
			Name:         "search_transactions",
			Description:  "Search transactions with filters, sorting, and pagination.",
			ResourceType: "transaction",
			ReadOnly:     true,
			InputSchema: schemaObject(map[string]any{
				"accountId":  propString("Restrict to one account"),
				"categoryId": propString("Restrict to one category"),
				"payeeId":    propString("Restrict to one payee"),
				"startDate":  propString("Range start, YYYY-MM-DD"),
				"endDate":    propString("Range end, YYYY-MM-DD"),
				"minAmount":  propNumber("Minimum amount in dollars, inclusive"),
				"maxAmount":  propNumber("Maximum amount in dollars, inclusive"),
				"searchText": propString("Substring match on notes and payee name"),
				"sortBy":     propString("Sort key: date or amount, date descending by default"),
				"sortAsc":    propBool("Sort ascending instead of descending"),
				"limit":      propInteger("Page size, default 50"),
				"offset":     propInteger("Page offset, default 0"),
			}),
			handler: handleSearchTransactions,
		},
		{
			Name:         "create_transaction",
			Description:  "Record a new transaction. Negative amounts are spending, positive are income.",
			ResourceType: "transaction",
			InputSchema: schemaObject(map[string]any{
				"accountId":    propString("Account the transaction belongs to"),
				"amount":       propNumber("Amount in dollars, negative for spending"),
				"date":         propString("Transaction date, YYYY-MM-DD"),
				"payeeId":      propString("Payee ID"),
				"payeeName":    propString("Payee name, resolved case-insensitively when payeeId is absent"),
				"categoryId":   propString("Category ID"),
				"categoryName": propString("Category name, resolved case-insensitively when categoryId is absent"),
				"notes":        propString("Free-form note"),
				"cleared":      propBool("Mark the transaction cleared"),
				"subtransactions": propArray(
					"Split line items; their amounts should sum to the parent amount",
					subtransactionItemSchema),
			}, "accountId", "amount", "date"),
			handler: handleCreateTransaction,
		},
		{
			Name:         "update_transaction",
			Description:  "Update fields of an existing transaction. Omitted fields are untouched.",
			ResourceType: "transaction",
			InputSchema: schemaObject(map[string]any{
				"id":         propString("Transaction to update"),
				"date":       propString("New date, YYYY-MM-DD"),
				"amount":     propNumber("New amount in dollars"),
				"categoryId": propString("New category ID"),
				"payeeId":    propString("New payee ID"),
				"notes":      propString("New note"),
				"cleared":    propBool("New cleared state"),
				"subtransactions": propArray(
					"Replacement split line items; must not be empty",
					subtransactionItemSchema),
			}, "id"),
			handler: handleUpdateTransaction,
		},
		{
			Name:         "delete_transaction",
			Description:  "Delete a transaction. Deleting a split parent removes its line items too.",
			ResourceType: "transaction",
			Destructive:  true,
			InputSchema: schemaObject(map[string]any{
				"id": propString("Transaction to delete"),
			}, "id"),
			handler: handleDeleteTransaction,
		},
	}
}

func handleGetTransactions(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	accountID, err := args.RequireString("accountId")
	if err != nil {
		return response.Envelope{}, err
	}
	startDate, err := args.RequireString("startDate")
	if err != nil {
		return response.Envelope{}, err
	}
	endDate, err := args.RequireString("endDate")
	if err != nil {
		return response.Envelope{}, err
	}
	if err := core.ValidateDate(startDate); err != nil {
		return response.Envelope{}, err
	}
	if err := core.ValidateDate(endDate); err != nil {
		return response.Envelope{}, err
	}
	if _, err := services.NewLookup(eng).ValidateAccount(ctx, accountID); err != nil {
		return response.Envelope{}, err
	}

	txs, err := eng.GetTransactions(ctx, accountID, startDate, endDate)
	if err != nil {
		return response.Envelope{}, err
	}
	return response.NewQuery("transaction", txs).
		Count(len(txs)).
		Period(startDate, endDate).
		Filters(map[string]any{"accountId": accountID}).
		Build(), nil
}

func handleSearchTransactions(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	q := engine.Query{
		Limit:  args.Int("limit", 50),
		Offset: args.Int("offset", 0),
	}
	q.AccountID, _ = args.String("accountId")
	q.CategoryID, _ = args.String("categoryId")
	q.PayeeID, _ = args.String("payeeId")
	q.SearchText, _ = args.String("searchText")
	q.SortBy, _ = args.String("sortBy")
	q.SortAsc, _ = args.Bool("sortAsc")

	q.StartDate, _ = args.String("startDate")
	if q.StartDate != "" {
		if err := core.ValidateDate(q.StartDate); err != nil {
			return response.Envelope{}, err
		}
	}
	q.EndDate, _ = args.String("endDate")
	if q.EndDate != "" {
		if err := core.ValidateDate(q.EndDate); err != nil {
			return response.Envelope{}, err
		}
	}
	if v, ok := args.Float("minAmount"); ok {
		minor, err := core.ToMinorUnits(v)
		if err != nil {
			return response.Envelope{}, err
		}
		q.MinAmountMinor = &minor
	}
	if v, ok := args.Float("maxAmount"); ok {
		minor, err := core.ToMinorUnits(v)
		if err != nil {
			return response.Envelope{}, err
		}
		q.MaxAmountMinor = &minor
	}

	res, err := eng.RunQuery(ctx, q)
	if err != nil {
		return response.Envelope{}, err
	}
	builder := response.NewQuery("transaction", res.Transactions).
		Count(len(res.Transactions)).
		Pagination(response.Pagination{
			Limit:   q.Limit,
			Offset:  q.Offset,
			Total:   res.Total,
			HasMore: q.Offset+len(res.Transactions) < res.Total,
		})
	if filters := searchFilters(q); len(filters) > 0 {
		builder.Filters(filters)
	}
	return builder.Build(), nil
}

func searchFilters(q engine.Query) map[string]any {
	filters := make(map[string]any)
	if q.AccountID != "" {
		filters["accountId"] = q.AccountID
	}
	if q.CategoryID != "" {
		filters["categoryId"] = q.CategoryID
	}
	if q.PayeeID != "" {
		filters["payeeId"] = q.PayeeID
	}
	if q.StartDate != "" {
		filters["startDate"] = q.StartDate
	}
	if q.EndDate != "" {
		filters["endDate"] = q.EndDate
	}
	if q.SearchText != "" {
		filters["searchText"] = q.SearchText
	}
	return filters
}

func handleCreateTransaction(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	accountID, err := args.RequireString("accountId")
	if err != nil {
		return response.Envelope{}, err
	}
	amount, err := args.RequireFloat("amount")
	if err != nil {
		return response.Envelope{}, err
	}
	date, err := args.RequireString("date")
	if err != nil {
		return response.Envelope{}, err
	}
	if err := core.ValidateDate(date); err != nil {
		return response.Envelope{}, err
	}
	amountMinor, err := core.ToMinorUnits(amount)
	if err != nil {
		return response.Envelope{}, err
	}

	lookup := services.NewLookup(eng)
	if _, err := lookup.ValidateAccount(ctx, accountID); err != nil {
		return response.Envelope{}, err
	}

	categoryID, _ := args.String("categoryId")
	if name, ok := args.String("categoryName"); ok && categoryID == "" {
		cat, err := lookup.FindCategoryByName(ctx, name)
		if err != nil {
			return response.Envelope{}, err
		}
		categoryID = cat.ID
	}
	payeeID, _ := args.String("payeeId")
	if name, ok := args.String("payeeName"); ok && payeeID == "" {
		payee, err := lookup.FindPayeeByName(ctx, name)
		if err != nil {
			return response.Envelope{}, err
		}
		payeeID = payee.ID
	}

	tx := engine.NewTransaction{
		AccountID:   accountID,
		Date:        date,
		AmountMinor: amountMinor,
		CategoryID:  categoryID,
		PayeeID:     payeeID,
	}
	tx.Notes, _ = args.String("notes")
	tx.Cleared, _ = args.Bool("cleared")

	var warnings []string
	if raw, ok := args["subtransactions"].([]any); ok {
		subs, err := decodeSubtransactions(raw)
		if err != nil {
			return response.Envelope{}, err
		}
		tx.Subtransactions = subs
		var total int64
		for _, sub := range subs {
			total += sub.AmountMinor
		}
		if total != amountMinor {
			warnings = append(warnings, fmt.Sprintf(
				"subtransaction amounts sum to %s but the transaction amount is %s",
				core.FormatAmount(total), core.FormatAmount(amountMinor)))
		}
	}

	id, err := eng.CreateTransaction(ctx, tx)
	if err != nil {
		return response.Envelope{}, err
	}

	newValues := map[string]any{
		"accountId": accountID,
		"date":      date,
		"amount":    core.FormatAmount(amountMinor),
	}
	if categoryID != "" {
		newValues["categoryId"] = categoryID
	}
	if payeeID != "" {
		newValues["payeeId"] = payeeID
	}
	if tx.Notes != "" {
		newValues["notes"] = tx.Notes
	}
	if len(tx.Subtransactions) > 0 {
		newValues["subtransactionCount"] = len(tx.Subtransactions)
	}

	return response.NewMutation(response.OpCreate, "transaction", id).
		Changes(response.Changes{NewValues: newValues}).
		Warnings(warnings...).
		Build(), nil
}

func decodeSubtransactions(raw []any) ([]core.Subtransaction, error) {
	subs := make([]core.Subtransaction, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: subtransactions items must be objects", core.ErrInvalidArgument)
		}
		sub := Args(m)
		amount, err := sub.RequireFloat("amount")
		if err != nil {
			return nil, err
		}
		minor, err := core.ToMinorUnits(amount)
		if err != nil {
			return nil, err
		}
		entry := core.Subtransaction{AmountMinor: minor}
		entry.CategoryID, _ = sub.String("categoryId")
		entry.Notes, _ = sub.String("notes")
		subs = append(subs, entry)
	}
	return subs, nil
}

func handleUpdateTransaction(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	var update core.TransactionUpdate
	if err := args.Decode(&update); err != nil {
		return response.Envelope{}, err
	}
	if update.ID == "" {
		return response.Envelope{}, core.ErrMissingTransactionID
	}
	if update.Empty() {
		return response.Envelope{}, fmt.Errorf("%w: no fields to update", core.ErrInvalidArgument)
	}

	patch, warnings, err := services.PrepareTransactionUpdate(update)
	if err != nil {
		return response.Envelope{}, err
	}

	current, err := eng.GetTransaction(ctx, update.ID)
	if err != nil {
		return response.Envelope{}, err
	}
	changes := diffChanges(current, update, patch)

	if err := eng.UpdateTransaction(ctx, patch); err != nil {
		return response.Envelope{}, err
	}

	return response.NewMutation(response.OpUpdate, "transaction", update.ID).
		Changes(changes).
		Warnings(warnings...).
		Build(), nil
}

// diffChanges records only the fields the caller set, with previous
// values read before the write. Money values render formatted.
func diffChanges(current core.Transaction, u core.TransactionUpdate, patch engine.TransactionPatch) response.Changes {
	c := response.Changes{
		PreviousValues: make(map[string]any),
		NewValues:      make(map[string]any),
	}
	set := func(field string, prev, next any) {
		c.UpdatedFields = append(c.UpdatedFields, field)
		c.PreviousValues[field] = prev
		c.NewValues[field] = next
	}
	if u.Date != nil {
		set("date", current.Date, *u.Date)
	}
	if u.Amount != nil {
		set("amount", core.FormatAmount(current.AmountMinor), core.FormatAmount(*patch.AmountMinor))
	}
	if u.CategoryID != nil {
		set("categoryId", current.CategoryID, *u.CategoryID)
	}
	if u.PayeeID != nil {
		set("payeeId", current.PayeeID, *u.PayeeID)
	}
	if u.Notes != nil {
		set("notes", current.Notes, *u.Notes)
	}
	if u.Cleared != nil {
		set("cleared", current.Cleared, *u.Cleared)
	}
	if u.Subtransactions != nil {
		set("subtransactions", len(current.Subtransactions), len(patch.Subtransactions))
	}
	return c
}

func handleDeleteTransaction(ctx context.Context, eng engine.Engine, args Args) (response.Envelope, error) {
	id, err := args.RequireString("id")
	if err != nil {
		return response.Envelope{}, err
	}
	tx, err := eng.GetTransaction(ctx, id)
	if err != nil {
		return response.Envelope{}, err
	}
	if err := eng.DeleteTransaction(ctx, id); err != nil {
		return response.Envelope{}, err
	}
	summary := fmt.Sprintf("Deleted 1 transaction (ID: %s)", id)
	if tx.IsSplit() {
		summary = fmt.Sprintf("Deleted 1 split transaction and its %d line items (ID: %s)",
			len(tx.Subtransactions), id)
	}
	return response.NewMutation(response.OpDelete, "transaction", id).
		Summary(summary).
		Build(), nil
}
