package core

// SubtransactionEdit is one replacement line item in an update request.
// Amounts arrive in decimal display units and are converted to cents
// by the update guard.
type SubtransactionEdit struct {
	Amount     float64 `json:"amount"`
	CategoryID string  `json:"categoryId,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

// TransactionUpdate is the composite input to the split-transaction
// guard. Every field except ID is optional and tri-state aware:
//
//   - nil pointer: field untouched, never sent to the engine
//   - non-nil: field set to the pointed-to value
//
// Subtransactions uses a slice pointer so that JSON "[]" decodes to a
// non-nil pointer to an empty slice, distinct from the field being
// absent. The empty case is rejected outright by the guard; collapsing
// it into "absent" would reopen the destructive call pattern.
type TransactionUpdate struct {
	ID              string                `json:"id"`
	Date            *string               `json:"date,omitempty"`
	CategoryID      *string               `json:"categoryId,omitempty"`
	PayeeID         *string               `json:"payeeId,omitempty"`
	Notes           *string               `json:"notes,omitempty"`
	Amount          *float64              `json:"amount,omitempty"`
	Cleared         *bool                 `json:"cleared,omitempty"`
	Subtransactions *[]SubtransactionEdit `json:"subtransactions,omitempty"`
}

// HasSubtransactions reports whether the request carries a replacement
// subtransaction list, empty or not.
func (u TransactionUpdate) HasSubtransactions() bool {
	return u.Subtransactions != nil
}

// Empty reports whether the request changes nothing at all.
func (u TransactionUpdate) Empty() bool {
	return u.Date == nil && u.CategoryID == nil && u.PayeeID == nil &&
		u.Notes == nil && u.Amount == nil && u.Cleared == nil &&
		u.Subtransactions == nil
}
