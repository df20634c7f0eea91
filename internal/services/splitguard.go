package services

import (
	"budgetmcp/internal/core"
	"budgetmcp/internal/engine"
)

// Warning texts attached to otherwise-successful updates. They flag
// persistence unreliability observed in the external engine when
// touching split transactions; the caller should re-fetch and verify
// rather than trust the write blindly.
const (
	WarnSubtransactionUpdate = "Updating a split's subtransaction array has known limitations: " +
		"structural changes frequently fail to persist visibly. Re-fetch the " +
		"transaction afterwards and verify the result."
	WarnSplitParentFields = "When the target transaction is a split parent, changes to date, " +
		"amount, or notes are known to be silently ignored by the budgeting engine. " +
		"Update subtransactions individually by ID or recreate the split instead."
)

// PrepareTransactionUpdate validates an update request and assembles
// the engine payload. It is the only gate between callers and the
// engine's update call, and it exists to block one known-destructive
// pattern: sending an explicitly empty subtransaction list.
//
// The returned warnings are advisory and never abort the operation;
// they ride inside the successful mutation envelope. The only hard
// failure is the empty-list precondition (and a missing ID), both
// caller-input problems raised before the engine is touched.
func PrepareTransactionUpdate(u core.TransactionUpdate) (engine.TransactionPatch, []string, error) {
	var patch engine.TransactionPatch
	if u.ID == "" {
		return patch, nil, core.ErrMissingTransactionID
	}

	if u.Subtransactions != nil && len(*u.Subtransactions) == 0 {
		return patch, nil, core.ErrEmptySubtransactions
	}

	patch.ID = u.ID
	if u.Date != nil {
		if err := core.ValidateDate(*u.Date); err != nil {
			return engine.TransactionPatch{}, nil, err
		}
		patch.Date = u.Date
	}
	patch.CategoryID = u.CategoryID
	patch.PayeeID = u.PayeeID
	patch.Notes = u.Notes
	patch.Cleared = u.Cleared
	if u.Amount != nil {
		minor, err := core.ToMinorUnits(*u.Amount)
		if err != nil {
			return engine.TransactionPatch{}, nil, err
		}
		patch.AmountMinor = &minor
	}

	var warnings []string
	if u.Subtransactions != nil {
		subs := make([]core.Subtransaction, 0, len(*u.Subtransactions))
		for _, edit := range *u.Subtransactions {
			minor, err := core.ToMinorUnits(edit.Amount)
			if err != nil {
				return engine.TransactionPatch{}, nil, err
			}
			subs = append(subs, core.Subtransaction{
				AmountMinor: minor,
				CategoryID:  edit.CategoryID,
				Notes:       edit.Notes,
			})
		}
		patch.Subtransactions = subs
		warnings = append(warnings, WarnSubtransactionUpdate)
	} else if u.Date != nil || u.Amount != nil || u.Notes != nil {
		warnings = append(warnings, WarnSplitParentFields)
	}

	return patch, warnings, nil
}
