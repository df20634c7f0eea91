package response

import (
	"errors"

	"budgetmcp/internal/core"
)

// ErrorKind places a failure in the caller-facing taxonomy.
type ErrorKind string

const (
	// ErrKindValidation covers caller-fixable input problems.
	ErrKindValidation ErrorKind = "validation"
	// ErrKindReference covers lookups that found nothing or a closed
	// account.
	ErrKindReference ErrorKind = "reference"
	// ErrKindDestructive is the empty-subtransactions case. It is
	// structurally a validation error but gets a dedicated kind because
	// the consequence is data corruption, not a bad argument.
	ErrKindDestructive ErrorKind = "destructive_operation"
	// ErrKindEngine covers failures inside or talking to the external
	// engine, surfaced as-is and never auto-retried.
	ErrKindEngine ErrorKind = "engine"
)

// ErrorDetail carries the typed error shape inside an error envelope.
type ErrorDetail struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// NewError converts a failure into the uniform error envelope. Every
// tool handler funnels errors through here so nothing uncontrolled
// crosses the transport boundary.
func NewError(resourceType string, err error) Envelope {
	kind := classify(err)
	return Envelope{
		Operation:    OpError,
		ResourceType: resourceType,
		Summary:      err.Error(),
		Error:        &ErrorDetail{Kind: kind, Message: err.Error()},
	}
}

func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, core.ErrEmptySubtransactions):
		return ErrKindDestructive
	case errors.Is(err, core.ErrAccountNotFound),
		errors.Is(err, core.ErrAccountClosed),
		errors.Is(err, core.ErrCategoryNotFound),
		errors.Is(err, core.ErrPayeeNotFound),
		errors.Is(err, core.ErrTransactionNotFound),
		errors.Is(err, core.ErrRuleNotFound):
		return ErrKindReference
	case errors.Is(err, core.ErrInvalidArgument),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrMissingTransactionID):
		return ErrKindValidation
	default:
		return ErrKindEngine
	}
}
