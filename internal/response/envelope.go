// Package response is the single source of truth for the response
// shape returned by every tool. Handlers never hand-assemble response
// objects; they feed data into one of the three builders (query,
// mutation, report) or the error envelope constructor.
//
// The builders are pure data transformation and never fail. Upstream
// errors take the separate error-envelope path in errors.go.
package response

import "reflect"

// Operation discriminates the envelope variants. A calling model
// branches on this tag without per-tool guesswork.
type Operation string

const (
	OpQuery   Operation = "query"
	OpCreate  Operation = "create"
	OpUpdate  Operation = "update"
	OpDelete  Operation = "delete"
	OpReport  Operation = "report"
	OpAnalyze Operation = "analyze"
	OpError   Operation = "error"
)

// Affected identifies the resources touched by a mutation.
type Affected struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

// Pagination describes the window of a paged query result.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// Period is a before/after date window applied to a query or report.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Changes records the field-level delta of an update.
type Changes struct {
	UpdatedFields  []string       `json:"updatedFields"`
	PreviousValues map[string]any `json:"previousValues,omitempty"`
	NewValues      map[string]any `json:"newValues,omitempty"`
}

// Section is one human-readable narrative chunk of a report, with an
// optional structured payload.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Data    any    `json:"data,omitempty"`
}

// Envelope is the standardized top-level response object. Exactly one
// of the three success shapes is populated depending on Operation;
// it is constructed once per invocation, never mutated after Build,
// and serialized to the transport as the full response body.
type Envelope struct {
	Operation    Operation      `json:"operation"`
	ResourceType string         `json:"resourceType"`
	Summary      string         `json:"summary"`
	Data         any            `json:"data,omitempty"`
	Affected     *Affected      `json:"affected,omitempty"`
	Sections     []Section      `json:"sections,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Error        *ErrorDetail   `json:"error,omitempty"`
}

// dataCount derives the element count for auto summaries: lists count
// their elements, anything else counts as one.
func dataCount(data any) int {
	if data == nil {
		return 1
	}
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		return v.Len()
	}
	return 1
}

// pluralize appends a plain "s" when n != 1. Irregular nouns are a
// known cosmetic limitation, not a correctness target.
func pluralize(resourceType string, n int) string {
	if n == 1 {
		return resourceType
	}
	return resourceType + "s"
}
