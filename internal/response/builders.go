package response

import "fmt"

// QueryBuilder assembles a query envelope.
type QueryBuilder struct {
	resourceType string
	data         any
	summary      string
	count        *int
	metadata     map[string]any
}

// NewQuery starts a query envelope for the given resource type and
// payload.
func NewQuery(resourceType string, data any) *QueryBuilder {
	return &QueryBuilder{
		resourceType: resourceType,
		data:         data,
		metadata:     make(map[string]any),
	}
}

// Summary overrides the auto-derived summary.
func (b *QueryBuilder) Summary(s string) *QueryBuilder {
	b.summary = s
	return b
}

// Count sets the explicit element count used for the auto summary and
// surfaced as metadata.count.
func (b *QueryBuilder) Count(n int) *QueryBuilder {
	b.count = &n
	b.metadata["count"] = n
	return b
}

// Filters records the filters applied to the query, passed through
// verbatim.
func (b *QueryBuilder) Filters(filters map[string]any) *QueryBuilder {
	if len(filters) > 0 {
		b.metadata["filters"] = filters
	}
	return b
}

// Period records the date window the query covered.
func (b *QueryBuilder) Period(start, end string) *QueryBuilder {
	b.metadata["period"] = Period{Start: start, End: end}
	return b
}

// Pagination records the result window.
func (b *QueryBuilder) Pagination(p Pagination) *QueryBuilder {
	b.metadata["pagination"] = p
	return b
}

// Warnings attaches advisory warnings to the result.
func (b *QueryBuilder) Warnings(warnings ...string) *QueryBuilder {
	if len(warnings) > 0 {
		b.metadata["warnings"] = warnings
	}
	return b
}

// Meta passes through an arbitrary metadata entry (balances, totals).
func (b *QueryBuilder) Meta(key string, value any) *QueryBuilder {
	b.metadata[key] = value
	return b
}

// Build finalizes the envelope, deriving the summary if none was set:
// "Retrieved {N} {resourceType}(s)" where N is the explicit count if
// given, else the data's element count if it is a list, else 1.
func (b *QueryBuilder) Build() Envelope {
	summary := b.summary
	if summary == "" {
		n := dataCount(b.data)
		if b.count != nil {
			n = *b.count
		}
		summary = fmt.Sprintf("Retrieved %d %s", n, pluralize(b.resourceType, n))
	}
	return Envelope{
		Operation:    OpQuery,
		ResourceType: b.resourceType,
		Summary:      summary,
		Data:         b.data,
		Metadata:     compact(b.metadata),
	}
}

// MutationBuilder assembles a create/update/delete envelope.
type MutationBuilder struct {
	operation    Operation
	resourceType string
	ids          []string
	summary      string
	metadata     map[string]any
}

// NewMutation starts a mutation envelope. A single ID and a
// one-element list are equivalent; both normalize to affected.count 1.
func NewMutation(op Operation, resourceType string, ids ...string) *MutationBuilder {
	return &MutationBuilder{
		operation:    op,
		resourceType: resourceType,
		ids:          ids,
		metadata:     make(map[string]any),
	}
}

// Summary overrides the auto-derived summary.
func (b *MutationBuilder) Summary(s string) *MutationBuilder {
	b.summary = s
	return b
}

// Changes merges the field-level delta into metadata. Other metadata
// entries already present are kept; this is a shallow merge, not a
// replace.
func (b *MutationBuilder) Changes(c Changes) *MutationBuilder {
	b.metadata["changes"] = c
	return b
}

// Warnings attaches advisory warnings that ride inside the successful
// mutation envelope.
func (b *MutationBuilder) Warnings(warnings ...string) *MutationBuilder {
	if len(warnings) > 0 {
		b.metadata["warnings"] = warnings
	}
	return b
}

// Meta passes through an arbitrary metadata entry.
func (b *MutationBuilder) Meta(key string, value any) *MutationBuilder {
	b.metadata[key] = value
	return b
}

var mutationVerbs = map[Operation]string{
	OpCreate: "Created",
	OpUpdate: "Updated",
	OpDelete: "Deleted",
}

// Build finalizes the envelope. The auto summary is
// "{Verb} {count} {resourceType}(s)", with " (ID: {id})" appended when
// exactly one resource was affected.
func (b *MutationBuilder) Build() Envelope {
	count := len(b.ids)
	summary := b.summary
	if summary == "" {
		verb := mutationVerbs[b.operation]
		if verb == "" {
			verb = string(b.operation)
		}
		summary = fmt.Sprintf("%s %d %s", verb, count, pluralize(b.resourceType, count))
		if count == 1 {
			summary += fmt.Sprintf(" (ID: %s)", b.ids[0])
		}
	}
	ids := b.ids
	if ids == nil {
		ids = []string{}
	}
	return Envelope{
		Operation:    b.operation,
		ResourceType: b.resourceType,
		Summary:      summary,
		Affected:     &Affected{IDs: ids, Count: count},
		Metadata:     compact(b.metadata),
	}
}

// ReportBuilder assembles a report/analyze envelope. The summary is
// mandatory here: report content is too heterogeneous to synthesize a
// meaningful one automatically.
type ReportBuilder struct {
	operation    Operation
	resourceType string
	summary      string
	sections     []Section
	data         any
	metadata     map[string]any
}

// NewReport starts a report envelope.
func NewReport(op Operation, resourceType, summary string) *ReportBuilder {
	return &ReportBuilder{
		operation:    op,
		resourceType: resourceType,
		summary:      summary,
		metadata:     make(map[string]any),
	}
}

// Section appends an ordered narrative chunk.
func (b *ReportBuilder) Section(title, content string, data any) *ReportBuilder {
	b.sections = append(b.sections, Section{Title: title, Content: content, Data: data})
	return b
}

// Data attaches the structured payload of the whole report.
func (b *ReportBuilder) Data(data any) *ReportBuilder {
	b.data = data
	return b
}

// Period records the window the report covers.
func (b *ReportBuilder) Period(start, end string) *ReportBuilder {
	b.metadata["period"] = Period{Start: start, End: end}
	return b
}

// Meta passes through an arbitrary metadata entry.
func (b *ReportBuilder) Meta(key string, value any) *ReportBuilder {
	b.metadata[key] = value
	return b
}

// Build finalizes the envelope.
func (b *ReportBuilder) Build() Envelope {
	return Envelope{
		Operation:    b.operation,
		ResourceType: b.resourceType,
		Summary:      b.summary,
		Sections:     b.sections,
		Data:         b.data,
		Metadata:     compact(b.metadata),
	}
}

func compact(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return m
}
