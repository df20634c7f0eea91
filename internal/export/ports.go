// Package export defines the outbound port for the mutation audit
// trail. The worker feeds mutation events into an AuditWriter; the
// Google Sheets adapter is the production sink and the memory sink
// backs tests.
package export

import (
	"context"
	"time"
)

// AuditEntry is one row of the audit trail.
type AuditEntry struct {
	Timestamp    time.Time
	Operation    string
	ResourceType string
	ResourceIDs  []string
	Summary      string
}

// AuditWriter appends one entry and returns an adapter-specific row
// reference.
type AuditWriter interface {
	Append(ctx context.Context, entry AuditEntry) (rowRef string, err error)
}
