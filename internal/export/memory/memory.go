// Package memory is the in-process audit sink used by tests and local
// runs without Google credentials.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"budgetmcp/internal/export"
)

type Store struct {
	mu    sync.Mutex
	items []export.AuditEntry
}

var _ export.AuditWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the entry and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, entry export.AuditEntry) (string, error) {
	if entry.Operation == "" || entry.ResourceType == "" {
		return "", errors.New("audit entry missing operation or resource type")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, entry)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Entries returns a copy of everything appended so far.
func (s *Store) Entries() []export.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]export.AuditEntry(nil), s.items...)
}
