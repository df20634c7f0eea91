package events

import (
	"encoding/json"
	"time"
)

// MutationEvent is published after every successful mutating tool
// call. Consumers get the operation and the affected IDs and fetch
// anything heavier themselves.
type MutationEvent struct {
	Operation    string    `json:"operation"` // create | update | delete
	ResourceType string    `json:"resourceType"`
	ResourceIDs  []string  `json:"resourceIds"`
	Summary      string    `json:"summary,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewMutationEvent stamps an event with the current time.
func NewMutationEvent(operation, resourceType string, ids []string, summary string) *MutationEvent {
	return &MutationEvent{
		Operation:    operation,
		ResourceType: resourceType,
		ResourceIDs:  ids,
		Summary:      summary,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (m *MutationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MutationEventFromJSON parses an event from JSON bytes.
func MutationEventFromJSON(data []byte) (*MutationEvent, error) {
	var ev MutationEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
