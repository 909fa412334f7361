package amqp

import (
	"encoding/json"
	"time"
)

// Income event types.
const (
	EventIncomeAdded   = "income.added"
	EventIncomeUpdated = "income.updated"
)

// IncomeEvent notifies consumers that an income changed. It carries only
// the id; consumers read the current state from the store.
type IncomeEvent struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewIncomeEvent creates an event stamped with the current time.
func NewIncomeEvent(eventType, id string) *IncomeEvent {
	return &IncomeEvent{
		Type:      eventType,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *IncomeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// IncomeEventFromJSON parses an event from JSON bytes
func IncomeEventFromJSON(data []byte) (*IncomeEvent, error) {
	var evt IncomeEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, err
	}
	return &evt, nil
}
