package amqp

import (
	"encoding/json"
	"time"
)

// EventType names what happened to the ledger or the budget registry.
type EventType string

const (
	EventTransactionRecorded EventType = "transaction.recorded"
	EventTransactionEdited   EventType = "transaction.edited"
	EventTransactionDeleted  EventType = "transaction.deleted"
	EventBudgetSet           EventType = "budget.set"
	EventBudgetDeleted       EventType = "budget.deleted"
	EventImportCommitted     EventType = "import.committed"
)

// LedgerEvent is a lightweight change notification. Consumers re-read the
// files for details; the event only says what changed.
type LedgerEvent struct {
	Type          EventType `json:"type"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Category      string    `json:"category,omitempty"`
	Count         int       `json:"count,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(t EventType, transactionID, category string) *LedgerEvent {
	return &LedgerEvent{
		Type:          t,
		TransactionID: transactionID,
		Category:      category,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
