package amqp

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventCreated  EventType = "created"
	EventDeleted  EventType = "deleted"
	EventImported EventType = "imported"
)

// LedgerEvent announces a change to the ledger. It carries no record data;
// consumers reload the snapshot from the shared store.
type LedgerEvent struct {
	Type      EventType `json:"type"`
	ID        string    `json:"id,omitempty"`
	Month     string    `json:"month,omitempty"`
	Count     int       `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(typ EventType, id, month string, count int) *LedgerEvent {
	return &LedgerEvent{
		Type:      typ,
		ID:        id,
		Month:     month,
		Count:     count,
		Timestamp: time.Now(),
	}
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
