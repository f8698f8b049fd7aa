package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"expensetracker/internal/core"

	"github.com/google/uuid"
)

// EventType names a change to an expense record.
type EventType string

const (
	EventCreated EventType = "expense.created"
	EventUpdated EventType = "expense.updated"
	EventDeleted EventType = "expense.deleted"
)

func (t EventType) Valid() bool {
	switch t {
	case EventCreated, EventUpdated, EventDeleted:
		return true
	}
	return false
}

// ExpenseEvent is published after every successful write. Consumers reload
// whatever they need from the store; the event only says what changed.
type ExpenseEvent struct {
	EventID   string    `json:"event_id"`
	Type      EventType `json:"type"`
	Account   string    `json:"account"`
	ExpenseID string    `json:"expense_id"`
	Month     int       `json:"month,omitempty"`
	Year      int       `json:"year,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEvent builds an event for e in account.
func NewExpenseEvent(t EventType, account core.Account, e core.Expense) *ExpenseEvent {
	return &ExpenseEvent{
		EventID:   uuid.NewString(),
		Type:      t,
		Account:   account.String(),
		ExpenseID: e.ID,
		Month:     e.Month,
		Year:      e.Year,
		Timestamp: time.Now().UTC(),
	}
}

func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventFromJSON decodes and checks an event body.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Type.Valid() {
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	if _, err := core.ParseAccount(msg.Account); err != nil {
		return nil, fmt.Errorf("event account: %w", err)
	}
	return &msg, nil
}
