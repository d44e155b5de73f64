package amqp

import (
	"encoding/json"
	"time"

	"ledger/internal/core"
)

// StateChangedMessage announces a state change. It carries the full state
// after the change so consumers never need to replay earlier messages.
type StateChangedMessage struct {
	Action       string             `json:"action"`
	Transactions []core.Transaction `json:"transactions"`
	Budgets      []core.Budget      `json:"budgets"`
	Categories   []string           `json:"categories"`
	Timestamp    time.Time          `json:"timestamp"`
}

// NewStateChangedMessage builds a message for action and the resulting state
func NewStateChangedMessage(action string, state core.AppState) *StateChangedMessage {
	return &StateChangedMessage{
		Action:       action,
		Transactions: state.Transactions,
		Budgets:      state.Budgets,
		Categories:   state.Categories,
		Timestamp:    time.Now(),
	}
}

// State returns the carried state
func (m *StateChangedMessage) State() core.AppState {
	return core.AppState{
		Transactions: m.Transactions,
		Budgets:      m.Budgets,
		Categories:   m.Categories,
	}
}

// ToJSON converts the message to JSON bytes
func (m *StateChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// StateChangedMessageFromJSON creates a message from JSON bytes
func StateChangedMessageFromJSON(data []byte) (*StateChangedMessage, error) {
	var msg StateChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
