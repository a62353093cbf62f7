package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	// EventOrderCreated is emitted by the external ordering system.
	EventOrderCreated EventType = "order.created"
	EventOrderChanged EventType = "order.changed"
	EventMenuChanged  EventType = "menu.changed"
)

// ChangeEvent travels over kafka between the ordering system and dashboard instances.
type ChangeEvent struct {
	Type          EventType       `json:"type"`
	EntityID      string          `json:"entityId"`
	Owner         string          `json:"owner,omitempty"`
	Source        string          `json:"source,omitempty"`
	RecipientName string          `json:"recipientName,omitempty"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Timestamp     time.Time       `json:"timestamp"`
}
