package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"servicos/internal/core"
)

// RecordMessage is the wire form of a service record inside an event.
// Price travels as a fixed two-place decimal string.
type RecordMessage struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	ServiceType    string    `json:"service_type"`
	Price          string    `json:"price"`
	UserID         string    `json:"user_id"`
	Username       string    `json:"username"`
	CreatedAt      time.Time `json:"created_at"`
	IncludeInTotal bool      `json:"include_in_total"`
	AdminOverride  bool      `json:"admin_override"`
}

// RecordEventMessage is published after every successful record mutation.
type RecordEventMessage struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	ActorID    string        `json:"actor_id"`
	OccurredAt time.Time     `json:"occurred_at"`
	Record     RecordMessage `json:"record"`
}

func NewRecordEventMessage(e core.RecordEvent) *RecordEventMessage {
	r := e.Record
	return &RecordEventMessage{
		ID:         e.ID,
		Type:       string(e.Type),
		ActorID:    e.ActorID,
		OccurredAt: e.OccurredAt,
		Record: RecordMessage{
			ID:             r.ID,
			Title:          r.Title,
			ServiceType:    string(r.ServiceType),
			Price:          r.Price.String(),
			UserID:         r.UserID,
			Username:       r.Username,
			CreatedAt:      r.CreatedAt,
			IncludeInTotal: r.IncludeInTotal,
			AdminOverride:  r.AdminOverride,
		},
	}
}

func (m *RecordEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordEventMessageFromJSON(data []byte) (*RecordEventMessage, error) {
	var msg RecordEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Event converts the message back into the domain event.
func (m *RecordEventMessage) Event() (core.RecordEvent, error) {
	switch core.EventType(m.Type) {
	case core.EventRecordCreated, core.EventRecordAuthorized, core.EventRecordRevoked, core.EventRecordDeleted:
	default:
		return core.RecordEvent{}, fmt.Errorf("unknown event type %q", m.Type)
	}
	price, err := core.ParseMoney(m.Record.Price)
	if err != nil {
		return core.RecordEvent{}, fmt.Errorf("parse price %q: %w", m.Record.Price, err)
	}
	return core.RecordEvent{
		ID:         m.ID,
		Type:       core.EventType(m.Type),
		ActorID:    m.ActorID,
		OccurredAt: m.OccurredAt,
		Record: core.ServiceRecord{
			ID:             m.Record.ID,
			Title:          m.Record.Title,
			ServiceType:    core.ServiceType(m.Record.ServiceType),
			Price:          price,
			UserID:         m.Record.UserID,
			Username:       m.Record.Username,
			CreatedAt:      m.Record.CreatedAt,
			IncludeInTotal: m.Record.IncludeInTotal,
			AdminOverride:  m.Record.AdminOverride,
		},
	}, nil
}
