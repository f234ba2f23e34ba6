package core

import "time"

type EventType string

const (
	EventRecordCreated    EventType = "record.created"
	EventRecordAuthorized EventType = "record.authorized"
	EventRecordRevoked    EventType = "record.revoked"
	EventRecordDeleted    EventType = "record.deleted"
)

// RecordEvent describes a successful mutation of a service record.
// It carries the record state after the mutation (before it, for deletions).
type RecordEvent struct {
	ID         string
	Type       EventType
	Record     ServiceRecord
	ActorID    string
	OccurredAt time.Time
}
