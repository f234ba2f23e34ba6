package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"servicos/internal/core"
	"servicos/internal/log"
)

// EventPublisher receives a RecordEvent after every successful mutation.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, e core.RecordEvent) error
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.Discard()
	}
	return logger
}

// publish never fails the calling operation: the mutation already happened.
func publish(ctx context.Context, p EventPublisher, logger *log.Logger, now func() time.Time,
	typ core.EventType, r core.ServiceRecord, actor string) {
	if p == nil {
		return
	}
	e := core.RecordEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		Record:     r,
		ActorID:    actor,
		OccurredAt: now().UTC(),
	}
	if err := p.PublishRecordEvent(ctx, e); err != nil {
		logger.WarnContext(ctx, "Failed to publish record event",
			log.FieldOperation, log.OpPublish,
			log.FieldEventType, string(typ),
			log.FieldRecordID, r.ID,
			log.FieldError, err)
	}
}
