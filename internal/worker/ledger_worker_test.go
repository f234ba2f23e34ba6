package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"servicos/internal/core"
	"servicos/internal/log"
	"servicos/internal/sheets/memory"
)

type flakyLedger struct {
	*memory.Ledger
	failures int
	idsErr   error
}

func (f *flakyLedger) AppendEvent(ctx context.Context, e core.RecordEvent) (string, error) {
	if f.failures > 0 {
		f.failures--
		return "", errors.New("quota exceeded")
	}
	return f.Ledger.AppendEvent(ctx, e)
}

func (f *flakyLedger) EventIDs(ctx context.Context) (map[string]struct{}, error) {
	if f.idsErr != nil {
		return nil, f.idsErr
	}
	return f.Ledger.EventIDs(ctx)
}

// sliceSource replays events, redelivering each one until the handler accepts it.
type sliceSource struct {
	events []core.RecordEvent
	tries  int
}

func (s *sliceSource) ConsumeRecordEvents(ctx context.Context, handler func(context.Context, core.RecordEvent) error) error {
	for _, e := range s.events {
		for {
			s.tries++
			if err := handler(ctx, e); err == nil {
				break
			}
			if s.tries > 10 {
				return errors.New("gave up")
			}
		}
	}
	return nil
}

func event(id string, typ core.EventType) core.RecordEvent {
	return core.RecordEvent{ID: id, Type: typ, OccurredAt: time.Now(), Record: core.ServiceRecord{ID: "r-" + id}}
}

func TestRunAppendsOncePerEvent(t *testing.T) {
	ledger := &flakyLedger{Ledger: memory.New(time.UTC), failures: 1}
	w := NewLedgerWorker(ledger, log.Discard())
	src := &sliceSource{events: []core.RecordEvent{
		event("e1", core.EventRecordCreated),
		event("e2", core.EventRecordAuthorized),
		event("e1", core.EventRecordCreated), // redelivered
	}}

	if err := w.Run(context.Background(), src); err != nil {
		t.Fatalf("run: %v", err)
	}
	if rows := ledger.Rows(); len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if src.tries != 4 {
		t.Fatalf("expected one retry, got %d tries", src.tries)
	}
}

func TestPrimeSkipsKnownEvents(t *testing.T) {
	inner := memory.New(time.UTC)
	if _, err := inner.AppendEvent(context.Background(), event("old", core.EventRecordDeleted)); err != nil {
		t.Fatal(err)
	}
	w := NewLedgerWorker(&flakyLedger{Ledger: inner}, log.Discard())
	if err := w.Prime(context.Background()); err != nil {
		t.Fatalf("prime: %v", err)
	}
	if err := w.HandleEvent(context.Background(), event("old", core.EventRecordDeleted)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if rows := inner.Rows(); len(rows) != 1 {
		t.Fatalf("known event appended again: %d rows", len(rows))
	}
}

func TestRunContinuesWhenPrimeFails(t *testing.T) {
	ledger := &flakyLedger{Ledger: memory.New(time.UTC), idsErr: errors.New("403")}
	w := NewLedgerWorker(ledger, log.Discard())
	if err := w.Run(context.Background(), &sliceSource{events: []core.RecordEvent{event("e1", core.EventRecordRevoked)}}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(ledger.Rows()) != 1 {
		t.Fatal("event not appended")
	}
}
