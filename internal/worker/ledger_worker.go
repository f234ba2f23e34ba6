// Package worker mirrors record events into the ledger spreadsheet.
package worker

import (
	"context"
	"fmt"
	"sync"

	"servicos/internal/core"
	"servicos/internal/log"
	"servicos/internal/sheets"
)

// EventSource delivers record events until ctx is done. A handler error
// asks the source to redeliver the event.
type EventSource interface {
	ConsumeRecordEvents(ctx context.Context, handler func(context.Context, core.RecordEvent) error) error
}

// LedgerWorker appends each record event to the ledger exactly once per
// process, skipping events whose id is already in the ledger.
type LedgerWorker struct {
	ledger sheets.Ledger
	logger *log.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewLedgerWorker(ledger sheets.Ledger, logger *log.Logger) *LedgerWorker {
	return &LedgerWorker{
		ledger: ledger,
		logger: logger.WithComponent(log.ComponentWorker),
		seen:   map[string]struct{}{},
	}
}

// Prime loads the event ids already present in the ledger.
func (w *LedgerWorker) Prime(ctx context.Context) error {
	ids, err := w.ledger.EventIDs(ctx)
	if err != nil {
		return fmt.Errorf("load ledger event ids: %w", err)
	}
	w.mu.Lock()
	for id := range ids {
		w.seen[id] = struct{}{}
	}
	n := len(w.seen)
	w.mu.Unlock()
	w.logger.InfoContext(ctx, "Ledger primed", "known_events", n)
	return nil
}

// HandleEvent appends e unless it was already written.
func (w *LedgerWorker) HandleEvent(ctx context.Context, e core.RecordEvent) error {
	w.mu.Lock()
	_, dup := w.seen[e.ID]
	w.mu.Unlock()
	if dup {
		w.logger.DebugContext(ctx, "Skipping event already in ledger", "event_id", e.ID)
		return nil
	}

	ref, err := w.ledger.AppendEvent(ctx, e)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to append ledger row",
			log.FieldOperation, log.OpAppend,
			log.FieldEventType, string(e.Type),
			log.FieldRecordID, e.Record.ID,
			log.FieldError, err)
		return fmt.Errorf("append event %s: %w", e.ID, err)
	}

	w.mu.Lock()
	w.seen[e.ID] = struct{}{}
	w.mu.Unlock()
	w.logger.InfoContext(ctx, "Ledger row appended",
		log.FieldEventType, string(e.Type),
		log.FieldRecordID, e.Record.ID,
		log.FieldLedgerRef, ref)
	return nil
}

// Run primes the worker and consumes events until ctx is done. A failed
// prime is logged and consumption starts anyway.
func (w *LedgerWorker) Run(ctx context.Context, src EventSource) error {
	if err := w.Prime(ctx); err != nil {
		w.logger.WarnContext(ctx, "Starting without ledger history", log.FieldError, err)
	}
	return src.ConsumeRecordEvents(ctx, w.HandleEvent)
}
