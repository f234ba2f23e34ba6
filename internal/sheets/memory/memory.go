package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"servicos/internal/core"
	"servicos/internal/sheets"
)

// Ledger keeps ledger rows in process. Used when no spreadsheet is configured.
type Ledger struct {
	mu   sync.Mutex
	loc  *time.Location
	rows [][]any
	ids  map[string]struct{}
}

var _ sheets.Ledger = (*Ledger)(nil)

func New(loc *time.Location) *Ledger {
	return &Ledger{loc: loc, ids: map[string]struct{}{}}
}

// AppendEvent stores the row and returns a synthetic row reference.
func (l *Ledger) AppendEvent(_ context.Context, e core.RecordEvent) (string, error) {
	if e.ID == "" {
		return "", fmt.Errorf("event without id")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, sheets.Row(e, l.loc))
	l.ids[e.ID] = struct{}{}
	return fmt.Sprintf("mem:%d", len(l.rows)), nil
}

func (l *Ledger) EventIDs(_ context.Context) (map[string]struct{}, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]struct{}, len(l.ids))
	for id := range l.ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// Rows returns a copy of the appended rows.
func (l *Ledger) Rows() [][]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([][]any(nil), l.rows...)
}
