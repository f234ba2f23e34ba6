package memory

import (
	"context"
	"testing"
	"time"

	"servicos/internal/core"
)

func TestLedgerAppendAndIDs(t *testing.T) {
	l := New(time.UTC)
	ctx := context.Background()

	ref, err := l.AppendEvent(ctx, core.RecordEvent{ID: "e1", Type: core.EventRecordCreated})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	if _, err := l.AppendEvent(ctx, core.RecordEvent{}); err == nil {
		t.Fatal("expected error for event without id")
	}

	ids, _ := l.EventIDs(ctx)
	if _, ok := ids["e1"]; !ok || len(ids) != 1 {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if rows := l.Rows(); len(rows) != 1 || rows[0][1] != "e1" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}
