package sheets

import (
	"testing"
	"time"

	"servicos/internal/core"
)

func TestRow(t *testing.T) {
	e := core.RecordEvent{
		ID:         "evt-1",
		Type:       core.EventRecordCreated,
		ActorID:    "u1",
		OccurredAt: time.Date(2026, 10, 18, 15, 4, 5, 0, time.UTC),
		Record: core.ServiceRecord{
			ID: "r1", Title: "100", ServiceType: "BARRA", Price: core.Money{Cents: 600},
			Username: "ana", IncludeInTotal: true,
		},
	}
	row := Row(e, time.FixedZone("BRT", -3*3600))
	if len(row) != len(Header) {
		t.Fatalf("row has %d cells, header %d", len(row), len(Header))
	}
	if row[0] != "2026-10-18 12:04:05" {
		t.Fatalf("timestamp not in location: %v", row[0])
	}
	if row[EventIDColumn] != "evt-1" || row[2] != "record.created" || row[6] != 6.0 || row[8] != true {
		t.Fatalf("unexpected row: %v", row)
	}
}

func TestEventIDsFromColumn(t *testing.T) {
	ids := EventIDsFromColumn([][]any{{"Evento ID"}, {"a"}, {}, {" b "}, {42.0}, {""}})
	if len(ids) != 2 {
		t.Fatalf("unexpected ids: %v", ids)
	}
	for _, id := range []string{"a", "b"} {
		if _, ok := ids[id]; !ok {
			t.Fatalf("missing %s in %v", id, ids)
		}
	}
}
