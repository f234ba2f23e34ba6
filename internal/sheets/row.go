package sheets

import (
	"strings"
	"time"

	"servicos/internal/core"
)

// Header is the first row of a ledger sheet.
var Header = []any{"Data", "Evento ID", "Evento", "Serviço ID", "Número", "Tipo", "Preço", "Usuário", "Incluído", "Autorizado por admin", "Ator"}

// EventIDColumn is the zero-based column holding the event id.
const EventIDColumn = 1

// Row renders an event as ledger cells. Timestamps are written in loc.
func Row(e core.RecordEvent, loc *time.Location) []any {
	if loc == nil {
		loc = time.UTC
	}
	r := e.Record
	return []any{
		e.OccurredAt.In(loc).Format("2006-01-02 15:04:05"),
		e.ID,
		string(e.Type),
		r.ID,
		r.Title,
		string(r.ServiceType),
		r.Price.Decimal().InexactFloat64(),
		r.Username,
		r.IncludeInTotal,
		r.AdminOverride,
		e.ActorID,
	}
}

// EventIDsFromColumn collects non-empty ids from a single-column read,
// skipping the header cell.
func EventIDsFromColumn(values [][]any) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		id, ok := row[0].(string)
		if !ok {
			continue
		}
		id = strings.TrimSpace(id)
		if id == "" || id == Header[EventIDColumn] {
			continue
		}
		out[id] = struct{}{}
	}
	return out
}
