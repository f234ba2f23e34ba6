package sheets

import (
	"context"

	"servicos/internal/core"
)

// Ports for the ledger adapters fed by the worker.
type (
	// LedgerWriter appends one row per record event.
	LedgerWriter interface {
		AppendEvent(ctx context.Context, e core.RecordEvent) (rowRef string, err error)
	}

	// LedgerReader lists the event ids already written, so redelivered
	// events are not appended twice.
	LedgerReader interface {
		EventIDs(ctx context.Context) (map[string]struct{}, error)
	}

	Ledger interface {
		LedgerWriter
		LedgerReader
	}
)
