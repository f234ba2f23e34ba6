package services

import "servicos/internal/core"

type MutationKind int

const (
	MutationInsert MutationKind = iota
	MutationUpdate
	MutationDelete
)

// Mutation is a successful store change to mirror into an in-memory collection.
type Mutation struct {
	Kind   MutationKind
	Record core.ServiceRecord
}

// Apply returns a new collection with m applied. Inserts are appended, not
// re-sorted. Updates and deletes of an unknown id leave the collection as is.
func Apply(records []core.ServiceRecord, m Mutation) []core.ServiceRecord {
	out := make([]core.ServiceRecord, 0, len(records)+1)
	switch m.Kind {
	case MutationInsert:
		out = append(out, records...)
		return append(out, m.Record)
	case MutationUpdate:
		for _, r := range records {
			if r.ID == m.Record.ID {
				r.IncludeInTotal = m.Record.IncludeInTotal
				r.AdminOverride = m.Record.AdminOverride
			}
			out = append(out, r)
		}
	case MutationDelete:
		for _, r := range records {
			if r.ID != m.Record.ID {
				out = append(out, r)
			}
		}
	default:
		out = append(out, records...)
	}
	return out
}
