package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CatalogEntry maps a service type to its unit price.
type CatalogEntry struct {
	Type  ServiceType
	Price Money
}

// Catalog is the fixed list of service types. It is consulted only at
// creation time; stored records keep the price they were created with.
type Catalog struct {
	entries []CatalogEntry
}

// NewCatalog builds a catalog preserving entry order. Later duplicates of a
// type are ignored.
func NewCatalog(entries ...CatalogEntry) Catalog {
	seen := make(map[ServiceType]struct{}, len(entries))
	out := make([]CatalogEntry, 0, len(entries))
	for _, e := range entries {
		e.Type = ServiceType(strings.TrimSpace(string(e.Type)))
		if e.Type == "" {
			continue
		}
		if _, ok := seen[e.Type]; ok {
			continue
		}
		seen[e.Type] = struct{}{}
		out = append(out, e)
	}
	return Catalog{entries: out}
}

// DefaultCatalog returns the lab's service list.
func DefaultCatalog() Catalog {
	price := func(s string) Money { return MoneyFromDecimal(decimal.RequireFromString(s)) }
	return NewCatalog(
		CatalogEntry{Type: "MONTAGEM", Price: price("5.00")},
		CatalogEntry{Type: "ACRILIZAÇÃO", Price: price("5.00")},
		CatalogEntry{Type: "BARRA", Price: price("6.00")},
		CatalogEntry{Type: "PLANO DE CERA", Price: price("2.00")},
		CatalogEntry{Type: "PREPARO", Price: price("2.00")},
		CatalogEntry{Type: "2ª MONTAGEM", Price: price("2.50")},
	)
}

// Price resolves the unit price of a service type.
func (c Catalog) Price(t ServiceType) (Money, error) {
	for _, e := range c.entries {
		if e.Type == t {
			return e.Price, nil
		}
	}
	return Money{}, ErrUnknownServiceType
}

// Entries returns a copy of the catalog entries in display order.
func (c Catalog) Entries() []CatalogEntry {
	return append([]CatalogEntry(nil), c.entries...)
}

// Default returns the first entry, used as the initial form selection.
func (c Catalog) Default() (CatalogEntry, bool) {
	if len(c.entries) == 0 {
		return CatalogEntry{}, false
	}
	return c.entries[0], true
}
