package backend

import (
	"context"
	"time"

	"servicos/internal/services"
	"servicos/internal/sheets"
	"servicos/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the record store, the optional event publisher and
// the cleanup releasing both.
type BackendResult struct {
	Store   store.Store
	Events  services.EventPublisher // nil when AMQP is not configured
	Cleanup CleanupFunc
}

// Close runs Cleanup when set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates the record store and event publisher
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateLedger creates the ledger written by the worker
	CreateLedger(ctx context.Context, config Config) (sheets.Ledger, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Postgres specific
	DatabaseURL string

	// Record events, optional for every store type
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Ledger
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	MemoryLedger             bool
	Location                 *time.Location
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
