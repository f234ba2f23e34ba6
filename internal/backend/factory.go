package backend

import (
	"context"
	"fmt"

	"servicos/internal/amqp"
	"servicos/internal/log"
	"servicos/internal/sheets"
	gsheet "servicos/internal/sheets/google"
	memledger "servicos/internal/sheets/memory"
	"servicos/internal/store"
	"servicos/internal/store/memory"
	"servicos/internal/store/postgres"
	"servicos/internal/store/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		st      store.Store
		closers []func() error
	)
	switch config.Type {
	case MemoryBackend:
		st = memory.New()
		f.logger.Info("Initialized memory backend")
	case SQLiteBackend:
		s, err := sqlite.New(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		st = s
		closers = append(closers, s.Close)
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case PostgresBackend:
		s, err := postgres.Open(ctx, config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		st = s
		closers = append(closers, s.Close)
		f.logger.Info("Initialized Postgres backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	result := &BackendResult{Store: st}

	// AMQP is optional: a broker that is down at startup must not keep the
	// dashboard from serving.
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without record events", log.FieldError, err)
		} else {
			result.Events = client
			closers = append(closers, client.Close)
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	result.Cleanup = func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
	return result, nil
}

// CreateLedger implements Factory.CreateLedger
func (f *DefaultFactory) CreateLedger(ctx context.Context, config Config) (sheets.Ledger, error) {
	if config.MemoryLedger {
		f.logger.Info("Initialized in-memory ledger")
		return memledger.New(config.Location), nil
	}
	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		SheetName:          config.GoogleSheetName,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
		Location:           config.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets ledger: %w", err)
	}
	f.logger.Info("Initialized Google Sheets ledger", "sheet", config.GoogleSheetName)
	return cli, nil
}
