package backend

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/adapters"
	"fintrack/internal/amqp"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/stats"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		repo *storage.Repository
		err  error
	)
	switch config.Type {
	case SQLiteBackend:
		repo, err = storage.NewSQLiteRepository(config.SQLiteDBPath)
	case PostgresBackend:
		repo, err = storage.NewPostgresRepository(config.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s (want one of %v)", config.Type, GetBackendTypeStrings())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s repository: %w", config.Type, err)
	}

	// AMQP is optional; without it incomes are stored but not announced
	var publisher services.Publisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", applog.FieldError, err)
		} else {
			publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	incomeService := services.NewIncomeService(repo, publisher)
	statsService := stats.NewService(repo)
	adapter := adapters.NewIncomeAdapter(repo, incomeService, statsService, config.CacheTTL)
	if config.CacheManager != nil {
		config.CacheManager.Register(adapter.Caches()...)
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		"type", config.Type,
		"dialect", repo.Dialect().Name(),
		"amqp_enabled", publisher != nil,
		"cache_ttl", config.CacheTTL)

	return &BackendResult{
		Backend: adapter,
		Cleanup: func() error {
			return errors.Join(incomeService.Close(), repo.Close())
		},
	}, nil
}
