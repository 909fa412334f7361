package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// IncomeStore persists incomes.
type IncomeStore interface {
	InsertIncome(ctx context.Context, in core.Income) error
	UpdateIncome(ctx context.Context, in core.Income) error
	GetIncome(ctx context.Context, id string) (core.Income, error)
}

// Publisher announces income changes. *amqp.Client satisfies it.
type Publisher interface {
	PublishIncomeEvent(ctx context.Context, evt *amqp.IncomeEvent) error
	Close() error
}

// IncomeService orchestrates income writes across the store and the
// event publisher. The publisher is optional.
type IncomeService struct {
	store     IncomeStore
	publisher Publisher
	newID     func() (string, error)
	now       func() time.Time
}

func NewIncomeService(store IncomeStore, publisher Publisher) *IncomeService {
	return &IncomeService{
		store:     store,
		publisher: publisher,
		newID:     newUUID,
		now:       time.Now,
	}
}

func newUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// AddIncome validates and saves a new income, then publishes income.added.
func (s *IncomeService) AddIncome(ctx context.Context, n core.NewIncome) (core.Income, error) {
	if err := n.Validate(); err != nil {
		return core.Income{}, err
	}

	id, err := s.newID()
	if err != nil {
		return core.Income{}, fmt.Errorf("generate id: %w", err)
	}

	in := core.Income{
		ID:          id,
		Date:        n.Date,
		Description: n.Description,
		Categories:  n.Categories,
		Amount:      n.Amount,
		Currency:    n.Currency,
		Recurring:   n.Recurring,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
	}

	if err := s.store.InsertIncome(ctx, in); err != nil {
		return core.Income{}, fmt.Errorf("save income: %w", err)
	}

	s.publish(ctx, amqp.EventIncomeAdded, in.ID)
	return in, nil
}

// EditIncome applies changes to an existing income, then publishes
// income.updated. Unknown ids yield core.ErrNotFound.
func (s *IncomeService) EditIncome(ctx context.Context, id string, changes core.IncomeChanges) (core.Income, error) {
	if err := changes.Validate(); err != nil {
		return core.Income{}, err
	}

	in, err := s.store.GetIncome(ctx, id)
	if err != nil {
		return core.Income{}, fmt.Errorf("load income: %w", err)
	}

	changes.Apply(&in)
	updated := s.now().UTC().Truncate(time.Millisecond)
	in.UpdatedAt = &updated

	if err := s.store.UpdateIncome(ctx, in); err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}

	s.publish(ctx, amqp.EventIncomeUpdated, in.ID)
	return in, nil
}

// publish never fails the request: the income is already stored.
func (s *IncomeService) publish(ctx context.Context, eventType, id string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not configured, skipping", "type", eventType, applog.FieldIncomeID, id)
		return
	}
	if err := s.publisher.PublishIncomeEvent(ctx, amqp.NewIncomeEvent(eventType, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish income event",
			"type", eventType,
			applog.FieldIncomeID, id,
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeNetwork)
	}
}

// Close closes the publisher. The store is owned by the backend.
func (s *IncomeService) Close() error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Close(); err != nil {
		return fmt.Errorf("close income service: amqp: %w", err)
	}
	return nil
}
