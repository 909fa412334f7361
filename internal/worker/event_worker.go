// Package worker consumes income change notifications and writes them to
// the audit log.
package worker

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// IncomeLoader reads the current state of an income.
type IncomeLoader interface {
	GetIncome(ctx context.Context, id string) (core.Income, error)
}

// EventSource delivers income events and recovers from broker outages.
type EventSource interface {
	ConsumeIncomeEvents(ctx context.Context, handler func(context.Context, *amqp.IncomeEvent) error) error
	ReconnectWithBackoff(ctx context.Context) error
}

// EventWorker logs every added or edited income with its stored values.
type EventWorker struct {
	incomes    IncomeLoader
	source     EventSource
	logger     *applog.Logger
	structured *applog.StructuredLogger
}

func NewEventWorker(incomes IncomeLoader, source EventSource, logger *applog.Logger) *EventWorker {
	logger = logger.WithComponent(applog.ComponentWorker)
	return &EventWorker{
		incomes:    incomes,
		source:     source,
		logger:     logger,
		structured: applog.NewStructuredLogger(logger),
	}
}

// HandleIncomeEvent processes a single event. Events for records that no
// longer resolve are acknowledged and skipped; store failures are returned
// so the message is redelivered.
func (w *EventWorker) HandleIncomeEvent(ctx context.Context, evt *amqp.IncomeEvent) error {
	var op string
	switch evt.Type {
	case amqp.EventIncomeAdded:
		op = applog.OpCreate
	case amqp.EventIncomeUpdated:
		op = applog.OpUpdate
	default:
		w.logger.WarnContext(ctx, "Skipping unknown event type", "type", evt.Type, applog.FieldIncomeID, evt.ID)
		return nil
	}

	in, err := w.incomes.GetIncome(ctx, evt.ID)
	if errors.Is(err, core.ErrNotFound) {
		w.logger.WarnContext(ctx, "Income from event not found", "type", evt.Type, applog.FieldIncomeID, evt.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load income %s: %w", evt.ID, err)
	}

	w.structured.LogIncomeWritten(ctx, op, in.ID, in.Description, in.Amount.String(), in.Currency, in.Recurring)
	return nil
}

// Run consumes until ctx is cancelled, reconnecting whenever the broker
// drops the subscription.
func (w *EventWorker) Run(ctx context.Context) error {
	for {
		err := w.source.ConsumeIncomeEvents(ctx, w.HandleIncomeEvent)
		if ctx.Err() != nil {
			return nil
		}
		w.logger.WarnContext(ctx, "Event consumption interrupted, reconnecting", applog.FieldError, err)

		if err := w.source.ReconnectWithBackoff(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reconnect: %w", err)
		}
	}
}
