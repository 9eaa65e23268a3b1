package services

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/transfer"
)

// EventPublisher is the part of the AMQP client the service needs.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// LedgerService orchestrates writes across the ledger, the budget registry
// and the event publisher. Files are written first; events are best-effort.
type LedgerService struct {
	ledger    *ledger.Store
	budgets   *budget.Registry
	publisher EventPublisher
}

// NewLedgerService wires the stores. publisher may be nil.
func NewLedgerService(store *ledger.Store, budgets *budget.Registry, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		ledger:    store,
		budgets:   budgets,
		publisher: publisher,
	}
}

func (s *LedgerService) Ledger() *ledger.Store { return s.ledger }

func (s *LedgerService) Budgets() *budget.Registry { return s.budgets }

// State is everything analytics needs, loaded in one call.
type State struct {
	Ledger  ledger.ReadResult
	Budgets budget.LoadResult
}

func (st State) Transactions() []core.Transaction { return st.Ledger.Transactions() }

func (st State) BudgetList() []core.Budget { return st.Budgets.Budgets }

// Load reads both files.
func (s *LedgerService) Load(ctx context.Context) (State, error) {
	l, err := s.ledger.ReadAll(ctx)
	if err != nil {
		return State{}, err
	}
	b, err := s.budgets.Load(ctx)
	if err != nil {
		return State{}, err
	}
	return State{Ledger: l, Budgets: b}, nil
}

// Record appends tx and announces it.
func (s *LedgerService) Record(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	stored, err := s.ledger.Append(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("record transaction: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventTransactionRecorded, stored.ID, stored.Category))
	return stored, nil
}

// Edit patches the transaction with the given id. It reports false when no
// such transaction exists.
func (s *LedgerService) Edit(ctx context.Context, id string, p ledger.Patch) (bool, error) {
	ok, err := s.ledger.EditByID(ctx, id, p)
	if err != nil {
		return false, fmt.Errorf("edit transaction %s: %w", id, err)
	}
	if ok && !p.IsEmpty() {
		s.publish(ctx, amqp.NewLedgerEvent(amqp.EventTransactionEdited, id, ""))
	}
	return ok, nil
}

// Delete removes the transaction with the given id.
func (s *LedgerService) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.ledger.DeleteByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if ok {
		s.publish(ctx, amqp.NewLedgerEvent(amqp.EventTransactionDeleted, id, ""))
	}
	return ok, nil
}

// EditAt and DeleteAt address records by read position, for records that
// carry no id.
func (s *LedgerService) EditAt(ctx context.Context, position int, p ledger.Patch) (bool, error) {
	ok, err := s.ledger.EditAt(ctx, position, p)
	if err != nil {
		return false, fmt.Errorf("edit transaction at %d: %w", position, err)
	}
	if ok && !p.IsEmpty() {
		s.publish(ctx, amqp.NewLedgerEvent(amqp.EventTransactionEdited, "", ""))
	}
	return ok, nil
}

func (s *LedgerService) DeleteAt(ctx context.Context, position int) (bool, error) {
	ok, err := s.ledger.DeleteAt(ctx, position)
	if err != nil {
		return false, fmt.Errorf("delete transaction at %d: %w", position, err)
	}
	if ok {
		s.publish(ctx, amqp.NewLedgerEvent(amqp.EventTransactionDeleted, "", ""))
	}
	return ok, nil
}

// SetBudget upserts a budget limit.
func (s *LedgerService) SetBudget(ctx context.Context, b core.Budget) error {
	if err := s.budgets.Set(ctx, b); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventBudgetSet, "", b.Category))
	return nil
}

// DeleteBudget removes a budget. It reports false when none was set.
func (s *LedgerService) DeleteBudget(ctx context.Context, category string) (bool, error) {
	ok, err := s.budgets.Delete(ctx, category)
	if err != nil {
		return false, fmt.Errorf("delete budget: %w", err)
	}
	if ok {
		s.publish(ctx, amqp.NewLedgerEvent(amqp.EventBudgetDeleted, "", category))
	}
	return ok, nil
}

// StageImport reads a CSV file and checks it against the current ledger.
// Nothing is written.
func (s *LedgerService) StageImport(ctx context.Context, path string) (transfer.ImportReport, error) {
	res, err := s.ledger.ReadAll(ctx)
	if err != nil {
		return transfer.ImportReport{}, err
	}
	return transfer.ImportCSVFile(path, res.Transactions())
}

// CommitImport appends every accepted row of a staged import.
func (s *LedgerService) CommitImport(ctx context.Context, report transfer.ImportReport) ([]core.Transaction, error) {
	stored, err := transfer.Commit(ctx, s.ledger, report)
	if err != nil {
		return nil, err
	}
	if len(stored) > 0 {
		ev := amqp.NewLedgerEvent(amqp.EventImportCommitted, "", "")
		ev.Count = len(stored)
		s.publish(ctx, ev)
	}
	return stored, nil
}

func (s *LedgerService) publish(ctx context.Context, ev *amqp.LedgerEvent) {
	logger := log.FromContext(ctx, log.ComponentService)
	if s.publisher == nil {
		logger.DebugContext(ctx, "No event publisher configured, skipping event", log.FieldEventType, ev.Type)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		// The write already succeeded; the event is not retried.
		fields := log.NewFields().
			WithOperation(log.OpPublish).
			WithError(err).
			With(log.FieldEventType, string(ev.Type))
		if ev.TransactionID != "" {
			fields.With(log.FieldTransactionID, ev.TransactionID)
		}
		logger.ErrorContext(ctx, "Failed to publish ledger event", fields.ToSlice()...)
	}
}
