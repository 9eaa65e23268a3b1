package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
	err    error
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, ev *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []amqp.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func newService(t *testing.T, pub EventPublisher) *LedgerService {
	t.Helper()
	dir := t.TempDir()
	store := ledger.NewStore(filepath.Join(dir, "transactions.txt"),
		ledger.WithIDGenerator(func() string { return "tx-1" }))
	reg := budget.NewRegistry(filepath.Join(dir, "budgets.txt"))
	return NewLedgerService(store, reg, pub)
}

func groceries() core.Transaction {
	return core.Transaction{
		Date:        core.NewDate(2024, 3, 5),
		Kind:        core.Expense,
		Category:    "Food",
		Description: "groceries",
		Amount:      core.Money{Cents: 4550},
	}
}

func TestLedgerService_RecordPublishes(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newService(t, pub)
	ctx := context.Background()

	stored, err := svc.Record(ctx, groceries())
	require.NoError(t, err)
	assert.Equal(t, "tx-1", stored.ID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, amqp.EventTransactionRecorded, pub.events[0].Type)
	assert.Equal(t, "tx-1", pub.events[0].TransactionID)
	assert.Equal(t, "Food", pub.events[0].Category)
}

func TestLedgerService_InvalidRecordIsNotPublished(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newService(t, pub)

	tx := groceries()
	tx.Amount = core.Money{}
	_, err := svc.Record(context.Background(), tx)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Empty(t, pub.events)
}

func TestLedgerService_PublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newService(t, pub)
	var logs bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.New(log.Config{Output: &logs, Component: log.ComponentApp}))

	_, err := svc.Record(ctx, groceries())
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "component=service")
	assert.Contains(t, logs.String(), "operation=publish")
	assert.Contains(t, logs.String(), "broker down")

	st, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, st.Transactions(), 1)
}

func TestLedgerService_NilPublisher(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	_, err := svc.Record(ctx, groceries())
	require.NoError(t, err)
	require.NoError(t, svc.SetBudget(ctx, core.Budget{Category: "Food", Limit: core.Money{Cents: 10000}}))
}

func TestLedgerService_EditAndDelete(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newService(t, pub)
	ctx := context.Background()

	_, err := svc.Record(ctx, groceries())
	require.NoError(t, err)

	desc := "market"
	ok, err := svc.Edit(ctx, "tx-1", ledger.Patch{Description: &desc})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Edit(ctx, "nope", ledger.Patch{Description: &desc})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Delete(ctx, "tx-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Delete(ctx, "tx-1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []amqp.EventType{
		amqp.EventTransactionRecorded,
		amqp.EventTransactionEdited,
		amqp.EventTransactionDeleted,
	}, pub.types())
}

func TestLedgerService_EmptyPatchIsNotPublished(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newService(t, pub)
	ctx := context.Background()

	_, err := svc.Record(ctx, groceries())
	require.NoError(t, err)

	ok, err := svc.EditAt(ctx, 0, ledger.Patch{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []amqp.EventType{amqp.EventTransactionRecorded}, pub.types())
}

func TestLedgerService_Budgets(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newService(t, pub)
	ctx := context.Background()

	require.NoError(t, svc.SetBudget(ctx, core.Budget{Category: "Food", Limit: core.Money{Cents: 20000}}))

	ok, err := svc.DeleteBudget(ctx, "Rent")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.DeleteBudget(ctx, "Food")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []amqp.EventType{amqp.EventBudgetSet, amqp.EventBudgetDeleted}, pub.types())
}

func TestLedgerService_ImportStagesThenCommits(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newService(t, pub)
	ctx := context.Background()

	_, err := svc.Record(ctx, groceries())
	require.NoError(t, err)

	csvPath := filepath.Join(t.TempDir(), "in.csv")
	content := "Date,Type,Category/Source,Description,Amount\n" +
		"2024-03-05,Expense,Food,groceries,45.50\n" +
		"2024-03-06,Income,Salary,march,1000.00\n" +
		"bad,Expense,Food,x,1\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o644))

	report, err := svc.StageImport(ctx, csvPath)
	require.NoError(t, err)
	assert.Len(t, report.Accepted, 1)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 1, report.Invalid)

	st, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, st.Transactions(), 1, "staging must not write")

	stored, err := svc.CommitImport(ctx, report)
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	st, err = svc.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, st.Transactions(), 2)

	require.Len(t, pub.events, 2)
	assert.Equal(t, amqp.EventImportCommitted, pub.events[1].Type)
	assert.Equal(t, 1, pub.events[1].Count)
}
