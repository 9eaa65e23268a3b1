package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backup"
	"fintrack/internal/log"
)

// DefaultMinInterval is the shortest gap between two event-driven backups.
const DefaultMinInterval = 5 * time.Minute

// BackupCreator is the part of backup.Manager the worker drives.
type BackupCreator interface {
	Create(ctx context.Context) (backup.Result, error)
}

// BackupWorker takes backups of the ledger files, either when change events
// arrive or on a fixed schedule.
type BackupWorker struct {
	backups     BackupCreator
	minInterval time.Duration
	now         func() time.Time

	mu   sync.Mutex
	last time.Time
}

type Option func(*BackupWorker)

// WithMinInterval sets how often events may trigger a backup.
func WithMinInterval(d time.Duration) Option {
	return func(w *BackupWorker) { w.minInterval = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *BackupWorker) { w.now = now }
}

func NewBackupWorker(backups BackupCreator, opts ...Option) *BackupWorker {
	w := &BackupWorker{
		backups:     backups,
		minInterval: DefaultMinInterval,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HandleEvent creates a backup for ev unless one was taken within the
// minimum interval. Throttled events are acknowledged without work.
func (w *BackupWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.last.IsZero() && w.now().Sub(w.last) < w.minInterval {
		log.FromContext(ctx, log.ComponentWorker).DebugContext(ctx, "Backup throttled",
			log.FieldEventType, ev.Type,
			"last_backup", w.last.Format(time.RFC3339))
		return nil
	}

	res, err := w.createLocked(ctx)
	if err != nil {
		return err
	}

	log.FromContext(ctx, log.ComponentWorker).InfoContext(ctx, "Event-driven backup created",
		log.FieldEventType, ev.Type,
		log.FieldTransactionID, ev.TransactionID,
		log.FieldArchive, res.Path)
	return nil
}

// RunPeriodic creates a backup immediately and then every interval until ctx
// is cancelled. Failed runs are logged and retried on the next tick.
func (w *BackupWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid backup interval %v", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			log.FromContext(ctx, log.ComponentWorker).InfoContext(ctx, "Periodic backups stopped")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// LastBackup returns when the worker last created a backup.
func (w *BackupWorker) LastBackup() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func (w *BackupWorker) tick(ctx context.Context) {
	w.mu.Lock()
	res, err := w.createLocked(ctx)
	w.mu.Unlock()
	logger := log.FromContext(ctx, log.ComponentWorker)
	if err != nil {
		logger.ErrorContext(ctx, "Periodic backup failed",
			log.NewFields().WithOperation(log.OpBackup).WithError(err).ToSlice()...)
		return
	}
	logger.InfoContext(ctx, "Periodic backup created",
		log.FieldArchive, res.Path,
		"included", len(res.Included),
		"removed", len(res.Removed))
}

func (w *BackupWorker) createLocked(ctx context.Context) (backup.Result, error) {
	res, err := w.backups.Create(ctx)
	if err != nil {
		return backup.Result{}, fmt.Errorf("create backup: %w", err)
	}
	if len(res.Missing) > 0 {
		log.FromContext(ctx, log.ComponentWorker).WarnContext(ctx, "Backup sources missing", "missing", res.Missing)
	}
	w.last = w.now()
	return res, nil
}
