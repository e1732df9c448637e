package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"enriquecer/internal/amqp"
	"enriquecer/internal/core"
	"enriquecer/internal/sheets"
)

// SnapshotSource provides the current ledger. *storage.TransactionStore
// satisfies it.
type SnapshotSource interface {
	List(ctx context.Context) ([]core.Transaction, error)
}

// MirrorWorker keeps an external spreadsheet in line with the ledger. Events
// only mark the mirror stale; bursts are collapsed into one rewrite after the
// debounce delay. A periodic resync covers lost events.
type MirrorWorker struct {
	source   SnapshotSource
	writer   sheets.SnapshotWriter
	interval time.Duration
	debounce time.Duration

	pending chan struct{}

	mu       sync.Mutex
	lastSync time.Time
	lastErr  error
}

func NewMirrorWorker(source SnapshotSource, writer sheets.SnapshotWriter, interval, debounce time.Duration) *MirrorWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if debounce < 0 {
		debounce = 0
	}
	return &MirrorWorker{
		source:   source,
		writer:   writer,
		interval: interval,
		debounce: debounce,
		pending:  make(chan struct{}, 1),
	}
}

// HandleEvent schedules a resync for ev. It never blocks.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	slog.DebugContext(ctx, "Ledger event received",
		"type", ev.Type,
		"id", ev.ID,
		"month", ev.Month,
		"count", ev.Count)
	select {
	case w.pending <- struct{}{}:
	default:
	}
	return nil
}

// Sync reloads the ledger and rewrites the mirror.
func (w *MirrorWorker) Sync(ctx context.Context) error {
	start := time.Now()
	txs, err := w.source.List(ctx)
	if err == nil {
		err = w.writer.WriteSnapshot(ctx, txs)
	}

	w.mu.Lock()
	w.lastErr = err
	if err == nil {
		w.lastSync = time.Now()
	}
	w.mu.Unlock()

	if err != nil {
		return fmt.Errorf("mirror snapshot: %w", err)
	}
	slog.InfoContext(ctx, "Mirror synchronized",
		"records", len(txs),
		"duration", time.Since(start))
	return nil
}

// Status reports the time of the last successful sync and the last error.
func (w *MirrorWorker) Status() (time.Time, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSync, w.lastErr
}

// Run syncs once, then on every debounced event and every interval, until
// ctx is cancelled.
func (w *MirrorWorker) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Mirror worker started",
		"interval", w.interval,
		"debounce", w.debounce)

	w.syncAndLog(ctx, "startup")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Mirror worker stopped")
			return nil
		case <-ticker.C:
			w.syncAndLog(ctx, "periodic")
		case <-w.pending:
			if w.debounce > 0 {
				timer := time.NewTimer(w.debounce)
				select {
				case <-ctx.Done():
					timer.Stop()
					return nil
				case <-timer.C:
				}
				// Events that arrived during the delay are covered by this sync.
				select {
				case <-w.pending:
				default:
				}
			}
			w.syncAndLog(ctx, "event")
		}
	}
}

func (w *MirrorWorker) syncAndLog(ctx context.Context, reason string) {
	if err := w.Sync(ctx); err != nil && ctx.Err() == nil {
		slog.ErrorContext(ctx, "Mirror sync failed", "reason", reason, "error", err)
	}
}
