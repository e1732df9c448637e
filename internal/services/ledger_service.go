package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"enriquecer/internal/amqp"
	"enriquecer/internal/backup"
	"enriquecer/internal/core"
	"enriquecer/internal/log"
	"enriquecer/internal/storage"
)

// ErrImportInProgress is returned when an import is attempted while another
// one has not finished.
var ErrImportInProgress = errors.New("import already in progress")

// EventPublisher announces ledger changes. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev amqp.LedgerEvent) error
}

// ChangeListener is called after every successful ledger mutation.
type ChangeListener func(ctx context.Context, ev amqp.LedgerEvent)

// LedgerService orchestrates ledger operations across the local store and
// the optional event bus.
type LedgerService struct {
	kv           storage.KV
	transactions *storage.TransactionStore
	categories   *storage.CategoryStore
	publisher    EventPublisher

	importing atomic.Bool

	mu        sync.RWMutex
	listeners []ChangeListener
}

// NewLedgerService wires the stores over kv. publisher may be nil, in which
// case no events leave the process.
func NewLedgerService(kv storage.KV, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		kv:           kv,
		transactions: storage.NewTransactionStore(kv),
		categories:   storage.NewCategoryStore(kv),
		publisher:    publisher,
	}
}

// OnChange registers fn to run after each successful mutation.
func (s *LedgerService) OnChange(fn ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns the full history, newest first.
func (s *LedgerService) Snapshot(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.transactions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return txs, nil
}

// CreateTransaction validates d, stores the resulting record and announces it.
func (s *LedgerService) CreateTransaction(ctx context.Context, d core.Draft) (core.Transaction, error) {
	tx, err := core.ValidateDraft(d)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.transactions.Add(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	log.NewStructuredLogger(log.FromContext(ctx)).
		LogTransactionCreated(ctx, tx.ID, tx.Kind.String(), tx.Date, tx.Amount, tx.CategoryName())

	s.changed(ctx, *amqp.NewLedgerEvent(amqp.EventCreated, tx.ID, tx.Month(), 1))
	return tx, nil
}

// DeleteTransaction removes the record with id. Unknown ids are not an error.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	tx, found, err := s.transactions.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	if !found {
		slog.DebugContext(ctx, "Delete of unknown transaction ignored", "id", id)
		return nil
	}

	removed, err := s.transactions.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if !removed {
		return nil
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	s.changed(ctx, *amqp.NewLedgerEvent(amqp.EventDeleted, id, tx.Month(), 1))
	return nil
}

// ImportTransactions replaces the whole history with the records in r. The
// file is fully parsed before anything is written, so a rejected file leaves
// the ledger untouched. Only one import runs at a time.
func (s *LedgerService) ImportTransactions(ctx context.Context, r io.Reader) (int, error) {
	if !s.importing.CompareAndSwap(false, true) {
		return 0, ErrImportInProgress
	}
	defer s.importing.Store(false)

	sl := log.NewStructuredLogger(log.FromContext(ctx))
	txs, err := backup.ReadJSON(r)
	if err != nil {
		sl.LogImport(ctx, 0, err)
		return 0, err
	}
	if err := s.transactions.ReplaceAll(ctx, txs); err != nil {
		return 0, fmt.Errorf("replace transactions: %w", err)
	}

	sl.LogImport(ctx, len(txs), nil)
	s.changed(ctx, *amqp.NewLedgerEvent(amqp.EventImported, "", "", len(txs)))
	return len(txs), nil
}

// Export writes the full history as a JSON backup.
func (s *LedgerService) Export(ctx context.Context, w io.Writer) error {
	txs, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	return backup.WriteJSON(w, txs)
}

func (s *LedgerService) Categories(ctx context.Context) ([]core.Category, error) {
	return s.categories.List(ctx)
}

func (s *LedgerService) CategoriesFor(ctx context.Context, kind core.Kind) ([]core.Category, error) {
	return s.categories.ListKind(ctx, kind)
}

func (s *LedgerService) AddCategory(ctx context.Context, name string, kind core.Kind) (core.Category, error) {
	c, err := s.categories.Add(ctx, name, kind)
	if err != nil {
		return core.Category{}, err
	}
	slog.InfoContext(ctx, "Category added", "id", c.ID, "name", c.Name, "kind", c.Kind)
	return c, nil
}

func (s *LedgerService) RenameCategory(ctx context.Context, id, name string) (core.Category, error) {
	return s.categories.Rename(ctx, id, name)
}

func (s *LedgerService) DeleteCategory(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, id)
}

// changed notifies local listeners and publishes ev. Publish failures are
// logged only: the change is already stored locally.
func (s *LedgerService) changed(ctx context.Context, ev amqp.LedgerEvent) {
	s.mu.RLock()
	listeners := append([]ChangeListener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(ctx, ev)
	}

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", ev.Type,
			"id", ev.ID,
			"error", err)
	}
}

// Close closes the store and the publisher when it owns a connection.
func (s *LedgerService) Close() error {
	var errs []error

	if s.kv != nil {
		if err := s.kv.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}
