package storage

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"enriquecer/internal/core"
)

// TransactionStore is the ordered, persisted collection of transactions.
// Every mutation rewrites the whole collection; mutations are serialized so a
// load-modify-save cycle is never interleaved with another one.
type TransactionStore struct {
	mu  sync.Mutex
	rec *Record[[]core.Transaction]
}

func NewTransactionStore(kv KV) *TransactionStore {
	return &TransactionStore{
		rec: NewRecord(kv, KeyTransactions, func() []core.Transaction {
			return []core.Transaction{}
		}),
	}
}

// List returns a snapshot of every transaction, newest date first.
func (s *TransactionStore) List(ctx context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Load(ctx)
}

// Get looks up a transaction by id.
func (s *TransactionStore) Get(ctx context.Context, id string) (core.Transaction, bool, error) {
	txs, err := s.List(ctx)
	if err != nil {
		return core.Transaction{}, false, err
	}
	for _, t := range txs {
		if t.ID == id {
			return t, true, nil
		}
	}
	return core.Transaction{}, false, nil
}

// Add prepends tx and re-sorts by date descending. The sort is stable, so a
// new record lands before older records that share its date.
func (s *TransactionStore) Add(ctx context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.rec.Load(ctx)
	if err != nil {
		return err
	}
	next := make([]core.Transaction, 0, len(cur)+1)
	next = append(next, tx)
	next = append(next, cur...)
	SortByDateDesc(next)

	if err := s.rec.Save(ctx, next); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Transaction stored", "id", tx.ID, "type", tx.Kind, "date", tx.Date, "count", len(next))
	return nil
}

// Remove deletes the transaction with the given id. Unknown ids are a no-op;
// the returned bool reports whether anything was removed.
func (s *TransactionStore) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.rec.Load(ctx)
	if err != nil {
		return false, err
	}
	next := make([]core.Transaction, 0, len(cur))
	for _, t := range cur {
		if t.ID != id {
			next = append(next, t)
		}
	}
	if len(next) == len(cur) {
		return false, nil
	}
	if err := s.rec.Save(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// ReplaceAll overwrites the collection. Individual records are not validated.
func (s *TransactionStore) ReplaceAll(ctx context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if txs == nil {
		txs = []core.Transaction{}
	}
	return s.rec.Save(ctx, txs)
}

// SortByDateDesc orders txs by date, newest first, keeping the relative order
// of records with equal dates.
func SortByDateDesc(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date > txs[j].Date
	})
}
