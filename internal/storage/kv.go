package storage

import "context"

// Keys under which the ledger state is persisted.
const (
	KeyTransactions = "transactions"
	KeyCategories   = "categories"
)

// KV is the local key-value store the ledger is persisted to. Values are
// opaque bytes; Get reports whether the key exists.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
