package backend

import (
	"context"
	"io"

	"enriquecer/internal/amqp"
	"enriquecer/internal/core"
	"enriquecer/internal/services"
)

// Backend is the ledger as seen by the HTTP layer.
type Backend interface {
	Snapshot(ctx context.Context) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, d core.Draft) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ImportTransactions(ctx context.Context, r io.Reader) (int, error)

	Categories(ctx context.Context) ([]core.Category, error)
	CategoriesFor(ctx context.Context, kind core.Kind) ([]core.Category, error)
	AddCategory(ctx context.Context, name string, kind core.Kind) (core.Category, error)
	RenameCategory(ctx context.Context, id, name string) (core.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	OnChange(fn services.ChangeListener)
}

var _ Backend = (*services.LedgerService)(nil)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
	// EventsEnabled reports whether changes are published to AMQP.
	EventsEnabled bool
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory backend specific
	DataDirectory string

	// Optional change events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// eventPublisher narrows *amqp.Client for the service.
type eventPublisher interface {
	PublishEvent(ctx context.Context, ev amqp.LedgerEvent) error
	Close() error
}
