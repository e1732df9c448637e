package sheets

import (
	"context"

	"enriquecer/internal/core"
)

// SnapshotWriter mirrors the full ledger to an external spreadsheet.
type SnapshotWriter interface {
	// WriteSnapshot replaces the mirrored content with txs.
	WriteSnapshot(ctx context.Context, txs []core.Transaction) error
}
