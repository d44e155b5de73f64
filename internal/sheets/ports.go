package sheets

import (
	"context"

	"ledger/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionExporter replaces the contents of an external sheet with
	// the given transactions, header first. It returns a reference to the
	// written range.
	TransactionExporter interface {
		ExportTransactions(ctx context.Context, transactions []core.Transaction) (ref string, err error)
	}
)
