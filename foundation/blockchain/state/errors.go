package state

import "errors"

// Sentinel errors for block production and queries.
var (
	// ErrNoPendingTransactions is returned when the mempool holds nothing
	// to produce a block from.
	ErrNoPendingTransactions = errors.New("no pending transactions")

	// ErrNoQualifiedTransactions is returned when a production round ran
	// but no transaction qualified for inclusion.
	ErrNoQualifiedTransactions = errors.New("no qualified transactions")
)
