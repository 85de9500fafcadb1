// Package ordering defines the interface of the ordering service. The
// high-level purpose of this service is to decide in which order the
// transactions are applied to the state.
//
// The node runs alone so the ordering is the arrival order of the
// transactions, which are executed one after the other.
package ordering

import (
	"context"

	"go.dedis.ch/matchgame/core/execution"
	"go.dedis.ch/matchgame/core/txn"
)

// Event is the notification of a committed transaction.
type Event struct {
	// Index is the position of the transaction in the sequence of accepted
	// transactions, starting at 1.
	Index uint64

	TransactionID []byte

	Result execution.Result
}

// Service is the interface of an ordering service.
type Service interface {
	// Submit executes the transaction and commits its changes if it is
	// accepted.
	Submit(tx txn.Transaction) (execution.Result, error)

	// Query sends a read-only request to a contract.
	Query(contract string, data []byte) ([]byte, error)

	// Watch returns a channel populated with the events of the committed
	// transactions until the context is done.
	Watch(ctx context.Context) <-chan Event
}
