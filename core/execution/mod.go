// Package execution defines the service that applies a transaction to a
// snapshot of the state.
package execution

import (
	"go.dedis.ch/matchgame/core/store"
	"go.dedis.ch/matchgame/core/txn"
	"golang.org/x/xerrors"
)

// ErrStorage is the kind of error a contract returns when the state cannot be
// read or written. Unlike a refusal, it aborts the execution.
var ErrStorage = xerrors.New("storage failure")

// Step is the input of an execution.
type Step struct {
	// Current is the transaction to execute.
	Current txn.Transaction

	// Store is the storage transaction the step runs in. Side effects that
	// must only happen for persisted changes are registered on it. It is nil
	// when the step is not run inside a storage transaction.
	Store store.Transaction
}

// Result is the result of a transaction execution.
type Result struct {
	// Accepted is the success state of the transaction.
	Accepted bool

	// Message gives a change to the execution to explain why a transaction has
	// failed.
	Message string
}

// Service is the execution service that defines the primitives to execute a
// transaction.
type Service interface {
	// Execute must apply the transaction to the snapshot and return the result
	// of it. An error is returned only when the transaction cannot be
	// processed at all, which includes a storage failure. A contract refusing
	// the transaction is a result that is not accepted.
	Execute(snap store.Snapshot, step Step) (Result, error)
}
