// Package native implements an execution service to run native smart contracts.
//
// A native smart contract is written in Go and packaged with the application.
// Every contract has a unique identifier of 4 bytes that is used to isolate its
// part of the state from the other contracts.
package native

import (
	"go.dedis.ch/matchgame/core/execution"
	"go.dedis.ch/matchgame/core/store"
	"go.dedis.ch/matchgame/core/store/prefixed"
	"golang.org/x/xerrors"
)

const (
	// ContractArg is the argument key in the transaction to look up a contract.
	ContractArg = "go.dedis.ch/matchgame.ContractArg"
)

// Contract is the interface to implement to register a smart contract that will
// be executed natively.
type Contract interface {
	Execute(store.Snapshot, execution.Step) error
	UID() string
}

// Querier is the interface a contract can implement to answer read-only
// queries against its state.
type Querier interface {
	Query(store.Readable, []byte) ([]byte, error)
}

// Service is an execution service for packaged applications. Each contract has
// access to its own prefixed view of the state.
//
// - implements execution.Service
type Service struct {
	contracts    map[string]Contract
	contractUIDs map[string]struct{}
}

// NewExecution returns a new native execution. The given service will be
// executed for every incoming transaction.
func NewExecution() *Service {
	return &Service{
		contracts:    map[string]Contract{},
		contractUIDs: map[string]struct{}{},
	}
}

// Set stores the contract using the name as the key. A transaction can trigger
// this contract by using the same name as the contract argument. It panics if
// the name or the UID is already registered, or if the UID is not 4 bytes
// long.
func (ns *Service) Set(name string, contract Contract) {
	if _, ok := ns.contracts[name]; ok {
		panic(xerrors.Errorf("contract '%s' already registered", name))
	}

	uid := contract.UID()

	if len(uid) != 4 {
		panic(xerrors.Errorf("contract UID '%x' for '%s' is not 4 bytes long", uid, name))
	}

	if _, ok := ns.contractUIDs[uid]; ok {
		panic(xerrors.Errorf("contract UID '%x' for '%s' already registered", uid, name))
	}

	ns.contracts[name] = contract
	ns.contractUIDs[uid] = struct{}{}
}

// Execute implements execution.Service. It uses the executor to process the
// incoming transaction and return the result. A contract error of the
// execution.ErrStorage kind is returned as is, any other one refuses the
// transaction.
func (ns *Service) Execute(snap store.Snapshot, step execution.Step) (execution.Result, error) {
	name := string(step.Current.GetArg(ContractArg))

	contract := ns.contracts[name]
	if contract == nil {
		return execution.Result{}, xerrors.Errorf("unknown contract '%s'", name)
	}

	res := execution.Result{
		Accepted: true,
	}

	err := contract.Execute(prefixed.NewSnapshot(contract.UID(), snap), step)
	if xerrors.Is(err, execution.ErrStorage) {
		return execution.Result{}, xerrors.Errorf("failed to execute contract '%s': %w", name, err)
	}

	if err != nil {
		res.Accepted = false
		res.Message = err.Error()
	}

	return res, nil
}

// Query forwards a read-only request to the contract with the given name. The
// contract must implement the Querier interface.
func (ns *Service) Query(name string, r store.Readable, data []byte) ([]byte, error) {
	contract := ns.contracts[name]
	if contract == nil {
		return nil, xerrors.Errorf("unknown contract '%s'", name)
	}

	querier, ok := contract.(Querier)
	if !ok {
		return nil, xerrors.Errorf("contract '%s' does not support queries", name)
	}

	resp, err := querier.Query(prefixed.NewReadable(contract.UID(), r), data)
	if err != nil {
		return nil, xerrors.Errorf("query failed: %w", err)
	}

	return resp, nil
}
