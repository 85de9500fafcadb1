// Package anon implements anonymous transactions. They carry arguments and a
// nonce but no identity, as the node does not authenticate its callers.
package anon

import (
	"encoding/binary"
	"io"
	"sort"
	"sync"

	"go.dedis.ch/matchgame/core/txn"
	"go.dedis.ch/matchgame/crypto"
	"go.dedis.ch/matchgame/serde"
	"go.dedis.ch/matchgame/serde/registry"
	"golang.org/x/xerrors"
)

var txFormats = registry.NewSimpleRegistry()

// RegisterTransactionFormat registers the engine for the provided format.
func RegisterTransactionFormat(f serde.Format, e serde.FormatEngine) {
	txFormats.Register(f, e)
}

// Transaction is a an anonymous transaction. It can contain arguments.
//
// - implements txn.Transaction
type Transaction struct {
	nonce uint64
	args  map[string][]byte
	hash  []byte
}

type template struct {
	Transaction

	hashFactory crypto.HashFactory
}

// TransactionOption is the type of options to create a transaction.
type TransactionOption func(*template)

// WithArg is an option to set an argument with the key and the value.
func WithArg(key string, value []byte) TransactionOption {
	return func(tmpl *template) {
		tmpl.args[key] = value
	}
}

// WithHashFactory is an option to set a different hash factory when creating a
// transaction.
func WithHashFactory(f crypto.HashFactory) TransactionOption {
	return func(tmpl *template) {
		tmpl.hashFactory = f
	}
}

// NewTransaction creates a new transaction with the provided nonce.
func NewTransaction(nonce uint64, opts ...TransactionOption) (Transaction, error) {
	tmpl := template{
		Transaction: Transaction{
			nonce: nonce,
			args:  make(map[string][]byte),
		},
		hashFactory: crypto.NewSha256Factory(),
	}

	for _, opt := range opts {
		opt(&tmpl)
	}

	h := tmpl.hashFactory.New()

	err := tmpl.Fingerprint(h)
	if err != nil {
		return tmpl.Transaction, xerrors.Errorf("couldn't fingerprint tx: %v", err)
	}

	tmpl.hash = h.Sum(nil)

	return tmpl.Transaction, nil
}

// GetID implements txn.Transaction. It returns the ID of the transaction.
func (t Transaction) GetID() []byte {
	return t.hash
}

// GetNonce implements txn.Transaction. It returns the nonce of the
// transaction.
func (t Transaction) GetNonce() uint64 {
	return t.nonce
}

// GetArgs returns the sorted list of argument keys.
func (t Transaction) GetArgs() []string {
	args := make([]string, 0, len(t.args))
	for key := range t.args {
		args = append(args, key)
	}

	sort.Strings(args)

	return args
}

// GetArg implements txn.Transaction. It returns the value of the argument if it
// is set, otherwise nil.
func (t Transaction) GetArg(key string) []byte {
	return t.args[key]
}

// Fingerprint implements serde.Fingerprinter. It writes the nonce followed by
// the arguments in key order, each key and value being prefixed with its
// length so that two different sets of arguments never share a fingerprint.
func (t Transaction) Fingerprint(w io.Writer) error {
	buffer := make([]byte, 8)
	binary.LittleEndian.PutUint64(buffer, t.nonce)

	_, err := w.Write(buffer)
	if err != nil {
		return xerrors.Errorf("couldn't write nonce: %v", err)
	}

	for _, key := range t.GetArgs() {
		value := t.args[key]

		record := make([]byte, 0, 8+len(key)+len(value))
		record = binary.LittleEndian.AppendUint32(record, uint32(len(key)))
		record = append(record, key...)
		record = binary.LittleEndian.AppendUint32(record, uint32(len(value)))
		record = append(record, value...)

		_, err = w.Write(record)
		if err != nil {
			return xerrors.Errorf("couldn't write arg '%s': %v", key, err)
		}
	}

	return nil
}

// Serialize implements serde.Message. It returns the serialized data of the
// transaction.
func (t Transaction) Serialize(ctx serde.Context) ([]byte, error) {
	format := txFormats.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, t)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode: %v", err)
	}

	return data, nil
}

// TransactionFactory is a factory to deserialize transactions.
//
// - implements txn.Factory
type TransactionFactory struct{}

// NewTransactionFactory returns a new factory.
func NewTransactionFactory() TransactionFactory {
	return TransactionFactory{}
}

// Deserialize implements serde.Factory. It populates the transaction from the
// data if appropriate, otherwise it returns an error.
func (f TransactionFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	return f.TransactionOf(ctx, data)
}

// TransactionOf implements txn.Factory. It populates the transaction from the
// data if appropriate, otherwise it returns an error.
func (f TransactionFactory) TransactionOf(ctx serde.Context, data []byte) (txn.Transaction, error) {
	format := txFormats.Get(ctx.GetFormat())

	msg, err := format.Decode(ctx, data)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode: %v", err)
	}

	tx, ok := msg.(Transaction)
	if !ok {
		return nil, xerrors.Errorf("invalid transaction of type '%T'", msg)
	}

	return tx, nil
}

// transactionManager creates anonymous transactions with an increasing nonce.
//
// - implements txn.Manager
type transactionManager struct {
	sync.Mutex

	nonce uint64
	opts  []TransactionOption
}

// NewManager creates a new transaction manager. The options are applied to
// every transaction it makes.
func NewManager(opts ...TransactionOption) txn.Manager {
	return &transactionManager{opts: opts}
}

// Make implements txn.Manager. It creates a transaction populated with the
// arguments and the next nonce.
func (mgr *transactionManager) Make(args ...txn.Arg) (txn.Transaction, error) {
	opts := append([]TransactionOption{}, mgr.opts...)
	for _, arg := range args {
		opts = append(opts, WithArg(arg.Key, arg.Value))
	}

	mgr.Lock()
	defer mgr.Unlock()

	tx, err := NewTransaction(mgr.nonce, opts...)
	if err != nil {
		return nil, xerrors.Errorf("failed to create tx: %v", err)
	}

	mgr.nonce++

	return tx, nil
}

// Sync implements txn.Manager. Anonymous transactions are not bound to a
// sequence stored on the node so there is nothing to synchronize.
func (mgr *transactionManager) Sync() error {
	return nil
}
