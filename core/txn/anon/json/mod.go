// Package json implements the JSON format of anonymous transactions.
package json

import (
	"go.dedis.ch/matchgame/core/txn/anon"
	"go.dedis.ch/matchgame/crypto"
	"go.dedis.ch/matchgame/serde"
	"golang.org/x/xerrors"
)

func init() {
	anon.RegisterTransactionFormat(serde.FormatJSON, txFormat{})
}

// ArgJSON is the JSON message of a transaction argument.
type ArgJSON struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
}

// TransactionJSON is the JSON message of a transaction. The arguments are
// listed in key order.
type TransactionJSON struct {
	Nonce uint64    `json:"nonce"`
	Args  []ArgJSON `json:"args"`
}

// txFormat is the JSON format engine for transactions.
//
// - implements serde.FormatEngine
type txFormat struct {
	hashFactory crypto.HashFactory
}

// Encode implements serde.FormatEngine.
func (f txFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	tx, ok := msg.(anon.Transaction)
	if !ok {
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	keys := tx.GetArgs()

	m := TransactionJSON{
		Nonce: tx.GetNonce(),
		Args:  make([]ArgJSON, len(keys)),
	}

	for i, key := range keys {
		m.Args[i] = ArgJSON{Key: key, Value: tx.GetArg(key)}
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return data, nil
}

// Decode implements serde.FormatEngine. An argument key can appear only once.
func (f txFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	m := TransactionJSON{}

	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	seen := make(map[string]struct{}, len(m.Args))
	opts := make([]anon.TransactionOption, 0, len(m.Args)+1)

	for _, arg := range m.Args {
		_, found := seen[arg.Key]
		if found {
			return nil, xerrors.Errorf("duplicate argument '%s'", arg.Key)
		}

		seen[arg.Key] = struct{}{}
		opts = append(opts, anon.WithArg(arg.Key, arg.Value))
	}

	if f.hashFactory != nil {
		opts = append(opts, anon.WithHashFactory(f.hashFactory))
	}

	tx, err := anon.NewTransaction(m.Nonce, opts...)
	if err != nil {
		return nil, xerrors.Errorf("failed to create tx: %v", err)
	}

	return tx, nil
}
