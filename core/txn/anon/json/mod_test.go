package json

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/matchgame/core/txn"
	"go.dedis.ch/matchgame/core/txn/anon"
	"go.dedis.ch/matchgame/internal/testing/fake"
	"go.dedis.ch/matchgame/serde"
)

func TestTxFormat_Encode(t *testing.T) {
	format := txFormat{}
	ctx := fake.NewContextWithFormat(serde.FormatJSON)

	tx := makeTx(t, 1,
		anon.WithArg("gamestats:score", []byte{1}),
		anon.WithArg("go.dedis.ch/matchgame.ContractArg", []byte("gamestats")))

	data, err := format.Encode(ctx, tx)
	require.NoError(t, err)
	require.Equal(t, `{"nonce":1,"args":[`+
		`{"key":"gamestats:score","value":"AQ=="},`+
		`{"key":"go.dedis.ch/matchgame.ContractArg","value":"Z2FtZXN0YXRz"}]}`, string(data))

	data, err = format.Encode(ctx, makeTx(t, 0))
	require.NoError(t, err)
	require.Equal(t, `{"nonce":0,"args":[]}`, string(data))

	_, err = format.Encode(ctx, fake.Message{})
	require.EqualError(t, err, "unsupported message of type 'fake.Message'")

	_, err = format.Encode(fake.NewBadContext(), makeTx(t, 0))
	require.EqualError(t, err, "failed to marshal: fake error")
}

func TestTxFormat_Decode(t *testing.T) {
	format := txFormat{}
	ctx := fake.NewContextWithFormat(serde.FormatJSON)

	msg, err := format.Decode(ctx, []byte(`{"nonce":2,"args":[{"key":"B","value":"AQ=="}]}`))
	require.NoError(t, err)
	require.Equal(t, makeTx(t, 2, anon.WithArg("B", []byte{1})), msg)

	_, err = format.Decode(ctx, []byte(`{"nonce":2,"args":[{"key":"B"},{"key":"B"}]}`))
	require.EqualError(t, err, "duplicate argument 'B'")

	_, err = format.Decode(fake.NewBadContext(), []byte(`{}`))
	require.EqualError(t, err, "failed to unmarshal: fake error")

	format.hashFactory = fake.NewHashFactory(fake.NewBadHash())
	_, err = format.Decode(ctx, []byte(`{}`))
	require.EqualError(t, err,
		"failed to create tx: couldn't fingerprint tx: couldn't write nonce: fake error")
}

func TestTxFormat_RoundTrip(t *testing.T) {
	ctx := fake.NewContextWithFormat(serde.FormatJSON)

	tx := makeTx(t, 7, anon.WithArg("gamestats:command", []byte("UpdateStats")))

	data, err := tx.Serialize(ctx)
	require.NoError(t, err)

	out, err := anon.NewTransactionFactory().TransactionOf(ctx, data)
	require.NoError(t, err)
	require.Equal(t, tx, out)
	require.Equal(t, tx.GetID(), out.GetID())
}

// -----------------------------------------------------------------------------
// Utility functions

func makeTx(t *testing.T, nonce uint64, opts ...anon.TransactionOption) txn.Transaction {
	tx, err := anon.NewTransaction(nonce, opts...)
	require.NoError(t, err)

	return tx
}
