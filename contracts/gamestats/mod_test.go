package gamestats

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/matchgame/core/execution"
	"go.dedis.ch/matchgame/core/execution/native"
	"go.dedis.ch/matchgame/core/store"
	"go.dedis.ch/matchgame/core/txn"
	"go.dedis.ch/matchgame/core/txn/anon"
	"go.dedis.ch/matchgame/internal/testing/fake"
	"go.dedis.ch/matchgame/serde"
)

const badResponseFormat = serde.Format("BAD_RESPONSE")

func init() {
	RegisterQueryFormat(badResponseFormat, fake.Format{Msg: GetPlayerStats{}})
	RegisterQueryResponseFormat(badResponseFormat, fake.NewBadFormat())
}

func TestExecute(t *testing.T) {
	contract := NewContract(fake.NewContext())

	err := contract.Execute(fake.NewSnapshot(), makeStep(t))
	require.EqualError(t, err, "decode error: 'gamestats:command' not found in tx arg")
	require.True(t, IsDecodeError(err))

	contract.cmd = fakeCmd{err: fake.GetError()}

	err = contract.Execute(fake.NewSnapshot(), makeStep(t, CmdArg, "INIT"))
	require.EqualError(t, err, fake.Err("failed to INIT"))

	err = contract.Execute(fake.NewSnapshot(), makeStep(t, CmdArg, "OPERATION"))
	require.EqualError(t, err, fake.Err("failed to apply OPERATION"))

	err = contract.Execute(fake.NewSnapshot(), makeStep(t, CmdArg, "MESSAGE"))
	require.EqualError(t, err, fake.Err("failed to apply MESSAGE"))

	err = contract.Execute(fake.NewSnapshot(), makeStep(t, CmdArg, "fake"))
	require.EqualError(t, err, "decode error: unknown command: fake")
	require.True(t, IsDecodeError(err))

	contract.cmd = fakeCmd{}
	err = contract.Execute(fake.NewSnapshot(), makeStep(t, CmdArg, "OPERATION"))
	require.NoError(t, err)
}

func TestExecute_KeepsErrorKind(t *testing.T) {
	contract := NewContract(fake.NewContext())

	contract.cmd = fakeCmd{err: NewStorageError(fake.GetError())}

	err := contract.Execute(fake.NewSnapshot(), makeStep(t, CmdArg, "INIT"))
	require.True(t, IsStorageError(err))
	require.ErrorIs(t, err, execution.ErrStorage)

	contract.cmd = fakeCmd{err: NewDecodeError(fake.GetError())}

	err = contract.Execute(fake.NewSnapshot(), makeStep(t, CmdArg, "MESSAGE"))
	require.True(t, IsDecodeError(err))
	require.NotErrorIs(t, err, execution.ErrStorage)
}

func TestCommand_Init(t *testing.T) {
	contract := NewContract(fake.NewContext())

	buf := &bytes.Buffer{}
	contract.printer = buf

	cmd := statsCommand{Contract: &contract}

	snap := fake.NewSnapshot()

	err := cmd.init(snap, makeStep(t))
	require.NoError(t, err)
	require.Equal(t, 1, snap.Len())
	require.Equal(t, "high_score=0,games_played=0,games_won=0,games_lost=0", buf.String())

	err = cmd.init(fake.NewBadSnapshot(), makeStep(t))
	require.EqualError(t, err, fake.Err("storage unavailable: failed to write state"))
	require.True(t, IsStorageError(err))
}

func TestCommand_Operation(t *testing.T) {
	contract := NewContract(fake.NewContext())

	buf := &bytes.Buffer{}
	contract.printer = buf

	cmd := statsCommand{Contract: &contract}

	snap := fake.NewSnapshot()

	err := cmd.operation(snap, makeStep(t, OperationArg, "{}"))
	require.NoError(t, err)
	require.Equal(t, "high_score=1,games_played=1,games_won=0,games_lost=1", buf.String())
	require.Equal(t, 1, snap.Len())

	err = cmd.operation(fake.NewBadSnapshot(), makeStep(t, OperationArg, "{}"))
	require.EqualError(t, err, fake.Err("storage unavailable: failed to write state"))

	contract.context = fake.NewBadContext()

	err = cmd.operation(snap, makeStep(t, OperationArg, "{}"))
	require.EqualError(t, err, fake.Err("decode error"))
	require.True(t, IsDecodeError(err))
}

func TestCommand_Message(t *testing.T) {
	contract := NewContract(fake.NewContext())

	buf := &bytes.Buffer{}
	contract.printer = buf

	cmd := statsCommand{Contract: &contract}

	snap := fake.NewSnapshot()

	err := cmd.message(snap, makeStep(t, MessageArg, "{}"))
	require.NoError(t, err)
	require.Equal(t, "high_score=2,games_played=1,games_won=0,games_lost=1", buf.String())

	err = cmd.message(fake.NewBadSnapshot(), makeStep(t, MessageArg, "{}"))
	require.True(t, IsStorageError(err))

	contract.context = fake.NewBadContext()

	err = cmd.message(snap, makeStep(t, MessageArg, "{}"))
	require.EqualError(t, err, fake.Err("decode error"))
}

func TestCommand_OutputAfterCommit(t *testing.T) {
	contract := NewContract(fake.NewContext())

	buf := &bytes.Buffer{}
	contract.printer = buf

	cmd := statsCommand{Contract: &contract}

	tx := &fakeStoreTx{}

	step := makeStep(t, OperationArg, "{}")
	step.Store = tx

	err := cmd.operation(fake.NewSnapshot(), step)
	require.NoError(t, err)
	require.Empty(t, buf.String())
	require.Len(t, tx.callbacks, 1)

	step = makeStep(t, MessageArg, "{}")
	step.Store = tx

	err = cmd.message(fake.NewBadSnapshot(), step)
	require.True(t, IsStorageError(err))
	require.Len(t, tx.callbacks, 1)

	err = cmd.init(fake.NewSnapshot(), execution.Step{Store: tx})
	require.NoError(t, err)
	require.Len(t, tx.callbacks, 2)
	require.Empty(t, buf.String())

	tx.commit()
	require.Equal(t, "high_score=1,games_played=1,games_won=0,games_lost=1"+
		"high_score=0,games_played=0,games_won=0,games_lost=0", buf.String())
}

func TestContract_Query(t *testing.T) {
	contract := NewContract(fake.NewContext())

	data, err := contract.Query(fake.NewSnapshot(), []byte("{}"))
	require.NoError(t, err)
	require.Equal(t, "fake format", string(data))

	// An unreadable state is reported as the zero record.
	data, err = contract.Query(fake.NewBadSnapshot(), []byte("{}"))
	require.NoError(t, err)
	require.Equal(t, "fake format", string(data))

	contract.context = fake.NewBadContext()

	_, err = contract.Query(fake.NewSnapshot(), []byte("{}"))
	require.EqualError(t, err, fake.Err("decode error"))
	require.True(t, IsDecodeError(err))

	contract.context = fake.NewContextWithFormat(badResponseFormat)

	_, err = contract.Query(fake.NewSnapshot(), []byte("{}"))
	require.EqualError(t, err, fake.Err("failed to serialize response: failed to encode"))
}

func TestContract_UID(t *testing.T) {
	require.Equal(t, ContractUID, Contract{}.UID())
}

func TestInfoLog(t *testing.T) {
	log := infoLog{}

	n, err := log.Write([]byte{0b0, 0b1})
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestRegisterContract(t *testing.T) {
	exec := native.NewExecution()

	RegisterContract(exec, NewContract(fake.NewContext()))

	require.Panics(t, func() {
		RegisterContract(exec, NewContract(fake.NewContext()))
	})
}

// -----------------------------------------------------------------------------
// Utility functions

func makeStep(t *testing.T, args ...string) execution.Step {
	return execution.Step{Current: makeTx(t, args...)}
}

func makeTx(t *testing.T, args ...string) txn.Transaction {
	options := []anon.TransactionOption{}
	for i := 0; i < len(args)-1; i += 2 {
		options = append(options, anon.WithArg(args[i], []byte(args[i+1])))
	}

	tx, err := anon.NewTransaction(0, options...)
	require.NoError(t, err)

	return tx
}

type fakeCmd struct {
	err error
}

func (c fakeCmd) init(snap store.Snapshot, step execution.Step) error {
	return c.err
}

func (c fakeCmd) operation(snap store.Snapshot, step execution.Step) error {
	return c.err
}

func (c fakeCmd) message(snap store.Snapshot, step execution.Step) error {
	return c.err
}

type fakeStoreTx struct {
	callbacks []func()
}

func (tx *fakeStoreTx) OnCommit(fn func()) {
	tx.callbacks = append(tx.callbacks, fn)
}

func (tx *fakeStoreTx) commit() {
	for _, fn := range tx.callbacks {
		fn()
	}
}
