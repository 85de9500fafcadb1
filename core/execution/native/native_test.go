package native

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/matchgame/core/execution"
	"go.dedis.ch/matchgame/core/store"
	"go.dedis.ch/matchgame/core/store/prefixed"
	"go.dedis.ch/matchgame/core/txn"
	"go.dedis.ch/matchgame/internal/testing/fake"
	"golang.org/x/xerrors"
)

func TestService_RequireUniqueContractName(t *testing.T) {
	srvc := NewExecution()
	srvc.Set("abc", fakeExec{uid: "abcd"})

	require.PanicsWithError(t, "contract 'abc' already registered", func() {
		srvc.Set("abc", fakeExec{uid: "badd"})
	})
}

func TestService_RequireUniqueContractID(t *testing.T) {
	srvc := NewExecution()
	srvc.Set("abc", fakeExec{uid: "abcd"})

	err := fmt.Sprintf("contract UID '%x' for '%s' already registered",
		"abcd", "bad")

	require.PanicsWithError(t, err, func() {
		srvc.Set("bad", fakeExec{uid: "abcd"})
	})
}

func TestService_VerifyContractIDFormat(t *testing.T) {
	srvc := NewExecution()
	err := fmt.Sprintf("contract UID '%x' for '%s' is not 4 bytes long",
		"abc", "bad")

	require.PanicsWithError(t, err, func() {
		srvc.Set("bad", fakeExec{uid: "abc"})
	})
}

func TestService_Execute(t *testing.T) {
	srvc := NewExecution()
	srvc.Set("abc", fakeExec{uid: "abcd"})
	srvc.Set("bad", fakeExec{uid: "badd", err: fake.GetError()})

	step := execution.Step{}
	step.Current = fakeTx{contract: "abc"}

	snap := fake.NewSnapshot()

	res, err := srvc.Execute(snap, step)
	require.NoError(t, err)
	require.Equal(t, execution.Result{Accepted: true}, res)

	// The contract writes in its own key space.
	value, err := snap.Get(prefixed.NewPrefixedKey([]byte("abcd"), []byte("key")))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), value)

	step.Current = fakeTx{contract: "bad"}
	res, err = srvc.Execute(snap, step)
	require.NoError(t, err)
	require.Equal(t, execution.Result{Message: fake.GetError().Error()}, res)

	step.Current = fakeTx{contract: "none"}
	_, err = srvc.Execute(snap, step)
	require.EqualError(t, err, "unknown contract 'none'")
}

func TestService_ExecuteStorageFailure(t *testing.T) {
	srvc := NewExecution()
	srvc.Set("abc", fakeExec{
		uid: "abcd",
		err: xerrors.Errorf("failed to write: %w", execution.ErrStorage),
	})

	step := execution.Step{Current: fakeTx{contract: "abc"}}

	res, err := srvc.Execute(fake.NewSnapshot(), step)
	require.EqualError(t, err,
		"failed to execute contract 'abc': failed to write: storage failure")
	require.ErrorIs(t, err, execution.ErrStorage)
	require.Equal(t, execution.Result{}, res)
}

func TestService_Query(t *testing.T) {
	srvc := NewExecution()
	srvc.Set("abc", fakeExec{uid: "abcd"})
	srvc.Set("query", fakeQuerier{fakeExec: fakeExec{uid: "qqqq"}})
	srvc.Set("bad", fakeQuerier{fakeExec: fakeExec{uid: "badd"}, err: fake.GetError()})

	snap := fake.NewSnapshot()
	require.NoError(t, prefixed.NewSnapshot("qqqq", snap).Set([]byte("key"), []byte("pong")))

	resp, err := srvc.Query("query", snap, []byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("pong"), resp)

	_, err = srvc.Query("none", snap, nil)
	require.EqualError(t, err, "unknown contract 'none'")

	_, err = srvc.Query("abc", snap, nil)
	require.EqualError(t, err, "contract 'abc' does not support queries")

	_, err = srvc.Query("bad", snap, nil)
	require.EqualError(t, err, fake.Err("query failed"))
	require.ErrorIs(t, err, fake.GetError())
}

// -----------------------------------------------------------------------------
// Utility functions

type fakeExec struct {
	err error
	uid string
}

func (e fakeExec) Execute(snap store.Snapshot, step execution.Step) error {
	if e.err != nil {
		return e.err
	}

	return snap.Set([]byte("key"), []byte("value"))
}

func (e fakeExec) UID() string {
	return e.uid
}

type fakeQuerier struct {
	fakeExec
	err error
}

func (q fakeQuerier) Query(r store.Readable, data []byte) ([]byte, error) {
	if q.err != nil {
		return nil, q.err
	}

	return r.Get(data)
}

type fakeTx struct {
	txn.Transaction
	contract string
}

func (tx fakeTx) GetArg(key string) []byte {
	return []byte(tx.contract)
}
