package gamestats_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/matchgame/contracts/gamestats"
	"go.dedis.ch/matchgame/core/execution"
	"go.dedis.ch/matchgame/core/execution/native"
	"go.dedis.ch/matchgame/core/store"
	"go.dedis.ch/matchgame/core/store/prefixed"
	"go.dedis.ch/matchgame/core/txn/anon"
	"go.dedis.ch/matchgame/internal/testing/fake"
	"go.dedis.ch/matchgame/serde/json"
)

func TestScenario_GameStats(t *testing.T) {
	ctx := json.NewContext()

	exec := native.NewExecution()
	gamestats.RegisterContract(exec, gamestats.NewContract(ctx))

	snap := fake.NewSnapshot()

	require.Equal(t, gamestats.GameStats{}, queryStats(t, exec, snap))

	res := execute(t, exec, snap, gamestats.CmdArg, string(gamestats.CmdInit))
	require.True(t, res.Accepted, res.Message)
	require.Equal(t, gamestats.GameStats{}, queryStats(t, exec, snap))

	res = execute(t, exec, snap,
		gamestats.CmdArg, string(gamestats.CmdOperation),
		gamestats.OperationArg, `{"UpdateStats":{"score":50,"won":true}}`)
	require.True(t, res.Accepted, res.Message)
	require.Equal(t, gamestats.GameStats{HighScore: 50, GamesPlayed: 1, GamesWon: 1},
		queryStats(t, exec, snap))

	res = execute(t, exec, snap,
		gamestats.CmdArg, string(gamestats.CmdMessage),
		gamestats.MessageArg, `{"NotifyGameCompleted":{"score":30,"won":false}}`)
	require.True(t, res.Accepted, res.Message)
	require.Equal(t, gamestats.GameStats{HighScore: 50, GamesPlayed: 2, GamesWon: 1, GamesLost: 1},
		queryStats(t, exec, snap))

	res = execute(t, exec, snap,
		gamestats.CmdArg, string(gamestats.CmdOperation),
		gamestats.OperationArg, `{"UpdateStats":{"score":100,"won":true}}`)
	require.True(t, res.Accepted, res.Message)
	require.Equal(t, gamestats.GameStats{HighScore: 100, GamesPlayed: 3, GamesWon: 2, GamesLost: 1},
		queryStats(t, exec, snap))
}

func TestScenario_RejectedInputs(t *testing.T) {
	ctx := json.NewContext()

	exec := native.NewExecution()
	gamestats.RegisterContract(exec, gamestats.NewContract(ctx))

	snap := fake.NewSnapshot()

	res := execute(t, exec, snap,
		gamestats.CmdArg, string(gamestats.CmdOperation),
		gamestats.OperationArg, `{"UpdateStats":{"score":7,"won":true}}`)
	require.True(t, res.Accepted, res.Message)

	before := queryStats(t, exec, snap)

	inputs := [][]string{
		{gamestats.CmdArg, string(gamestats.CmdOperation), gamestats.OperationArg, `{"Unknown":{}}`},
		{gamestats.CmdArg, string(gamestats.CmdOperation), gamestats.OperationArg, `{"UpdateStats":{"score":-1,"won":true}}`},
		{gamestats.CmdArg, string(gamestats.CmdOperation), gamestats.OperationArg, `{"UpdateStats":{"score":4294967296,"won":true}}`},
		{gamestats.CmdArg, string(gamestats.CmdOperation), gamestats.OperationArg, `not json`},
		{gamestats.CmdArg, string(gamestats.CmdMessage), gamestats.MessageArg, `{"UpdateStats":{"score":1,"won":true}}`},
		{gamestats.CmdArg, "RESET"},
		{},
	}

	for _, in := range inputs {
		res := execute(t, exec, snap, in...)
		require.False(t, res.Accepted)
		require.Contains(t, res.Message, "decode error")
	}

	require.Equal(t, before, queryStats(t, exec, snap))
}

func TestScenario_Overflow(t *testing.T) {
	ctx := json.NewContext()

	exec := native.NewExecution()
	gamestats.RegisterContract(exec, gamestats.NewContract(ctx))

	snap := fake.NewSnapshot()

	full := gamestats.GameStats{HighScore: 9, GamesPlayed: math.MaxUint32, GamesLost: math.MaxUint32}

	store := gamestats.NewStateStore(prefixed.NewSnapshot(gamestats.ContractUID, snap), ctx)
	require.NoError(t, store.Store(full))
	require.Equal(t, full, queryStats(t, exec, snap))

	res := execute(t, exec, snap,
		gamestats.CmdArg, string(gamestats.CmdOperation),
		gamestats.OperationArg, `{"UpdateStats":{"score":50,"won":false}}`)
	require.False(t, res.Accepted)
	require.Contains(t, res.Message, "counter overflow")

	require.Equal(t, full, queryStats(t, exec, snap))
}

func TestScenario_QueryForms(t *testing.T) {
	ctx := json.NewContext()

	exec := native.NewExecution()
	gamestats.RegisterContract(exec, gamestats.NewContract(ctx))

	snap := fake.NewSnapshot()

	for _, q := range []string{`"GetPlayerStats"`, `{"GetPlayerStats":{}}`} {
		data, err := exec.Query(gamestats.ContractName, snap, []byte(q))
		require.NoError(t, err)
		require.JSONEq(t,
			`{"PlayerStats":{"high_score":0,"games_played":0,"games_won":0,"games_lost":0}}`,
			string(data))
	}

	_, err := exec.Query(gamestats.ContractName, snap, []byte(`"GetOtherStats"`))
	require.Error(t, err)
	require.True(t, gamestats.IsDecodeError(err))
}

// -----------------------------------------------------------------------------
// Utility functions

func execute(t *testing.T, exec *native.Service, snap store.Snapshot, args ...string) execution.Result {
	opts := []anon.TransactionOption{
		anon.WithArg(native.ContractArg, []byte(gamestats.ContractName)),
	}

	for i := 0; i < len(args)-1; i += 2 {
		opts = append(opts, anon.WithArg(args[i], []byte(args[i+1])))
	}

	tx, err := anon.NewTransaction(0, opts...)
	require.NoError(t, err)

	res, err := exec.Execute(snap, execution.Step{Current: tx})
	require.NoError(t, err)

	return res
}

func queryStats(t *testing.T, exec *native.Service, snap store.Readable) gamestats.GameStats {
	req, err := gamestats.GetPlayerStats{}.Serialize(json.NewContext())
	require.NoError(t, err)

	data, err := exec.Query(gamestats.ContractName, snap, req)
	require.NoError(t, err)

	resp, err := gamestats.QueryResponseFactory{}.ResponseOf(json.NewContext(), data)
	require.NoError(t, err)

	return resp.(gamestats.PlayerStats).GameStats
}
