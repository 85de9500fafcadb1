package controller

import (
	"math"

	"go.dedis.ch/matchgame/cli/node"
	"go.dedis.ch/matchgame/contracts/gamestats"
	"go.dedis.ch/matchgame/core/execution"
	"go.dedis.ch/matchgame/core/execution/native"
	"go.dedis.ch/matchgame/core/ordering"
	"go.dedis.ch/matchgame/core/txn"
	"go.dedis.ch/matchgame/serde"
	"go.dedis.ch/matchgame/serde/json"
	"golang.org/x/xerrors"
)

// client submits the inputs of the contract and reads the statistics through
// the ordering service.
type client struct {
	srvc    ordering.Service
	mgr     txn.Manager
	context serde.Context
}

func newClient(inj node.Injector) (client, error) {
	var srvc ordering.Service

	err := inj.Resolve(&srvc)
	if err != nil {
		return client{}, xerrors.Errorf("failed to resolve ordering service: %v", err)
	}

	var mgr txn.Manager

	err = inj.Resolve(&mgr)
	if err != nil {
		return client{}, xerrors.Errorf("failed to resolve manager: %v", err)
	}

	c := client{
		srvc:    srvc,
		mgr:     mgr,
		context: json.NewContext(),
	}

	return c, nil
}

// initialize resets the statistics.
func (c client) initialize() (execution.Result, error) {
	return c.submit(txn.Arg{Key: gamestats.CmdArg, Value: []byte(gamestats.CmdInit)})
}

// record submits the result of a game either as an operation or as a message.
func (c client) record(cmd gamestats.Command, score uint32, won bool) (execution.Result, error) {
	var input serde.Message
	var key string

	switch cmd {
	case gamestats.CmdOperation:
		input = gamestats.UpdateStats{Score: score, Won: won}
		key = gamestats.OperationArg
	case gamestats.CmdMessage:
		input = gamestats.NotifyGameCompleted{Score: score, Won: won}
		key = gamestats.MessageArg
	default:
		return execution.Result{}, xerrors.Errorf("unsupported command '%s'", cmd)
	}

	data, err := input.Serialize(c.context)
	if err != nil {
		return execution.Result{}, xerrors.Errorf("failed to serialize input: %v", err)
	}

	return c.submit(
		txn.Arg{Key: gamestats.CmdArg, Value: []byte(cmd)},
		txn.Arg{Key: key, Value: data},
	)
}

// stats returns the current statistics.
func (c client) stats() (gamestats.GameStats, error) {
	req, err := gamestats.GetPlayerStats{}.Serialize(c.context)
	if err != nil {
		return gamestats.GameStats{}, xerrors.Errorf("failed to serialize query: %v", err)
	}

	data, err := c.srvc.Query(gamestats.ContractName, req)
	if err != nil {
		return gamestats.GameStats{}, xerrors.Errorf("failed to query: %v", err)
	}

	resp, err := gamestats.QueryResponseFactory{}.ResponseOf(c.context, data)
	if err != nil {
		return gamestats.GameStats{}, xerrors.Errorf("failed to read response: %v", err)
	}

	stats, ok := resp.(gamestats.PlayerStats)
	if !ok {
		return gamestats.GameStats{}, xerrors.Errorf("unexpected response '%T'", resp)
	}

	return stats.GameStats, nil
}

func (c client) submit(args ...txn.Arg) (execution.Result, error) {
	args = append([]txn.Arg{
		{Key: native.ContractArg, Value: []byte(gamestats.ContractName)},
	}, args...)

	tx, err := c.mgr.Make(args...)
	if err != nil {
		return execution.Result{}, xerrors.Errorf("failed to create transaction: %v", err)
	}

	res, err := c.srvc.Submit(tx)
	if err != nil {
		return execution.Result{}, xerrors.Errorf("failed to submit: %v", err)
	}

	return res, nil
}

// toScore converts the input into a score, or returns an error if it is out of
// range.
func toScore(v int64) (uint32, error) {
	if v < 0 || v > math.MaxUint32 {
		return 0, xerrors.Errorf("score %d out of range", v)
	}

	return uint32(v), nil
}
