// Package gamestats implements a native contract that keeps the game
// statistics of a player: the high score and the number of games played, won
// and lost.
//
// The result of a game is reported either by an operation submitted by the
// player or by a message delivered by another application. Both paths update
// the record the same way. The statistics are read with a query that never
// modifies the state.
package gamestats

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.dedis.ch/matchgame"
	"go.dedis.ch/matchgame/core/execution"
	"go.dedis.ch/matchgame/core/execution/native"
	"go.dedis.ch/matchgame/core/store"
	"go.dedis.ch/matchgame/serde"
	"golang.org/x/xerrors"
)

const (
	// ContractName is the name of the contract.
	ContractName = "go.dedis.ch/matchgame.GameStats"

	// ContractUID is the unique identifier of the contract.
	ContractUID = "GMST"

	// CmdArg is the argument's name to indicate the kind of command we want to
	// run on the contract. Should be one of the Command type.
	CmdArg = "gamestats:command"

	// OperationArg is the argument's name in the transaction that contains the
	// serialized operation.
	OperationArg = "gamestats:operation"

	// MessageArg is the argument's name in the transaction that contains the
	// serialized message.
	MessageArg = "gamestats:message"
)

// Command defines a type of command for the contract.
type Command string

const (
	// CmdInit resets the statistics to zero.
	CmdInit Command = "INIT"

	// CmdOperation applies the operation of the transaction.
	CmdOperation Command = "OPERATION"

	// CmdMessage applies the message of the transaction.
	CmdMessage Command = "MESSAGE"
)

const (
	originOperation = "operation"
	originMessage   = "message"
)

var (
	promGames = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchgame_gamestats_games_total",
		Help: "total number of recorded games",
	}, []string{"origin", "outcome"})

	promHighScore = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "matchgame_gamestats_high_score",
		Help: "high score of the player",
	})

	promDecodeErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matchgame_gamestats_decode_errors_total",
		Help: "total number of inputs that could not be decoded",
	})
)

func init() {
	matchgame.PromCollectors = append(matchgame.PromCollectors,
		promGames, promHighScore, promDecodeErrors)
}

// commands defines the commands of the contract. This interface helps in
// testing the contract.
type commands interface {
	init(snap store.Snapshot, step execution.Step) error
	operation(snap store.Snapshot, step execution.Step) error
	message(snap store.Snapshot, step execution.Step) error
}

// RegisterContract registers the contract to the given execution service.
func RegisterContract(exec *native.Service, c Contract) {
	exec.Set(ContractName, c)
}

// Contract is the native contract of the game statistics.
//
// - implements native.Contract
// - implements native.Querier
type Contract struct {
	// context is used to serialize the record and to decode the inputs.
	context serde.Context

	// cmd provides the commands executions
	cmd commands

	// printer is the output of the recorded statistics
	printer io.Writer
}

// NewContract creates a new contract that uses the context to serialize the
// record and decode the inputs.
func NewContract(ctx serde.Context) Contract {
	contract := Contract{
		context: ctx,
		printer: infoLog{},
	}

	contract.cmd = statsCommand{Contract: &contract}

	return contract
}

// UID implements native.Contract.
func (c Contract) UID() string {
	return ContractUID
}

// Execute implements native.Contract. It runs the appropriate command.
func (c Contract) Execute(snap store.Snapshot, step execution.Step) error {
	cmd := step.Current.GetArg(CmdArg)
	if len(cmd) == 0 {
		promDecodeErrors.Inc()
		return NewDecodeError(xerrors.Errorf("'%s' not found in tx arg", CmdArg))
	}

	switch Command(cmd) {
	case CmdInit:
		err := c.cmd.init(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to INIT: %w", err)
		}
	case CmdOperation:
		err := c.cmd.operation(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to apply OPERATION: %w", err)
		}
	case CmdMessage:
		err := c.cmd.message(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to apply MESSAGE: %w", err)
		}
	default:
		promDecodeErrors.Inc()
		return NewDecodeError(xerrors.Errorf("unknown command: %s", cmd))
	}

	return nil
}

// Query implements native.Querier. It decodes the query, answers it from the
// readable state and returns the serialized response.
func (c Contract) Query(r store.Readable, data []byte) ([]byte, error) {
	q, err := QueryFactory{}.QueryOf(c.context, data)
	if err != nil {
		promDecodeErrors.Inc()
		return nil, err
	}

	ledger := NewLedger(NewReadOnlyStore(r, c.context))

	resp, err := ledger.Query(q)
	if err != nil {
		return nil, err
	}

	out, err := resp.Serialize(c.context)
	if err != nil {
		return nil, xerrors.Errorf("failed to serialize response: %v", err)
	}

	return out, nil
}

// statsCommand implements the commands of the contract
//
// - implements commands
type statsCommand struct {
	*Contract
}

// init implements commands. It resets the record.
func (c statsCommand) init(snap store.Snapshot, step execution.Step) error {
	ledger := NewLedger(NewStateStore(snap, c.context))

	err := ledger.Initialize()
	if err != nil {
		return err
	}

	afterCommit(step, func() {
		promHighScore.Set(0)
		c.print(GameStats{})
	})

	return nil
}

// operation implements commands. It decodes and applies the operation.
func (c statsCommand) operation(snap store.Snapshot, step execution.Step) error {
	op, err := OperationFactory{}.OperationOf(c.context, step.Current.GetArg(OperationArg))
	if err != nil {
		promDecodeErrors.Inc()
		return err
	}

	stats, err := NewLedger(NewStateStore(snap, c.context)).ApplyOperation(op)
	if err != nil {
		return err
	}

	afterCommit(step, func() {
		c.observe(originOperation, op.(UpdateStats).Won, stats)
	})

	return nil
}

// message implements commands. It decodes and applies the message.
func (c statsCommand) message(snap store.Snapshot, step execution.Step) error {
	msg, err := MessageFactory{}.MessageOf(c.context, step.Current.GetArg(MessageArg))
	if err != nil {
		promDecodeErrors.Inc()
		return err
	}

	stats, err := NewLedger(NewStateStore(snap, c.context)).ApplyMessage(msg)
	if err != nil {
		return err
	}

	afterCommit(step, func() {
		c.observe(originMessage, msg.(NotifyGameCompleted).Won, stats)
	})

	return nil
}

func (c statsCommand) observe(origin string, won bool, stats GameStats) {
	outcome := "lost"
	if won {
		outcome = "won"
	}

	promGames.WithLabelValues(origin, outcome).Inc()
	promHighScore.Set(float64(stats.HighScore))

	c.print(stats)
}

// afterCommit runs the function once the changes of the step are persisted, or
// right away when the step is not part of a storage transaction.
func afterCommit(step execution.Step, fn func()) {
	if step.Store == nil {
		fn()
		return
	}

	step.Store.OnCommit(fn)
}

func (c statsCommand) print(stats GameStats) {
	io.WriteString(c.printer, stats.String())
}

// infoLog defines an output using zerolog
//
// - implements io.writer
type infoLog struct{}

func (h infoLog) Write(p []byte) (int, error) {
	matchgame.Logger.Info().Str("contract", "gamestats").Msg(string(p))

	return len(p), nil
}
