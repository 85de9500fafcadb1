// Package controller implements the controller of the game statistics
// contract. It registers the contract on start and provides the commands and
// the HTTP endpoints to record games and read the statistics.
package controller

import (
	"go.dedis.ch/matchgame/cli"
	"go.dedis.ch/matchgame/cli/node"
	"go.dedis.ch/matchgame/config"
	"go.dedis.ch/matchgame/contracts/gamestats"
	"go.dedis.ch/matchgame/core/execution/native"
	"go.dedis.ch/matchgame/core/txn/anon"
	"go.dedis.ch/matchgame/serde/json"
	"golang.org/x/xerrors"
)

// controller is a CLI initializer to register the game statistics contract.
//
// - implements node.Initializer
type controller struct{}

// NewController creates a new controller for the game statistics contract.
func NewController() node.Initializer {
	return controller{}
}

// SetCommands implements node.Initializer. It adds the "stats" command.
func (controller) SetCommands(builder node.Builder) {
	cmd := builder.SetCommand("stats")
	cmd.SetDescription("record games and read the statistics of the player")

	sub := cmd.SetSubCommand("init")
	sub.SetDescription("reset the statistics to zero")
	sub.SetAction(builder.MakeAction(initAction{}))

	gameFlags := []cli.Flag{
		cli.IntFlag{
			Name:     "score",
			Aliases:  []string{"s"},
			Usage:    "score of the game",
			Required: true,
		},
		cli.BoolFlag{
			Name:    "won",
			Aliases: []string{"w"},
			Usage:   "the player won the game",
		},
	}

	sub = cmd.SetSubCommand("update")
	sub.SetDescription("record a game submitted by the player")
	sub.SetFlags(gameFlags...)
	sub.SetAction(builder.MakeAction(gameAction{cmd: gamestats.CmdOperation}))

	sub = cmd.SetSubCommand("notify")
	sub.SetDescription("record a game reported by another application")
	sub.SetFlags(gameFlags...)
	sub.SetAction(builder.MakeAction(gameAction{cmd: gamestats.CmdMessage}))

	sub = cmd.SetSubCommand("query")
	sub.SetDescription("print the statistics")
	sub.SetAction(builder.MakeAction(queryAction{}))

	sub = cmd.SetSubCommand("http")
	sub.SetDescription("register the player-stats endpoints on the proxy")
	sub.SetAction(builder.MakeAction(httpAction{}))
}

// OnStart implements node.Initializer. It registers the contract and injects
// the transaction manager used by the actions.
func (controller) OnStart(flags cli.Flags, inj node.Injector) error {
	var exec *native.Service

	err := inj.Resolve(&exec)
	if err != nil {
		return xerrors.Errorf("failed to resolve native service: %v", err)
	}

	var cfg config.Config

	err = inj.Resolve(&cfg)
	if err != nil {
		cfg = config.Default()
	}

	fac, err := cfg.HashFactory()
	if err != nil {
		return xerrors.Errorf("failed to create hash factory: %v", err)
	}

	gamestats.RegisterContract(exec, gamestats.NewContract(json.NewContext()))

	inj.Inject(anon.NewManager(anon.WithHashFactory(fac)))

	return nil
}

// OnStop implements node.Initializer.
func (controller) OnStop(node.Injector) error {
	return nil
}
