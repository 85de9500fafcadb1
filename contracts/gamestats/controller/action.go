package controller

import (
	"fmt"

	"go.dedis.ch/matchgame/cli/node"
	"go.dedis.ch/matchgame/contracts/gamestats"
	"go.dedis.ch/matchgame/core/execution"
	"golang.org/x/xerrors"
)

// initAction is an action to reset the statistics.
//
// - implements node.ActionTemplate
type initAction struct{}

// Execute implements node.ActionTemplate.
func (initAction) Execute(ctx node.Context) error {
	c, err := newClient(ctx.Injector)
	if err != nil {
		return err
	}

	res, err := c.initialize()
	if err != nil {
		return err
	}

	return printResult(ctx, c, res)
}

// gameAction is an action to record a game with the given command.
//
// - implements node.ActionTemplate
type gameAction struct {
	cmd gamestats.Command
}

// Execute implements node.ActionTemplate.
func (a gameAction) Execute(ctx node.Context) error {
	score, err := toScore(int64(ctx.Flags.Int("score")))
	if err != nil {
		return xerrors.Errorf("invalid flag: %v", err)
	}

	c, err := newClient(ctx.Injector)
	if err != nil {
		return err
	}

	res, err := c.record(a.cmd, score, ctx.Flags.Bool("won"))
	if err != nil {
		return err
	}

	return printResult(ctx, c, res)
}

// queryAction is an action to print the statistics.
//
// - implements node.ActionTemplate
type queryAction struct{}

// Execute implements node.ActionTemplate.
func (queryAction) Execute(ctx node.Context) error {
	c, err := newClient(ctx.Injector)
	if err != nil {
		return err
	}

	stats, err := c.stats()
	if err != nil {
		return err
	}

	fmt.Fprint(ctx.Out, stats.String())

	return nil
}

func printResult(ctx node.Context, c client, res execution.Result) error {
	if !res.Accepted {
		return xerrors.Errorf("transaction refused: %s", res.Message)
	}

	stats, err := c.stats()
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "accepted: %s", stats)

	return nil
}
