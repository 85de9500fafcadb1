// Package controller implements a controller for the node configuration.
package controller

import (
	"fmt"

	"go.dedis.ch/matchgame"
	"go.dedis.ch/matchgame/cli"
	"go.dedis.ch/matchgame/cli/node"
	"go.dedis.ch/matchgame/config"
	"golang.org/x/xerrors"
)

// controller is the initializer that loads the configuration of the node.
//
// - implements node.Initializer
type controller struct {
	load func(dir string) (config.Config, error)
}

// NewController returns a new controller initializer.
func NewController() node.Initializer {
	return controller{load: config.Load}
}

// SetCommands implements node.Initializer. It adds a command to print the
// configuration used by the daemon.
func (c controller) SetCommands(builder node.Builder) {
	cmd := builder.SetCommand("config")
	cmd.SetDescription("inspect the configuration of the node")

	sub := cmd.SetSubCommand("show")
	sub.SetDescription("print the configuration loaded by the daemon")
	sub.SetAction(builder.MakeAction(showAction{}))
}

// OnStart implements node.Initializer. It loads the configuration from the
// config folder, applies the log level and injects the configuration.
func (c controller) OnStart(flags cli.Flags, inj node.Injector) error {
	cfg, err := c.load(flags.Path("config"))
	if err != nil {
		return xerrors.Errorf("failed to load config: %v", err)
	}

	level, err := cfg.Level()
	if err != nil {
		return xerrors.Errorf("failed to read level: %v", err)
	}

	matchgame.SetLogLevel(level)

	matchgame.Logger.Debug().
		Str("backend", cfg.Storage.Backend).
		Str("proxy", cfg.Proxy.Addr).
		Msg("configuration loaded")

	inj.Inject(cfg)

	return nil
}

// OnStop implements node.Initializer.
func (controller) OnStop(node.Injector) error {
	return nil
}

// showAction prints the configuration of the daemon.
//
// - implements node.ActionTemplate
type showAction struct{}

// Execute implements node.ActionTemplate.
func (showAction) Execute(ctx node.Context) error {
	var cfg config.Config

	err := ctx.Injector.Resolve(&cfg)
	if err != nil {
		return xerrors.Errorf("injector: %v", err)
	}

	fmt.Fprint(ctx.Out, cfg.String())

	return nil
}
