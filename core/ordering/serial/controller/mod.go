// Package controller implements a controller for the serial ordering service.
package controller

import (
	"fmt"

	"go.dedis.ch/matchgame/cli"
	"go.dedis.ch/matchgame/cli/node"
	"go.dedis.ch/matchgame/config"
	"go.dedis.ch/matchgame/core/execution/native"
	"go.dedis.ch/matchgame/core/ordering/serial"
	"go.dedis.ch/matchgame/core/store/kv"
	"golang.org/x/xerrors"
)

// controller creates the execution and the ordering services.
//
// - implements node.Initializer
type controller struct{}

// NewController returns a new controller initializer.
func NewController() node.Initializer {
	return controller{}
}

// SetCommands implements node.Initializer. It adds a command to inspect the
// ordering service.
func (controller) SetCommands(builder node.Builder) {
	cmd := builder.SetCommand("ordering")
	cmd.SetDescription("inspect the ordering service")

	sub := cmd.SetSubCommand("status")
	sub.SetDescription("print the index of the last accepted transaction")
	sub.SetAction(builder.MakeAction(statusAction{}))
}

// OnStart implements node.Initializer. It creates the native execution service
// and the ordering service on top of the injected database.
func (controller) OnStart(flags cli.Flags, inj node.Injector) error {
	var db kv.DB

	err := inj.Resolve(&db)
	if err != nil {
		return xerrors.Errorf("injector: %v", err)
	}

	var cfg config.Config

	err = inj.Resolve(&cfg)
	if err != nil {
		cfg = config.Default()
	}

	exec := native.NewExecution()

	srvc, err := serial.NewService(db, []byte(cfg.Storage.Bucket), exec, exec)
	if err != nil {
		return xerrors.Errorf("failed to create service: %v", err)
	}

	inj.Inject(exec)
	inj.Inject(srvc)

	return nil
}

// OnStop implements node.Initializer.
func (controller) OnStop(node.Injector) error {
	return nil
}

// statusAction prints the status of the ordering service.
//
// - implements node.ActionTemplate
type statusAction struct{}

// Execute implements node.ActionTemplate.
func (statusAction) Execute(ctx node.Context) error {
	var srvc *serial.Service

	err := ctx.Injector.Resolve(&srvc)
	if err != nil {
		return xerrors.Errorf("injector: %v", err)
	}

	fmt.Fprintf(ctx.Out, "index: %d", srvc.GetIndex())

	return nil
}
