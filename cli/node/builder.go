// This file contains the implementation of a CLI builder.

package node

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	urfave "github.com/urfave/cli/v2"
	"go.dedis.ch/matchgame"
	"go.dedis.ch/matchgame/cli"
	"go.dedis.ch/matchgame/cli/ucli"
	"golang.org/x/xerrors"
)

// CLIBuilder is an application builder that will build a CLI to start and
// control a node.
//
// - implements node.Builder
// - implements cli.Builder
type CLIBuilder struct {
	cli.Builder

	daemonFactory DaemonFactory
	injector      Injector
	actions       *actionMap
	startFlags    []cli.Flag
	inits         []Initializer
	writer        io.Writer

	// In production, the daemon is stopped via SIGTERM. In case of testing, the
	// channel will be closed instead, because of instability.
	enableSignal bool
	sigs         chan os.Signal
}

const (
	// AppName is the name of the application.
	AppName = "matchgame"

	// DefaultConfigDir is the folder used when the config flag is not set.
	DefaultConfigDir = ".matchgame"
)

// NewBuilder returns a new empty builder.
func NewBuilder(inits ...Initializer) *CLIBuilder {
	return NewBuilderWithCfg(nil, nil, inits...)
}

// NewBuilderWithCfg returns a new empty builder with specific configurations.
func NewBuilderWithCfg(sigs chan os.Signal, out io.Writer, inits ...Initializer) *CLIBuilder {
	if out == nil {
		out = os.Stdout
	}

	enabled := false

	if sigs == nil {
		sigs = make(chan os.Signal, 1)
		enabled = true
	}

	injector := NewInjector()

	actions := &actionMap{}

	factory := socketFactory{
		injector: injector,
		actions:  actions,
		out:      out,
	}

	builder := ucli.NewBuilder(AppName, nil, cli.StringFlag{
		Name:  "config",
		Usage: "path to the config folder",
		Value: DefaultConfigDir,
	})

	return &CLIBuilder{
		Builder:       builder,
		injector:      injector,
		actions:       actions,
		daemonFactory: factory,
		enableSignal:  enabled,
		sigs:          sigs,
		inits:         inits,
		writer:        out,
	}
}

// SetStartFlags implements node.Builder. It appends the given flags to the list
// of flags that will be used to create the start command.
func (b *CLIBuilder) SetStartFlags(flags ...cli.Flag) {
	b.startFlags = append(b.startFlags, flags...)
}

// MakeAction implements node.Builder. The returned action packs the flags of
// the command line into a request executed by the daemon.
func (b *CLIBuilder) MakeAction(tmpl ActionTemplate) cli.Action {
	index := b.actions.Set(tmpl)

	return func(c cli.Flags) error {
		client, err := b.daemonFactory.ClientFromContext(c)
		if err != nil {
			return xerrors.Errorf("couldn't make client: %v", err)
		}

		req := NewRequest(index, collectFlags(c.(*urfave.Context)))

		err = client.Send(req)
		if err != nil {
			return xerrors.Errorf("couldn't send action: %v", err)
		}

		return nil
	}
}

// collectFlags gathers the values of the command and of its parents. A flag
// of a subcommand shadows the one of the same name higher in the lineage.
func collectFlags(ctx *urfave.Context) FlagSet {
	fset := make(FlagSet)

	for _, level := range ctx.Lineage() {
		var flags []urfave.Flag

		if level.Command != nil {
			flags = append(flags, level.Command.Flags...)
		}
		if level.App != nil {
			flags = append(flags, level.App.Flags...)
		}

		for _, flag := range flags {
			names := flag.Names()
			if len(names) == 0 {
				continue
			}

			_, found := fset[names[0]]
			if found {
				continue
			}

			fset[names[0]] = flagValue(level.Value(names[0]))
		}
	}

	return fset
}

func flagValue(v interface{}) interface{} {
	slice, ok := v.(urfave.StringSlice)
	if ok {
		// The slice type does not marshal to a JSON array.
		return slice.Value()
	}

	return v
}

// Build implements node.Builder. It returns the application.
func (b *CLIBuilder) Build() cli.Application {
	for _, controller := range b.inits {
		controller.SetCommands(b)
	}

	cmd := b.SetCommand("start")
	cmd.SetDescription("start the daemon")
	cmd.SetFlags(b.startFlags...)
	cmd.SetAction(b.start)

	return b.Builder.Build()
}

func (b *CLIBuilder) start(flags cli.Flags) error {
	if b.enableSignal {
		signal.Notify(b.sigs, syscall.SIGINT, syscall.SIGTERM)

		defer signal.Stop(b.sigs)
	}

	dir := flags.Path("config")
	if dir != "" {
		err := os.MkdirAll(dir, 0700)
		if err != nil {
			return xerrors.Errorf("couldn't make path: %v", err)
		}
	}

	daemon, err := b.daemonFactory.DaemonFromContext(flags)
	if err != nil {
		return xerrors.Errorf("couldn't make daemon: %v", err)
	}

	for _, controller := range b.inits {
		err = controller.OnStart(flags, b.injector)
		if err != nil {
			return xerrors.Errorf("couldn't run the controller: %v", err)
		}
	}

	// Daemon is started after the controllers so that everything has started
	// when the daemon is available.
	err = daemon.Listen()
	if err != nil {
		return xerrors.Errorf("couldn't start the daemon: %v", err)
	}

	defer daemon.Close()

	matchgame.Logger.Info().Str("config", dir).Msg("daemon is ready")

	<-b.sigs
	signal.Stop(b.sigs)

	// Controllers are stopped in reverse order so that high level components
	// are stopped before lower level ones (i.e. stop a service before the
	// database to avoid errors).
	for i := len(b.inits) - 1; i >= 0; i-- {
		err = b.inits[i].OnStop(b.injector)
		if err != nil {
			return xerrors.Errorf("couldn't stop controller: %v", err)
		}
	}

	matchgame.Logger.Info().Msg("daemon has been stopped")

	return nil
}

// actionMap assigns an index to each action so that a request can name it.
type actionMap struct {
	list []ActionTemplate
}

func (m *actionMap) Set(a ActionTemplate) uint16 {
	m.list = append(m.list, a)
	return uint16(len(m.list) - 1)
}

func (m *actionMap) Get(index uint16) ActionTemplate {
	if int(index) >= len(m.list) {
		return nil
	}

	return m.list[index]
}
