// Package controller implements a controller that opens the key/value database
// of the node.
package controller

import (
	"path/filepath"

	"go.dedis.ch/matchgame"
	"go.dedis.ch/matchgame/cli"
	"go.dedis.ch/matchgame/cli/node"
	"go.dedis.ch/matchgame/config"
	"go.dedis.ch/matchgame/core/store/kv"
	"go.dedis.ch/matchgame/core/store/kv/sqlite"
	"golang.org/x/xerrors"
)

// controller opens the database configured for the node.
//
// - implements node.Initializer
type controller struct{}

// NewController returns a new controller initializer.
func NewController() node.Initializer {
	return controller{}
}

// SetCommands implements node.Initializer. It does not register any command.
func (controller) SetCommands(node.Builder) {}

// OnStart implements node.Initializer. It opens the database in the config
// folder with the backend of the configuration and injects it. The default
// configuration is used when none has been injected.
func (controller) OnStart(flags cli.Flags, inj node.Injector) error {
	var cfg config.Config

	err := inj.Resolve(&cfg)
	if err != nil {
		cfg = config.Default()
	}

	path := filepath.Join(flags.Path("config"), cfg.Storage.File)

	db, err := Open(cfg.Storage.Backend, path)
	if err != nil {
		return xerrors.Errorf("db: %v", err)
	}

	matchgame.Logger.Info().
		Str("backend", cfg.Storage.Backend).
		Str("path", path).
		Msg("database opened")

	inj.Inject(db)

	return nil
}

// OnStop implements node.Initializer. It closes the database.
func (controller) OnStop(inj node.Injector) error {
	var db kv.DB

	err := inj.Resolve(&db)
	if err != nil {
		return xerrors.Errorf("injector: %v", err)
	}

	err = db.Close()
	if err != nil {
		return xerrors.Errorf("while closing db: %v", err)
	}

	return nil
}

// Open opens the database at the path with the given backend.
func Open(backend, path string) (kv.DB, error) {
	switch backend {
	case config.BackendBolt:
		return kv.New(path)
	case config.BackendSQLite:
		return sqlite.New(path)
	default:
		return nil, xerrors.Errorf("unknown backend '%s'", backend)
	}
}
