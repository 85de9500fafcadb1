// Package main implements the node keeping the game statistics of a player.
//
// Unix example:
//
//	# Start the daemon with the configuration of ~/.matchgame
//	matchgame --config ~/.matchgame start
//
//	# Record games and read the statistics
//	matchgame --config ~/.matchgame stats init
//	matchgame --config ~/.matchgame stats update --score 50 --won
//	matchgame --config ~/.matchgame stats notify --score 30
//	matchgame --config ~/.matchgame stats query
//
//	# Expose the statistics and the metrics over HTTP
//	matchgame --config ~/.matchgame proxy start --clientaddr 127.0.0.1:8080
//	matchgame --config ~/.matchgame stats http
//	matchgame --config ~/.matchgame proxy prom
package main

import (
	"fmt"
	"io"
	"os"

	"go.dedis.ch/matchgame/cli/node"
	config "go.dedis.ch/matchgame/config/controller"
	gamestats "go.dedis.ch/matchgame/contracts/gamestats/controller"
	ordering "go.dedis.ch/matchgame/core/ordering/serial/controller"
	db "go.dedis.ch/matchgame/core/store/kv/controller"
	proxy "go.dedis.ch/matchgame/proxy/http/controller"
)

type runConfig struct {
	Channel chan os.Signal
	Writer  io.Writer
}

func main() {
	err := run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	return runWithCfg(args, runConfig{Writer: os.Stdout})
}

func runWithCfg(args []string, cfg runConfig) error {
	builder := node.NewBuilderWithCfg(
		cfg.Channel,
		cfg.Writer,
		config.NewController(),
		db.NewController(),
		ordering.NewController(),
		gamestats.NewController(),
		proxy.NewController(),
	)

	app := builder.Build()

	return app.Run(args)
}
