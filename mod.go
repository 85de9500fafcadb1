// Package matchgame implements a node hosting a native contract that keeps
// track of the game statistics of a player.
//
// The root package only holds the global tools shared by every component,
// namely the logger and the list of Prometheus collectors.
package matchgame

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var logout = zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance. The level can be updated
// with the node configuration.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	With().Caller().Logger().
	Level(zerolog.InfoLevel)

// PromCollectors is the list of Prometheus collectors that the components
// provide. They are registered when the Prometheus handler is enabled on the
// proxy.
var PromCollectors []prometheus.Collector

// SetLogLevel updates the level of the global logger.
func SetLogLevel(level zerolog.Level) {
	Logger = Logger.Level(level)
}
