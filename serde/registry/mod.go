// Package registry defines the format registry mechanism.
//
// Each family of messages owns a registry where the format engines are
// registered, usually from the init function of the package implementing the
// format. The default implementation never returns a nil engine: an unknown
// format resolves to an engine that always fails.
package registry

import (
	"go.dedis.ch/matchgame/serde"
)

// Registry is an interface to register and get format engines for a specific
// format.
type Registry interface {
	// Register takes a format and its engine and it registers them so that the
	// engine can be looked up later.
	Register(serde.Format, serde.FormatEngine)

	// Get returns the engine associated with the format.
	Get(serde.Format) serde.FormatEngine

	// Formats returns the sorted list of registered formats.
	Formats() []serde.Format
}
