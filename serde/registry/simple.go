package registry

import (
	"sort"
	"strings"
	"sync"

	"go.dedis.ch/matchgame/serde"
	"golang.org/x/xerrors"
)

// SimpleRegistry is the default implementation of a format registry. It is
// safe for concurrent use.
//
// - implements registry.Registry
type SimpleRegistry struct {
	sync.RWMutex

	engines map[serde.Format]serde.FormatEngine
}

// NewSimpleRegistry returns a new empty registry.
func NewSimpleRegistry() *SimpleRegistry {
	return &SimpleRegistry{
		engines: make(map[serde.Format]serde.FormatEngine),
	}
}

// Register implements registry.Registry. It registers the engine for the given
// format and replaces any previous one.
func (r *SimpleRegistry) Register(format serde.Format, engine serde.FormatEngine) {
	r.Lock()
	r.engines[format] = engine
	r.Unlock()
}

// Get implements registry.Registry. It returns the engine registered for the
// format, or an engine that fails every request if none is.
func (r *SimpleRegistry) Get(format serde.Format) serde.FormatEngine {
	r.RLock()
	defer r.RUnlock()

	engine := r.engines[format]
	if engine == nil {
		return missingFormat{name: format, known: r.formats()}
	}

	return engine
}

// Formats implements registry.Registry.
func (r *SimpleRegistry) Formats() []serde.Format {
	r.RLock()
	defer r.RUnlock()

	return r.formats()
}

func (r *SimpleRegistry) formats() []serde.Format {
	list := make([]serde.Format, 0, len(r.engines))
	for format := range r.engines {
		list = append(list, format)
	}

	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })

	return list
}

// missingFormat is returned for unknown formats so that callers get a
// meaningful error without checking the registry first.
//
// - implements serde.FormatEngine
type missingFormat struct {
	name  serde.Format
	known []serde.Format
}

// Encode implements serde.FormatEngine. It always returns an error.
func (f missingFormat) Encode(serde.Context, serde.Message) ([]byte, error) {
	return nil, f.err()
}

// Decode implements serde.FormatEngine. It always returns an error.
func (f missingFormat) Decode(serde.Context, []byte) (serde.Message, error) {
	return nil, f.err()
}

func (f missingFormat) err() error {
	names := make([]string, len(f.known))
	for i, format := range f.known {
		names[i] = string(format)
	}

	return xerrors.Errorf("format '%s' is not implemented (known: [%s])",
		f.name, strings.Join(names, ", "))
}
