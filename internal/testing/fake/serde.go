package fake

import (
	"encoding/json"

	"go.dedis.ch/matchgame/serde"
)

// ContextEngine is a fake implementation of a serde context engine that uses
// the JSON encoding for any format.
//
// - implements serde.ContextEngine
type ContextEngine struct {
	format serde.Format
	err    error
}

// NewContext returns a new context for the good fake format.
func NewContext() serde.Context {
	return NewContextWithFormat(GoodFormat)
}

// NewContextWithFormat returns a new context for the given format.
func NewContextWithFormat(f serde.Format) serde.Context {
	return serde.NewContext(ContextEngine{format: f})
}

// NewBadContext returns a context for the bad fake format whose engine always
// fails.
func NewBadContext() serde.Context {
	return serde.NewContext(ContextEngine{format: BadFormat, err: fakeErr})
}

// GetFormat implements serde.ContextEngine.
func (ctx ContextEngine) GetFormat() serde.Format {
	return ctx.format
}

// Marshal implements serde.ContextEngine.
func (ctx ContextEngine) Marshal(m interface{}) ([]byte, error) {
	if ctx.err != nil {
		return nil, ctx.err
	}

	return json.Marshal(m)
}

// Unmarshal implements serde.ContextEngine.
func (ctx ContextEngine) Unmarshal(data []byte, m interface{}) error {
	if ctx.err != nil {
		return ctx.err
	}

	return json.Unmarshal(data, m)
}
