package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/matchgame/internal/testing/fake"
	"go.dedis.ch/matchgame/serde"
)

func TestSimpleRegistry_Register(t *testing.T) {
	var registry Registry = NewSimpleRegistry()
	require.Empty(t, registry.Formats())

	registry.Register(serde.FormatJSON, fake.Format{})
	registry.Register(serde.FormatJSON, fake.NewBadFormat())
	registry.Register(serde.Format("BINARY"), fake.Format{})

	require.Equal(t, []serde.Format{"BINARY", serde.FormatJSON}, registry.Formats())
	require.Equal(t, fake.NewBadFormat(), registry.Get(serde.FormatJSON))
}

func TestSimpleRegistry_Missing(t *testing.T) {
	registry := NewSimpleRegistry()

	format := registry.Get(serde.Format("XML"))
	require.NotNil(t, format)

	_, err := format.Encode(serde.NewContext(nil), nil)
	require.EqualError(t, err, "format 'XML' is not implemented (known: [])")

	registry.Register(serde.FormatJSON, fake.Format{})
	format = registry.Get(serde.Format("XML"))

	_, err = format.Decode(serde.NewContext(nil), nil)
	require.EqualError(t, err, "format 'XML' is not implemented (known: [JSON])")
}
