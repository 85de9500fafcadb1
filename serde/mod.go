// Package serde defines the primitives to serialize and deserialize (serde)
// the messages exchanged by the components of the node, and the state that
// the contracts persist.
//
// A message does not know how it is encoded. It looks up the format engine
// registered for the format of the context, which means a new encoding can be
// added without touching the data model.
package serde

import "io"

// Format is the identifier of an encoding format.
type Format string

const (
	// FormatJSON is the identifier of the JSON encoding.
	FormatJSON Format = "JSON"
)

// Message is the interface a data model must implement to be serialized.
type Message interface {
	// Serialize returns the bytes of the message encoded with the format of
	// the context.
	Serialize(ctx Context) ([]byte, error)
}

// Factory is the interface to implement to instantiate a data model from its
// serialized form.
type Factory interface {
	// Deserialize returns the message decoded from the data with the format
	// of the context.
	Deserialize(ctx Context, data []byte) (Message, error)
}

// Fingerprinter is the interface to implement to produce a deterministic
// binary representation of a message, used to compute its digest.
type Fingerprinter interface {
	// Fingerprint writes a deterministic representation of the object.
	Fingerprint(writer io.Writer) error
}

// FormatEngine is the interface a format must implement to encode and decode
// a family of messages.
type FormatEngine interface {
	// Encode returns the bytes of the message in the format of the engine.
	Encode(ctx Context, message Message) ([]byte, error)

	// Decode returns the message decoded from the data.
	Decode(ctx Context, data []byte) (Message, error)
}
