package gamestats

import (
	"go.dedis.ch/matchgame/serde"
	"go.dedis.ch/matchgame/serde/registry"
	"golang.org/x/xerrors"
)

var (
	operationFormats = registry.NewSimpleRegistry()
	messageFormats   = registry.NewSimpleRegistry()
	queryFormats     = registry.NewSimpleRegistry()
	responseFormats  = registry.NewSimpleRegistry()
)

// RegisterOperationFormat registers the engine for the provided format.
func RegisterOperationFormat(f serde.Format, e serde.FormatEngine) {
	operationFormats.Register(f, e)
}

// RegisterMessageFormat registers the engine for the provided format.
func RegisterMessageFormat(f serde.Format, e serde.FormatEngine) {
	messageFormats.Register(f, e)
}

// RegisterQueryFormat registers the engine for the provided format.
func RegisterQueryFormat(f serde.Format, e serde.FormatEngine) {
	queryFormats.Register(f, e)
}

// RegisterQueryResponseFormat registers the engine for the provided format.
func RegisterQueryResponseFormat(f serde.Format, e serde.FormatEngine) {
	responseFormats.Register(f, e)
}

// Operation is a request submitted directly by the player.
type Operation interface {
	serde.Message

	isOperation()
}

// Message is a notification delivered by another application.
type Message interface {
	serde.Message

	isMessage()
}

// Query is a read-only request.
type Query interface {
	serde.Message

	isQuery()
}

// QueryResponse is the answer to a query.
type QueryResponse interface {
	serde.Message

	isQueryResponse()
}

// UpdateStats is the operation to record the result of a game.
//
// - implements gamestats.Operation
type UpdateStats struct {
	Score uint32
	Won   bool
}

func (UpdateStats) isOperation() {}

// Serialize implements serde.Message.
func (op UpdateStats) Serialize(ctx serde.Context) ([]byte, error) {
	return encode(operationFormats, ctx, op)
}

// NotifyGameCompleted is the message to record the result of a game.
//
// - implements gamestats.Message
type NotifyGameCompleted struct {
	Score uint32
	Won   bool
}

func (NotifyGameCompleted) isMessage() {}

// Serialize implements serde.Message.
func (msg NotifyGameCompleted) Serialize(ctx serde.Context) ([]byte, error) {
	return encode(messageFormats, ctx, msg)
}

// GetPlayerStats is the query to read the statistics.
//
// - implements gamestats.Query
type GetPlayerStats struct{}

func (GetPlayerStats) isQuery() {}

// Serialize implements serde.Message.
func (q GetPlayerStats) Serialize(ctx serde.Context) ([]byte, error) {
	return encode(queryFormats, ctx, q)
}

// PlayerStats is the response holding the statistics.
//
// - implements gamestats.QueryResponse
type PlayerStats struct {
	GameStats
}

func (PlayerStats) isQueryResponse() {}

// Serialize implements serde.Message.
func (resp PlayerStats) Serialize(ctx serde.Context) ([]byte, error) {
	return encode(responseFormats, ctx, resp)
}

func encode(reg registry.Registry, ctx serde.Context, m serde.Message) ([]byte, error) {
	format := reg.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, m)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode: %v", err)
	}

	return data, nil
}

func decode(reg registry.Registry, ctx serde.Context, data []byte) (serde.Message, error) {
	format := reg.Get(ctx.GetFormat())

	msg, err := format.Decode(ctx, data)
	if err != nil {
		return nil, NewDecodeError(err)
	}

	return msg, nil
}

// OperationFactory is the factory to deserialize operations.
//
// - implements serde.Factory
type OperationFactory struct{}

// Deserialize implements serde.Factory.
func (f OperationFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	return f.OperationOf(ctx, data)
}

// OperationOf returns the operation of the data. Any failure is a decode
// error.
func (OperationFactory) OperationOf(ctx serde.Context, data []byte) (Operation, error) {
	msg, err := decode(operationFormats, ctx, data)
	if err != nil {
		return nil, err
	}

	op, ok := msg.(Operation)
	if !ok {
		return nil, NewDecodeError(xerrors.Errorf("invalid operation of type '%T'", msg))
	}

	return op, nil
}

// MessageFactory is the factory to deserialize messages.
//
// - implements serde.Factory
type MessageFactory struct{}

// Deserialize implements serde.Factory.
func (f MessageFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	return f.MessageOf(ctx, data)
}

// MessageOf returns the message of the data. Any failure is a decode error.
func (MessageFactory) MessageOf(ctx serde.Context, data []byte) (Message, error) {
	msg, err := decode(messageFormats, ctx, data)
	if err != nil {
		return nil, err
	}

	m, ok := msg.(Message)
	if !ok {
		return nil, NewDecodeError(xerrors.Errorf("invalid message of type '%T'", msg))
	}

	return m, nil
}

// QueryFactory is the factory to deserialize queries.
//
// - implements serde.Factory
type QueryFactory struct{}

// Deserialize implements serde.Factory.
func (f QueryFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	return f.QueryOf(ctx, data)
}

// QueryOf returns the query of the data. Any failure is a decode error.
func (QueryFactory) QueryOf(ctx serde.Context, data []byte) (Query, error) {
	msg, err := decode(queryFormats, ctx, data)
	if err != nil {
		return nil, err
	}

	q, ok := msg.(Query)
	if !ok {
		return nil, NewDecodeError(xerrors.Errorf("invalid query of type '%T'", msg))
	}

	return q, nil
}

// QueryResponseFactory is the factory to deserialize query responses.
//
// - implements serde.Factory
type QueryResponseFactory struct{}

// Deserialize implements serde.Factory.
func (f QueryResponseFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	return f.ResponseOf(ctx, data)
}

// ResponseOf returns the response of the data. Any failure is a decode error.
func (QueryResponseFactory) ResponseOf(ctx serde.Context, data []byte) (QueryResponse, error) {
	msg, err := decode(responseFormats, ctx, data)
	if err != nil {
		return nil, err
	}

	resp, ok := msg.(QueryResponse)
	if !ok {
		return nil, NewDecodeError(xerrors.Errorf("invalid response of type '%T'", msg))
	}

	return resp, nil
}
