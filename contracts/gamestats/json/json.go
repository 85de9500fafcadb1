// Package json implements the JSON formats of the game statistics contract.
//
// Operations, messages, queries and responses are externally tagged objects,
// for instance {"UpdateStats":{"score":50,"won":true}}. Operations and
// messages are validated against a JSON schema before being decoded.
package json

import (
	"bytes"
	"encoding/json"

	"go.dedis.ch/matchgame/contracts/gamestats"
	"go.dedis.ch/matchgame/serde"
	"golang.org/x/xerrors"
)

func init() {
	gamestats.RegisterStatsFormat(serde.FormatJSON, statsFormat{})
	gamestats.RegisterOperationFormat(serde.FormatJSON, operationFormat{})
	gamestats.RegisterMessageFormat(serde.FormatJSON, messageFormat{})
	gamestats.RegisterQueryFormat(serde.FormatJSON, queryFormat{})
	gamestats.RegisterQueryResponseFormat(serde.FormatJSON, responseFormat{})
}

// StatsJSON is the JSON message of the statistics.
type StatsJSON struct {
	HighScore   uint32 `json:"high_score"`
	GamesPlayed uint32 `json:"games_played"`
	GamesWon    uint32 `json:"games_won"`
	GamesLost   uint32 `json:"games_lost"`
}

// GameJSON is the JSON message of a game result.
type GameJSON struct {
	Score uint32 `json:"score"`
	Won   bool   `json:"won"`
}

// OperationJSON is the JSON message of an operation.
type OperationJSON struct {
	UpdateStats *GameJSON `json:",omitempty"`
}

// MessageJSON is the JSON message of a message.
type MessageJSON struct {
	NotifyGameCompleted *GameJSON `json:",omitempty"`
}

// QueryJSON is the JSON message of a query.
type QueryJSON struct {
	GetPlayerStats *struct{} `json:",omitempty"`
}

// ResponseJSON is the JSON message of a query response.
type ResponseJSON struct {
	PlayerStats *StatsJSON `json:",omitempty"`
}

// statsFormat is the format engine of the persisted statistics.
//
// - implements serde.FormatEngine
type statsFormat struct{}

// Encode implements serde.FormatEngine.
func (statsFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	stats, ok := msg.(gamestats.GameStats)
	if !ok {
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	data, err := ctx.Marshal(newStatsJSON(stats))
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return data, nil
}

// Decode implements serde.FormatEngine.
func (statsFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	m := StatsJSON{}

	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	return m.toStats(), nil
}

// operationFormat is the format engine of the operations.
//
// - implements serde.FormatEngine
type operationFormat struct{}

// Encode implements serde.FormatEngine.
func (operationFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	var m OperationJSON

	switch in := msg.(type) {
	case gamestats.UpdateStats:
		m.UpdateStats = &GameJSON{Score: in.Score, Won: in.Won}
	default:
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return data, nil
}

// Decode implements serde.FormatEngine.
func (operationFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	err := validate(operationSchema, data)
	if err != nil {
		return nil, err
	}

	m := OperationJSON{}

	err = ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	if m.UpdateStats == nil {
		return nil, xerrors.New("unknown operation")
	}

	return gamestats.UpdateStats{Score: m.UpdateStats.Score, Won: m.UpdateStats.Won}, nil
}

// messageFormat is the format engine of the messages.
//
// - implements serde.FormatEngine
type messageFormat struct{}

// Encode implements serde.FormatEngine.
func (messageFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	var m MessageJSON

	switch in := msg.(type) {
	case gamestats.NotifyGameCompleted:
		m.NotifyGameCompleted = &GameJSON{Score: in.Score, Won: in.Won}
	default:
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return data, nil
}

// Decode implements serde.FormatEngine.
func (messageFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	err := validate(messageSchema, data)
	if err != nil {
		return nil, err
	}

	m := MessageJSON{}

	err = ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	if m.NotifyGameCompleted == nil {
		return nil, xerrors.New("unknown message")
	}

	g := m.NotifyGameCompleted

	return gamestats.NotifyGameCompleted{Score: g.Score, Won: g.Won}, nil
}

// queryFormat is the format engine of the queries. The unit form
// "GetPlayerStats" is accepted as well as the object form.
//
// - implements serde.FormatEngine
type queryFormat struct{}

// Encode implements serde.FormatEngine.
func (queryFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	var m QueryJSON

	switch msg.(type) {
	case gamestats.GetPlayerStats:
		m.GetPlayerStats = &struct{}{}
	default:
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return data, nil
}

// Decode implements serde.FormatEngine.
func (queryFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	trimmed := bytes.TrimSpace(data)

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var name string

		err := ctx.Unmarshal(trimmed, &name)
		if err != nil {
			return nil, xerrors.Errorf("failed to unmarshal: %v", err)
		}

		if name != "GetPlayerStats" {
			return nil, xerrors.Errorf("unknown query '%s'", name)
		}

		return gamestats.GetPlayerStats{}, nil
	}

	err := validate(querySchema, data)
	if err != nil {
		return nil, err
	}

	m := QueryJSON{}

	err = ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	if m.GetPlayerStats == nil {
		return nil, xerrors.New("unknown query")
	}

	return gamestats.GetPlayerStats{}, nil
}

// responseFormat is the format engine of the query responses.
//
// - implements serde.FormatEngine
type responseFormat struct{}

// Encode implements serde.FormatEngine.
func (responseFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	var m ResponseJSON

	switch in := msg.(type) {
	case gamestats.PlayerStats:
		stats := newStatsJSON(in.GameStats)
		m.PlayerStats = &stats
	default:
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return data, nil
}

// Decode implements serde.FormatEngine.
func (responseFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	m := ResponseJSON{}

	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	if m.PlayerStats == nil {
		return nil, xerrors.New("unknown response")
	}

	return gamestats.PlayerStats{GameStats: m.PlayerStats.toStats()}, nil
}

func newStatsJSON(s gamestats.GameStats) StatsJSON {
	return StatsJSON{
		HighScore:   s.HighScore,
		GamesPlayed: s.GamesPlayed,
		GamesWon:    s.GamesWon,
		GamesLost:   s.GamesLost,
	}
}

func (m StatsJSON) toStats() gamestats.GameStats {
	return gamestats.GameStats{
		HighScore:   m.HighScore,
		GamesPlayed: m.GamesPlayed,
		GamesWon:    m.GamesWon,
		GamesLost:   m.GamesLost,
	}
}

// ValidateGame returns an error if the data is not a game result object, as
// sent by the HTTP clients.
func ValidateGame(data []byte) error {
	return validate(gameSchema, data)
}

// decodeAny decodes the data as a generic JSON value, which is the input of
// the schema validation.
func decodeAny(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v interface{}

	err := dec.Decode(&v)
	if err != nil {
		return nil, xerrors.Errorf("invalid json: %v", err)
	}

	if dec.More() {
		return nil, xerrors.New("invalid json: trailing data")
	}

	return v, nil
}
