package json

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/matchgame/contracts/gamestats"
	"go.dedis.ch/matchgame/internal/testing/fake"
	"go.dedis.ch/matchgame/serde"
)

func TestStatsFormat_Encode(t *testing.T) {
	format := statsFormat{}
	ctx := fake.NewContextWithFormat(serde.FormatJSON)

	data, err := format.Encode(ctx, gamestats.GameStats{
		HighScore:   100,
		GamesPlayed: 3,
		GamesWon:    2,
		GamesLost:   1,
	})
	require.NoError(t, err)
	require.Equal(t,
		`{"high_score":100,"games_played":3,"games_won":2,"games_lost":1}`,
		string(data))

	_, err = format.Encode(ctx, fake.Message{})
	require.EqualError(t, err, "unsupported message of type 'fake.Message'")

	_, err = format.Encode(fake.NewBadContext(), gamestats.GameStats{})
	require.EqualError(t, err, fake.Err("failed to marshal"))
}

func TestStatsFormat_Decode(t *testing.T) {
	format := statsFormat{}
	ctx := fake.NewContextWithFormat(serde.FormatJSON)

	msg, err := format.Decode(ctx,
		[]byte(`{"high_score":50,"games_played":2,"games_won":1,"games_lost":1}`))
	require.NoError(t, err)
	require.Equal(t, gamestats.GameStats{
		HighScore:   50,
		GamesPlayed: 2,
		GamesWon:    1,
		GamesLost:   1,
	}, msg)

	_, err = format.Decode(fake.NewBadContext(), []byte(`{}`))
	require.EqualError(t, err, fake.Err("failed to unmarshal"))
}

func TestOperationFormat_Encode(t *testing.T) {
	format := operationFormat{}
	ctx := fake.NewContextWithFormat(serde.FormatJSON)

	data, err := format.Encode(ctx, gamestats.UpdateStats{Score: 50, Won: true})
	require.NoError(t, err)
	require.Equal(t, `{"UpdateStats":{"score":50,"won":true}}`, string(data))

	_, err = format.Encode(ctx, gamestats.NotifyGameCompleted{})
	require.EqualError(t, err,
		"unsupported message of type 'gamestats.NotifyGameCompleted'")

	_, err = format.Encode(fake.NewBadContext(), gamestats.UpdateStats{})
	require.EqualError(t, err, fake.Err("failed to marshal"))
}

func TestOperationFormat_Decode(t *testing.T) {
	format := operationFormat{}
	ctx := fake.NewContextWithFormat(serde.FormatJSON)

	msg, err := format.Decode(ctx, []byte(`{"UpdateStats":{"score":30,"won":false}}`))
	require.NoError(t, err)
	require.Equal(t, gamestats.UpdateStats{Score: 30}, msg)

	msg, err = format.Decode(ctx, []byte(`{"UpdateStats":{"score":4294967295,"won":true}}`))
	require.NoError(t, err)
	require.Equal(t, gamestats.UpdateStats{Score: 4294967295, Won: true}, msg)

	invalid := []string{
		`{"ResetStats":{}}`,
		`{"UpdateStats":{"score":-1,"won":true}}`,
		`{"UpdateStats":{"score":4294967296,"won":true}}`,
		`{"UpdateStats":{"score":1.5,"won":true}}`,
		`{"UpdateStats":{"score":"10","won":true}}`,
		`{"UpdateStats":{"score":10}}`,
		`{"UpdateStats":{"score":10,"won":true,"extra":1}}`,
		`{"NotifyGameCompleted":{"score":10,"won":true}}`,
		`{"UpdateStats":{"score":10,"won":true}} {}`,
		`[]`,
		``,
	}

	for _, in := range invalid {
		_, err = format.Decode(ctx, []byte(in))
		require.Error(t, err, in)
	}

	_, err = format.Decode(fake.NewBadContext(), []byte(`{"UpdateStats":{"score":1,"won":true}}`))
	require.EqualError(t, err, fake.Err("failed to unmarshal"))
}

func TestMessageFormat_Encode(t *testing.T) {
	format := messageFormat{}
	ctx := fake.NewContextWithFormat(serde.FormatJSON)

	data, err := format.Encode(ctx, gamestats.NotifyGameCompleted{Score: 7})
	require.NoError(t, err)
	require.Equal(t, `{"NotifyGameCompleted":{"score":7,"won":false}}`, string(data))

	_, err = format.Encode(ctx, gamestats.UpdateStats{})
	require.EqualError(t, err, "unsupported message of type 'gamestats.UpdateStats'")
}

func TestMessageFormat_Decode(t *testing.T) {
	format := messageFormat{}
	ctx := fake.NewContextWithFormat(serde.FormatJSON)

	msg, err := format.Decode(ctx, []byte(`{"NotifyGameCompleted":{"score":7,"won":true}}`))
	require.NoError(t, err)
	require.Equal(t, gamestats.NotifyGameCompleted{Score: 7, Won: true}, msg)

	_, err = format.Decode(ctx, []byte(`{"UpdateStats":{"score":7,"won":true}}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid payload: ")
}

func TestQueryFormat(t *testing.T) {
	format := queryFormat{}
	ctx := fake.NewContextWithFormat(serde.FormatJSON)

	data, err := format.Encode(ctx, gamestats.GetPlayerStats{})
	require.NoError(t, err)
	require.Equal(t, `{"GetPlayerStats":{}}`, string(data))

	_, err = format.Encode(ctx, gamestats.UpdateStats{})
	require.EqualError(t, err, "unsupported message of type 'gamestats.UpdateStats'")

	msg, err := format.Decode(ctx, data)
	require.NoError(t, err)
	require.Equal(t, gamestats.GetPlayerStats{}, msg)

	msg, err = format.Decode(ctx, []byte(` "GetPlayerStats"`))
	require.NoError(t, err)
	require.Equal(t, gamestats.GetPlayerStats{}, msg)

	_, err = format.Decode(ctx, []byte(`"GetAllStats"`))
	require.EqualError(t, err, "unknown query 'GetAllStats'")

	_, err = format.Decode(ctx, []byte(`{"GetAllStats":{}}`))
	require.Error(t, err)

	_, err = format.Decode(ctx, []byte(`{"GetPlayerStats":{"id":1}}`))
	require.Error(t, err)
}

func TestResponseFormat(t *testing.T) {
	format := responseFormat{}
	ctx := fake.NewContextWithFormat(serde.FormatJSON)

	resp := gamestats.PlayerStats{GameStats: gamestats.GameStats{HighScore: 100, GamesPlayed: 3, GamesWon: 2, GamesLost: 1}}

	data, err := format.Encode(ctx, resp)
	require.NoError(t, err)
	require.Equal(t,
		`{"PlayerStats":{"high_score":100,"games_played":3,"games_won":2,"games_lost":1}}`,
		string(data))

	msg, err := format.Decode(ctx, data)
	require.NoError(t, err)
	require.Equal(t, resp, msg)

	_, err = format.Encode(ctx, gamestats.GameStats{})
	require.EqualError(t, err, "unsupported message of type 'gamestats.GameStats'")

	_, err = format.Decode(ctx, []byte(`{}`))
	require.EqualError(t, err, "unknown response")

	_, err = format.Decode(fake.NewBadContext(), data)
	require.EqualError(t, err, fake.Err("failed to unmarshal"))
}

func TestValidateGame(t *testing.T) {
	require.NoError(t, ValidateGame([]byte(`{"score":10,"won":true}`)))
	require.Error(t, ValidateGame([]byte(`{"score":10}`)))
	require.Error(t, ValidateGame([]byte(`{"score":"10","won":true}`)))
	require.Error(t, ValidateGame([]byte(`not json`)))
}
