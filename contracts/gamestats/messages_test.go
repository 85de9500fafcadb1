package gamestats

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/matchgame/internal/testing/fake"
	"go.dedis.ch/matchgame/serde"
)

func init() {
	RegisterOperationFormat(fake.GoodFormat, fake.Format{Msg: UpdateStats{Score: 1}})
	RegisterOperationFormat(fake.BadFormat, fake.NewBadFormat())
	RegisterOperationFormat(serde.Format("BAD_TYPE"), fake.Format{Msg: NotifyGameCompleted{}})

	RegisterMessageFormat(fake.GoodFormat, fake.Format{Msg: NotifyGameCompleted{Score: 2}})
	RegisterMessageFormat(fake.BadFormat, fake.NewBadFormat())
	RegisterMessageFormat(serde.Format("BAD_TYPE"), fake.Format{Msg: UpdateStats{}})

	RegisterQueryFormat(fake.GoodFormat, fake.Format{Msg: GetPlayerStats{}})
	RegisterQueryFormat(fake.BadFormat, fake.NewBadFormat())
	RegisterQueryFormat(serde.Format("BAD_TYPE"), fake.Format{Msg: UpdateStats{}})

	RegisterQueryResponseFormat(fake.GoodFormat, fake.Format{Msg: PlayerStats{}})
	RegisterQueryResponseFormat(fake.BadFormat, fake.NewBadFormat())
	RegisterQueryResponseFormat(serde.Format("BAD_TYPE"), fake.Format{Msg: GameStats{}})
}

func TestMessages_Serialize(t *testing.T) {
	msgs := []serde.Message{
		UpdateStats{},
		NotifyGameCompleted{},
		GetPlayerStats{},
		PlayerStats{},
	}

	for _, msg := range msgs {
		data, err := msg.Serialize(fake.NewContext())
		require.NoError(t, err)
		require.Equal(t, "fake format", string(data))

		_, err = msg.Serialize(fake.NewBadContext())
		require.EqualError(t, err, fake.Err("failed to encode"))
	}
}

func TestOperationFactory_Deserialize(t *testing.T) {
	fac := OperationFactory{}

	msg, err := fac.Deserialize(fake.NewContext(), nil)
	require.NoError(t, err)
	require.Equal(t, UpdateStats{Score: 1}, msg)

	_, err = fac.Deserialize(fake.NewBadContext(), nil)
	require.EqualError(t, err, fake.Err("decode error"))
	require.True(t, IsDecodeError(err))

	_, err = fac.Deserialize(fake.NewContextWithFormat(serde.Format("BAD_TYPE")), nil)
	require.EqualError(t, err,
		"decode error: invalid operation of type 'gamestats.NotifyGameCompleted'")
	require.True(t, IsDecodeError(err))

	_, err = fac.Deserialize(fake.NewContextWithFormat(serde.Format("UNKNOWN")), nil)
	require.True(t, IsDecodeError(err))
}

func TestMessageFactory_Deserialize(t *testing.T) {
	fac := MessageFactory{}

	msg, err := fac.Deserialize(fake.NewContext(), nil)
	require.NoError(t, err)
	require.Equal(t, NotifyGameCompleted{Score: 2}, msg)

	_, err = fac.Deserialize(fake.NewBadContext(), nil)
	require.EqualError(t, err, fake.Err("decode error"))

	_, err = fac.Deserialize(fake.NewContextWithFormat(serde.Format("BAD_TYPE")), nil)
	require.EqualError(t, err,
		"decode error: invalid message of type 'gamestats.UpdateStats'")
}

func TestQueryFactory_Deserialize(t *testing.T) {
	fac := QueryFactory{}

	msg, err := fac.Deserialize(fake.NewContext(), nil)
	require.NoError(t, err)
	require.Equal(t, GetPlayerStats{}, msg)

	_, err = fac.Deserialize(fake.NewBadContext(), nil)
	require.EqualError(t, err, fake.Err("decode error"))

	_, err = fac.Deserialize(fake.NewContextWithFormat(serde.Format("BAD_TYPE")), nil)
	require.EqualError(t, err,
		"decode error: invalid query of type 'gamestats.UpdateStats'")
}

func TestQueryResponseFactory_Deserialize(t *testing.T) {
	fac := QueryResponseFactory{}

	msg, err := fac.Deserialize(fake.NewContext(), nil)
	require.NoError(t, err)
	require.Equal(t, PlayerStats{}, msg)

	_, err = fac.Deserialize(fake.NewBadContext(), nil)
	require.EqualError(t, err, fake.Err("decode error"))

	_, err = fac.Deserialize(fake.NewContextWithFormat(serde.Format("BAD_TYPE")), nil)
	require.EqualError(t, err,
		"decode error: invalid response of type 'gamestats.GameStats'")
}
