package gamestats

import (
	"fmt"
	"math"

	"go.dedis.ch/matchgame/serde"
	"go.dedis.ch/matchgame/serde/registry"
	"golang.org/x/xerrors"
)

var statsFormats = registry.NewSimpleRegistry()

// RegisterStatsFormat registers the engine for the provided format.
func RegisterStatsFormat(f serde.Format, e serde.FormatEngine) {
	statsFormats.Register(f, e)
}

// GameStats is the record of the games played by the player.
//
// - implements serde.Message
type GameStats struct {
	HighScore   uint32
	GamesPlayed uint32
	GamesWon    uint32
	GamesLost   uint32
}

// Record returns the statistics updated with the result of a game. The
// receiver is not modified. An error is returned when a counter would
// overflow, in which case no field is updated.
func (s GameStats) Record(score uint32, won bool) (GameStats, error) {
	if s.GamesPlayed == math.MaxUint32 {
		return s, xerrors.Errorf("games played: %w", ErrCounterOverflow)
	}

	next := s

	if score > next.HighScore {
		next.HighScore = score
	}

	next.GamesPlayed++

	if won {
		if next.GamesWon == math.MaxUint32 {
			return s, xerrors.Errorf("games won: %w", ErrCounterOverflow)
		}

		next.GamesWon++
	} else {
		if next.GamesLost == math.MaxUint32 {
			return s, xerrors.Errorf("games lost: %w", ErrCounterOverflow)
		}

		next.GamesLost++
	}

	return next, nil
}

// String returns a human-readable representation of the statistics.
func (s GameStats) String() string {
	return fmt.Sprintf("high_score=%d,games_played=%d,games_won=%d,games_lost=%d",
		s.HighScore, s.GamesPlayed, s.GamesWon, s.GamesLost)
}

// Serialize implements serde.Message.
func (s GameStats) Serialize(ctx serde.Context) ([]byte, error) {
	format := statsFormats.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, s)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode stats: %v", err)
	}

	return data, nil
}

// StatsFactory is the factory to deserialize the persisted statistics.
//
// - implements serde.Factory
type StatsFactory struct{}

// Deserialize implements serde.Factory.
func (f StatsFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	return f.StatsOf(ctx, data)
}

// StatsOf returns the statistics of the data if appropriate, otherwise an
// error.
func (StatsFactory) StatsOf(ctx serde.Context, data []byte) (GameStats, error) {
	format := statsFormats.Get(ctx.GetFormat())

	msg, err := format.Decode(ctx, data)
	if err != nil {
		return GameStats{}, xerrors.Errorf("failed to decode stats: %v", err)
	}

	stats, ok := msg.(GameStats)
	if !ok {
		return GameStats{}, xerrors.Errorf("invalid stats of type '%T'", msg)
	}

	return stats, nil
}
