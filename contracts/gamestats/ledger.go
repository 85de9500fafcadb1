package gamestats

import (
	"github.com/rs/zerolog"
	"go.dedis.ch/matchgame"
	"golang.org/x/xerrors"
)

// Ledger applies the inputs of the contract to the record of the state store.
// It does not synchronize the calls, the caller must serialize them.
type Ledger struct {
	store  StateStore
	logger zerolog.Logger
}

// NewLedger returns a ledger using the given state store.
func NewLedger(store StateStore) Ledger {
	return Ledger{
		store:  store,
		logger: matchgame.Logger.With().Str("contract", "gamestats").Logger(),
	}
}

// Initialize persists the zero record. It resets the statistics if they
// already exist.
func (l Ledger) Initialize() error {
	err := l.store.Store(GameStats{})
	if err != nil {
		return NewStorageError(err)
	}

	return nil
}

// RecordGameResult updates the record with the result of a game and returns
// the new record. Nothing is persisted if the update fails.
func (l Ledger) RecordGameResult(score uint32, won bool) (GameStats, error) {
	current := l.QueryStats()

	next, err := current.Record(score, won)
	if err != nil {
		return current, xerrors.Errorf("failed to record game: %w", err)
	}

	err = l.store.Store(next)
	if err != nil {
		return current, NewStorageError(err)
	}

	return next, nil
}

// ApplyOperation applies an operation submitted by the player.
func (l Ledger) ApplyOperation(op Operation) (GameStats, error) {
	switch in := op.(type) {
	case UpdateStats:
		return l.RecordGameResult(in.Score, in.Won)
	default:
		return GameStats{}, NewDecodeError(xerrors.Errorf("unknown operation '%T'", op))
	}
}

// ApplyMessage applies a message delivered by another application. The origin
// of the message is not verified here.
func (l Ledger) ApplyMessage(msg Message) (GameStats, error) {
	switch in := msg.(type) {
	case NotifyGameCompleted:
		return l.RecordGameResult(in.Score, in.Won)
	default:
		return GameStats{}, NewDecodeError(xerrors.Errorf("unknown message '%T'", msg))
	}
}

// QueryStats returns the current record. A missing or unreadable record is
// reported as the zero record.
func (l Ledger) QueryStats() GameStats {
	stats, err := l.store.Load()
	if xerrors.Is(err, ErrStateNotFound) {
		return GameStats{}
	}

	if err != nil {
		l.logger.Warn().Err(err).Msg("state unreadable, using zero record")
		return GameStats{}
	}

	return stats
}

// Query answers a read-only query.
func (l Ledger) Query(q Query) (QueryResponse, error) {
	switch q.(type) {
	case GetPlayerStats:
		return PlayerStats{GameStats: l.QueryStats()}, nil
	default:
		return nil, NewDecodeError(xerrors.Errorf("unknown query '%T'", q))
	}
}
