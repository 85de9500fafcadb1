// Package serial implements an ordering service that executes the transactions
// one after the other on a single node.
//
// Each transaction is executed inside one database transaction. It is
// committed when the execution accepts the transaction and rolled back
// otherwise, so that a refused transaction never leaves a partial state.
package serial

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.dedis.ch/matchgame"
	"go.dedis.ch/matchgame/core"
	"go.dedis.ch/matchgame/core/execution"
	"go.dedis.ch/matchgame/core/ordering"
	"go.dedis.ch/matchgame/core/store"
	"go.dedis.ch/matchgame/core/store/kv"
	"go.dedis.ch/matchgame/core/txn"
	"golang.org/x/xerrors"
)

const watchBufferSize = 16

var (
	indexKey = []byte("index")

	errRejected = xerrors.New("transaction rejected")
)

var promTxs = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "matchgame_serial_transactions_total",
	Help: "total number of executed transactions",
}, []string{"accepted"})

func init() {
	matchgame.PromCollectors = append(matchgame.PromCollectors, promTxs)
}

// Querier is the interface of the component that answers read-only requests.
type Querier interface {
	Query(name string, r store.Readable, data []byte) ([]byte, error)
}

// Service is the serial ordering service.
//
// - implements ordering.Service
type Service struct {
	sync.Mutex

	logger     zerolog.Logger
	db         kv.DB
	bucket     []byte
	metaBucket []byte
	exec       execution.Service
	querier    Querier
	watcher    *core.Watcher[ordering.Event]
	index      uint64
}

// NewService creates a new service that stores the state in the bucket of the
// database. The index of the last accepted transaction is restored from the
// database.
func NewService(db kv.DB, bucket []byte, exec execution.Service, q Querier) (*Service, error) {
	srvc := &Service{
		logger:     matchgame.Logger.With().Str("bucket", string(bucket)).Logger(),
		db:         db,
		bucket:     bucket,
		metaBucket: append(append([]byte{}, bucket...), ":meta"...),
		exec:       exec,
		querier:    q,
		watcher:    core.NewWatcher[ordering.Event](),
	}

	err := db.View(func(tx kv.ReadableTx) error {
		b := tx.GetBucket(srvc.metaBucket)
		if b == nil {
			return nil
		}

		value := b.Get(indexKey)
		if len(value) == 8 {
			srvc.index = binary.LittleEndian.Uint64(value)
		}

		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to read index: %v", err)
	}

	return srvc, nil
}

// GetIndex returns the index of the last accepted transaction.
func (s *Service) GetIndex() uint64 {
	s.Lock()
	defer s.Unlock()

	return s.index
}

// Submit implements ordering.Service. It executes the transaction and commits
// the changes only if the transaction is accepted. A transaction refused by the
// contract is not an error, the result tells why it has been refused.
func (s *Service) Submit(tx txn.Transaction) (execution.Result, error) {
	s.Lock()
	defer s.Unlock()

	var res execution.Result

	index := s.index + 1

	err := s.db.Update(func(wtx kv.WritableTx) error {
		bucket, err := wtx.GetBucketOrCreate(s.bucket)
		if err != nil {
			return xerrors.Errorf("failed to get bucket: %v", err)
		}

		step := execution.Step{
			Current: tx,
			Store:   wtx,
		}

		res, err = s.exec.Execute(kv.NewSnapshot(bucket), step)
		if err != nil {
			return xerrors.Errorf("failed to execute tx: %w", err)
		}

		if !res.Accepted {
			return errRejected
		}

		meta, err := wtx.GetBucketOrCreate(s.metaBucket)
		if err != nil {
			return xerrors.Errorf("failed to get bucket: %v", err)
		}

		buffer := make([]byte, 8)
		binary.LittleEndian.PutUint64(buffer, index)

		err = meta.Set(indexKey, buffer)
		if err != nil {
			return xerrors.Errorf("failed to write index: %v", err)
		}

		return nil
	})

	if xerrors.Is(err, errRejected) {
		promTxs.WithLabelValues("false").Inc()

		s.logger.Info().
			Hex("tx", tx.GetID()).
			Str("reason", res.Message).
			Msg("transaction rejected")

		return res, nil
	}

	if err != nil {
		promTxs.WithLabelValues("false").Inc()

		return execution.Result{}, xerrors.Errorf("failed to commit: %w", err)
	}

	s.index = index

	promTxs.WithLabelValues("true").Inc()

	s.logger.Debug().
		Uint64("index", index).
		Hex("tx", tx.GetID()).
		Msg("transaction accepted")

	s.watcher.Notify(ordering.Event{
		Index:         index,
		TransactionID: tx.GetID(),
		Result:        res,
	})

	return res, nil
}

// Query implements ordering.Service. It forwards the request to the contract
// with a read-only view of the latest committed state.
func (s *Service) Query(contract string, data []byte) ([]byte, error) {
	var resp []byte

	err := s.db.View(func(tx kv.ReadableTx) error {
		var err error

		resp, err = s.querier.Query(contract, kv.NewReadable(tx.GetBucket(s.bucket)), data)

		return err
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to query: %w", err)
	}

	return resp, nil
}

// Watch implements ordering.Service. It returns a channel populated with the
// events of the accepted transactions. Events are dropped when the channel is
// full.
func (s *Service) Watch(ctx context.Context) <-chan ordering.Event {
	ch := make(chan ordering.Event, watchBufferSize)

	obs := &observer{ch: ch, logger: s.logger}
	s.watcher.Add(obs)

	go func() {
		<-ctx.Done()
		s.watcher.Remove(obs)
	}()

	return ch
}

type observer struct {
	ch     chan ordering.Event
	logger zerolog.Logger
}

func (obs *observer) NotifyCallback(event ordering.Event) {
	select {
	case obs.ch <- event:
	default:
		obs.logger.Warn().Msg("watcher is full, dropping event")
	}
}
