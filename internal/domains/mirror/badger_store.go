package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"jetlumen/go-backend/internal/domains/contracts"
)

var stateKey = []byte("jetlumen:state")

type BadgerStore struct {
	db *badger.DB
}

type badgerRecord struct {
	Total         string `msgpack:"total"`
	LastRecipient string `msgpack:"last_recipient"`
	Version       uint64 `msgpack:"version"`
}

// OpenBadgerStore opens (or creates) a badger database in dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %s: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Read(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	err := s.db.View(func(txn *badger.Txn) error {
		rec, err := loadBadgerRecord(txn)
		if err != nil {
			return err
		}
		snap = rec.snapshot()
		return nil
	})
	return snap, err
}

func (s *BadgerStore) CompareAndSwap(ctx context.Context, expected uint64, next State) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	err := s.db.Update(func(txn *badger.Txn) error {
		current, err := loadBadgerRecord(txn)
		if err != nil {
			return err
		}
		if current.Version != expected {
			return fmt.Errorf("%w: expected %d, stored %d", contracts.ErrVersionConflict, expected, current.Version)
		}
		rec := badgerRecord{Total: next.Total, LastRecipient: next.LastRecipient, Version: expected + 1}
		payload, err := msgpack.Marshal(rec)
		if err != nil {
			return err
		}
		if err := txn.Set(stateKey, payload); err != nil {
			return err
		}
		snap = rec.snapshot()
		return nil
	})
	if errors.Is(err, badger.ErrConflict) {
		return Snapshot{}, fmt.Errorf("%w: %v", contracts.ErrVersionConflict, err)
	}
	return snap, err
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func loadBadgerRecord(txn *badger.Txn) (badgerRecord, error) {
	item, err := txn.Get(stateKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return badgerRecord{Total: Initial().Total}, nil
	}
	if err != nil {
		return badgerRecord{}, err
	}
	var rec badgerRecord
	err = item.Value(func(val []byte) error {
		return msgpack.Unmarshal(val, &rec)
	})
	return rec, err
}

func (r badgerRecord) snapshot() Snapshot {
	return Snapshot{
		State:   State{Total: r.Total, LastRecipient: r.LastRecipient},
		Version: r.Version,
	}
}
