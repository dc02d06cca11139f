package mirror

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"jetlumen/go-backend/internal/domains/contracts"
)

const (
	createStateTable = `CREATE TABLE IF NOT EXISTS jetlumen_state (
	id SMALLINT PRIMARY KEY,
	total TEXT NOT NULL,
	last_recipient TEXT NOT NULL,
	version BIGINT NOT NULL
)`
	seedStateRow  = `INSERT INTO jetlumen_state (id, total, last_recipient, version) VALUES (1, $1, '', 0) ON CONFLICT (id) DO NOTHING`
	selectState   = `SELECT total, last_recipient, version FROM jetlumen_state WHERE id = 1`
	swapStateStmt = `UPDATE jetlumen_state SET total = $1, last_recipient = $2, version = version + 1 WHERE id = 1 AND version = $3 RETURNING version`
)

// PostgresStore keeps the state as a single row guarded by its version column.
type PostgresStore struct {
	db *sql.DB
}

func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, createStateTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	if _, err := db.ExecContext(ctx, seedStateRow, Initial().Total); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed state row: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Read(ctx context.Context) (Snapshot, error) {
	var (
		snap    Snapshot
		version int64
	)
	err := s.db.QueryRowContext(ctx, selectState).Scan(&snap.State.Total, &snap.State.LastRecipient, &version)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Version = uint64(version)
	return snap, nil
}

func (s *PostgresStore) CompareAndSwap(ctx context.Context, expected uint64, next State) (Snapshot, error) {
	var version int64
	err := s.db.QueryRowContext(ctx, swapStateStmt, next.Total, next.LastRecipient, int64(expected)).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%w: expected %d", contracts.ErrVersionConflict, expected)
	}
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{State: next, Version: uint64(version)}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
