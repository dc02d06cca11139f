package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"jetlumen/go-backend/internal/domains/contracts"
	"jetlumen/go-backend/internal/securestore"
)

// FileStore keeps the state in a pretty-printed JSON file. The version field is
// extra to the {total, lastRecipient} layout and is absent from legacy files.
type FileStore struct {
	mu   sync.Mutex
	path string
}

type fileRecord struct {
	Total         string `json:"total"`
	LastRecipient string `json:"lastRecipient"`
	Version       uint64 `json:"version"`
}

// OpenFileStore creates the file with the initial state when it does not exist.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := s.write(fileRecord{Total: Initial().Total}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Read(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.read()
	if err != nil {
		return Snapshot{}, err
	}
	return rec.snapshot(), nil
}

func (s *FileStore) CompareAndSwap(ctx context.Context, expected uint64, next State) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.read()
	if err != nil {
		return Snapshot{}, err
	}
	if current.Version != expected {
		return Snapshot{}, fmt.Errorf("%w: expected %d, stored %d", contracts.ErrVersionConflict, expected, current.Version)
	}
	rec := fileRecord{Total: next.Total, LastRecipient: next.LastRecipient, Version: expected + 1}
	if err := s.write(rec); err != nil {
		return Snapshot{}, err
	}
	return rec.snapshot(), nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) read() (fileRecord, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fileRecord{Total: Initial().Total}, nil
		}
		return fileRecord{}, err
	}
	var rec fileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fileRecord{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return rec, nil
}

func (s *FileStore) write(rec fileRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return securestore.WriteFileAtomic(s.path, append(data, '\n'))
}

func (r fileRecord) snapshot() Snapshot {
	return Snapshot{
		State:   State{Total: r.Total, LastRecipient: r.LastRecipient},
		Version: r.Version,
	}
}
