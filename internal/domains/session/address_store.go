package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"

	"jetlumen/go-backend/internal/securestore"
)

// PublicKeyKey is the field the connected address is remembered under.
const PublicKeyKey = "jetlumen_publicKey"

// AddressStore remembers the last connected address across restarts.
type AddressStore interface {
	Load() (string, error)
	Save(address string) error
	Clear() error
}

type FileAddressStore struct {
	mu   sync.Mutex
	path string
}

func NewFileAddressStore(path string) *FileAddressStore {
	return &FileAddressStore{path: path}
}

func (s *FileAddressStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.readLocked()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(values[PublicKeyKey]), nil
}

func (s *FileAddressStore) Save(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.readLocked()
	if err != nil {
		return err
	}
	values[PublicKeyKey] = address
	return s.writeLocked(values)
}

func (s *FileAddressStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.readLocked()
	if err != nil {
		return err
	}
	if _, ok := values[PublicKeyKey]; !ok {
		return nil
	}
	delete(values, PublicKeyKey)
	return s.writeLocked(values)
}

func (s *FileAddressStore) readLocked() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (s *FileAddressStore) writeLocked(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	return securestore.WriteFileAtomic(s.path, data)
}

// MemoryAddressStore is used when no data directory is configured.
type MemoryAddressStore struct {
	mu      sync.Mutex
	address string
}

func (s *MemoryAddressStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address, nil
}

func (s *MemoryAddressStore) Save(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = address
	return nil
}

func (s *MemoryAddressStore) Clear() error {
	return s.Save("")
}
