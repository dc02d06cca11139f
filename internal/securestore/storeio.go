package securestore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// ReadSealed opens the vault at path and decodes its payload into v.
func ReadSealed(path, passphrase, purpose string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	plaintext, err := Open(passphrase, purpose, raw)
	if err != nil {
		return err
	}
	defer clear(plaintext)
	if err := msgpack.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// WriteSealed encodes v, seals it and atomically replaces path.
func WriteSealed(path, passphrase, purpose string, v any) error {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	defer clear(payload)
	sealed, err := Seal(passphrase, purpose, payload)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, sealed)
}

// WriteFileAtomic writes data to a synced temp file in path's directory and
// renames it into place. The directory is created 0700 and the file is 0600.
func WriteFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = tmp.Chmod(0o600); err != nil {
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
