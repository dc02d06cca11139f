// Package securestore seals small secrets (the wallet keystore) under a
// password with argon2id and XChaCha20-Poly1305, and writes files atomically.
package securestore

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	formatVersion = 2
	saltSize      = 16
	kdfArgon2id   = "argon2id"
)

// magic prefixes every sealed file so plaintext state is never mistaken for a vault.
var magic = []byte("JLVAULT\x02")

var (
	ErrAuthFailed = errors.New("securestore authentication failed")
	ErrInvalid    = errors.New("securestore envelope is invalid")
	ErrPlaintext  = errors.New("securestore data is not encrypted")
)

// KDFParams are the argon2id cost settings stored with each envelope.
type KDFParams struct {
	Time     uint32 `msgpack:"t"`
	MemoryKB uint32 `msgpack:"m"`
	Threads  uint8  `msgpack:"p"`
}

// DefaultKDF is what Seal writes and the floor Open accepts. MaxKDF is the
// ceiling, so a tampered envelope cannot make Open burn unbounded memory.
var (
	DefaultKDF = KDFParams{Time: 2, MemoryKB: 64 * 1024, Threads: 1}
	MaxKDF     = KDFParams{Time: 10, MemoryKB: 512 * 1024, Threads: 16}
)

func (p KDFParams) within(floor, ceiling KDFParams) bool {
	return p.Time >= floor.Time && p.Time <= ceiling.Time &&
		p.MemoryKB >= floor.MemoryKB && p.MemoryKB <= ceiling.MemoryKB &&
		p.Threads >= max(floor.Threads, 1) && p.Threads <= ceiling.Threads
}

// Envelope binds Purpose as additional data, so a keystore sealed for one
// network cannot be replayed as another file.
type Envelope struct {
	Version    uint8     `msgpack:"v"`
	Purpose    string    `msgpack:"purpose"`
	KDF        string    `msgpack:"kdf"`
	Params     KDFParams `msgpack:"params"`
	Salt       []byte    `msgpack:"salt"`
	Nonce      []byte    `msgpack:"nonce"`
	Ciphertext []byte    `msgpack:"ct"`
}

// Seal encrypts plaintext and returns the framed file contents.
func Seal(passphrase, purpose string, plaintext []byte) ([]byte, error) {
	env, err := SealEnvelope(passphrase, purpose, plaintext)
	if err != nil {
		return nil, err
	}
	body, err := msgpack.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return append(append([]byte{}, magic...), body...), nil
}

func SealEnvelope(passphrase, purpose string, plaintext []byte) (*Envelope, error) {
	env := &Envelope{
		Version: formatVersion,
		Purpose: strings.TrimSpace(purpose),
		KDF:     kdfArgon2id,
		Params:  DefaultKDF,
		Salt:    make([]byte, saltSize),
		Nonce:   make([]byte, chacha20poly1305.NonceSizeX),
	}
	if _, err := rand.Read(env.Salt); err != nil {
		return nil, err
	}
	if _, err := rand.Read(env.Nonce); err != nil {
		return nil, err
	}
	aead, wipe, err := newAEAD(passphrase, env)
	if err != nil {
		return nil, err
	}
	defer wipe()
	env.Ciphertext = aead.Seal(nil, env.Nonce, plaintext, []byte(env.Purpose))
	return env, nil
}

// Open returns ErrPlaintext for unframed data, ErrInvalid for a malformed
// envelope or one whose KDF costs fall outside DefaultKDF..MaxKDF and ErrAuthFailed for a wrong passphrase or purpose.
func Open(passphrase, purpose string, data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, magic) {
		return nil, ErrPlaintext
	}
	var env Envelope
	if err := msgpack.Unmarshal(data[len(magic):], &env); err != nil {
		return nil, ErrInvalid
	}
	return OpenEnvelope(passphrase, purpose, &env)
}

func OpenEnvelope(passphrase, purpose string, env *Envelope) ([]byte, error) {
	switch {
	case env == nil, env.Version != formatVersion, env.KDF != kdfArgon2id:
		return nil, ErrInvalid
	case !env.Params.within(DefaultKDF, MaxKDF):
		return nil, ErrInvalid
	case len(env.Nonce) != chacha20poly1305.NonceSizeX, len(env.Salt) != saltSize:
		return nil, ErrInvalid
	case env.Purpose != strings.TrimSpace(purpose):
		return nil, ErrAuthFailed
	}
	aead, wipe, err := newAEAD(passphrase, env)
	if err != nil {
		return nil, err
	}
	defer wipe()
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, []byte(env.Purpose))
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

// newAEAD derives the key for env; wipe zeroes it once the caller is done.
func newAEAD(passphrase string, env *Envelope) (cipher.AEAD, func(), error) {
	p := env.Params
	key := argon2.IDKey([]byte(passphrase), env.Salt, p.Time, p.MemoryKB, p.Threads, chacha20poly1305.KeySize)
	wipe := func() { clear(key) }
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		wipe()
		return nil, nil, err
	}
	return aead, wipe, nil
}
