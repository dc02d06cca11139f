package keystore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
	"github.com/tyler-smith/go-bip39"

	"jetlumen/go-backend/internal/domains/wallet"
	"jetlumen/go-backend/internal/securestore"
)

const (
	FileName       = "keystore.vault"
	purpose        = "jetlumen/keystore/v1"
	maxFailures    = 5
	lockoutPeriod  = 30 * time.Second
	recordVersion  = 1
	msgLocked      = "keystore is locked"
	msgNoKeystore  = "no keystore; create or import one first"
	msgWrongSigner = "requested address does not match the keystore account"
)

var (
	ErrPasswordRequired = errors.New("password is required")
	ErrMnemonicRequired = errors.New("mnemonic is required")
	ErrInvalidMnemonic  = errors.New("invalid mnemonic")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrPasswordLocked   = errors.New("password attempts are temporarily locked")
	ErrNoKeystore       = errors.New("keystore does not exist")
)

type record struct {
	Version  int    `msgpack:"version"`
	Mnemonic string `msgpack:"mnemonic"`
	Address  string `msgpack:"address"`
}

// Keystore is a software wallet extension holding one Stellar account
// derived from a BIP-39 mnemonic that is encrypted at rest.
type Keystore struct {
	mu             sync.RWMutex
	path           string
	network        wallet.NetworkDetails
	kp             *keypair.Full
	failedAttempts int
	lockedUntil    time.Time
	now            func() time.Time
	logger         *slog.Logger
}

var _ wallet.Extension = (*Keystore)(nil)

func New(path string, network wallet.NetworkDetails, logger *slog.Logger) *Keystore {
	if logger == nil {
		logger = slog.Default()
	}
	return &Keystore{
		path:    path,
		network: network,
		now:     time.Now,
		logger:  logger.With("component", "wallet.keystore"),
	}
}

// Create generates a fresh 24-word mnemonic, stores it and unlocks the
// keystore. Like Import it needs the current password to replace a vault.
func (k *Keystore) Create(password string) (mnemonic, address string, err error) {
	if strings.TrimSpace(password) == "" {
		return "", "", ErrPasswordRequired
	}
	if err := k.authorizeReplace(password); err != nil {
		return "", "", err
	}
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", "", err
	}
	mnemonic, err = bip39.NewMnemonic(entropy)
	if err != nil {
		return "", "", err
	}
	address, err = k.store(mnemonic, password, "keystore.create")
	if err != nil {
		return "", "", err
	}
	return mnemonic, address, nil
}

// Import stores mnemonic and unlocks it. An existing keystore is only
// replaced when password opens it, so the unlock lockout applies here too.
func (k *Keystore) Import(mnemonic, password string) (string, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if mnemonic == "" {
		return "", ErrMnemonicRequired
	}
	if strings.TrimSpace(password) == "" {
		return "", ErrPasswordRequired
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return "", ErrInvalidMnemonic
	}
	if err := k.authorizeReplace(password); err != nil {
		return "", err
	}
	return k.store(mnemonic, password, "keystore.import")
}

func (k *Keystore) store(mnemonic, password, operation string) (string, error) {
	kp, err := deriveKeypair(mnemonic)
	if err != nil {
		return "", err
	}
	rec := record{Version: recordVersion, Mnemonic: mnemonic, Address: kp.Address()}
	if err := securestore.WriteSealed(k.path, password, purpose, rec); err != nil {
		return "", fmt.Errorf("persist keystore: %w", err)
	}

	k.mu.Lock()
	k.kp = kp
	k.resetAttemptsLocked()
	k.mu.Unlock()

	k.logger.Info("keystore stored", "operation", operation, "address", kp.Address())
	return kp.Address(), nil
}

// Unlock decrypts the stored mnemonic. Five consecutive wrong passwords lock
// further attempts for thirty seconds.
func (k *Keystore) Unlock(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrPasswordRequired
	}
	k.mu.Lock()
	if k.now().Before(k.lockedUntil) {
		k.mu.Unlock()
		return "", ErrPasswordLocked
	}
	k.mu.Unlock()

	var rec record
	if err := securestore.ReadSealed(k.path, password, purpose, &rec); err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return "", ErrNoKeystore
		case errors.Is(err, securestore.ErrAuthFailed):
			k.mu.Lock()
			k.onFailedAttemptLocked()
			k.mu.Unlock()
			k.logger.Warn("keystore unlock rejected", "operation", "keystore.unlock")
			return "", ErrInvalidPassword
		default:
			return "", fmt.Errorf("read keystore: %w", err)
		}
	}
	if rec.Version != recordVersion || !bip39.IsMnemonicValid(rec.Mnemonic) {
		return "", fmt.Errorf("%w: corrupted keystore", ErrInvalidMnemonic)
	}
	kp, err := deriveKeypair(rec.Mnemonic)
	if err != nil {
		return "", err
	}

	k.mu.Lock()
	k.kp = kp
	k.resetAttemptsLocked()
	k.mu.Unlock()
	return kp.Address(), nil
}

func (k *Keystore) authorizeReplace(password string) error {
	if !k.Exists() {
		return nil
	}
	if _, err := k.Unlock(password); err != nil && !errors.Is(err, ErrNoKeystore) {
		return fmt.Errorf("replace keystore: %w", err)
	}
	return nil
}

// Lock forgets the in-memory key. The encrypted file stays on disk.
func (k *Keystore) Lock() {
	k.mu.Lock()
	k.kp = nil
	k.mu.Unlock()
}

func (k *Keystore) Exists() bool {
	_, err := os.Stat(k.path)
	return err == nil
}

func (k *Keystore) Unlocked() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.kp != nil
}

func (k *Keystore) RequestAccess(context.Context) (wallet.AccessResult, error) {
	kp, msg := k.active()
	if kp == nil {
		return wallet.AccessResult{Error: msg}, nil
	}
	return wallet.AccessResult{Address: kp.Address()}, nil
}

func (k *Keystore) GetAddress(context.Context) (wallet.AccessResult, error) {
	kp, _ := k.active()
	if kp == nil {
		return wallet.AccessResult{}, nil
	}
	return wallet.AccessResult{Address: kp.Address()}, nil
}

func (k *Keystore) IsConnected(context.Context) (bool, error) {
	return k.Exists(), nil
}

func (k *Keystore) SignTransaction(_ context.Context, xdr string, opts wallet.SignOptions) (wallet.SignResult, error) {
	kp, msg := k.active()
	if kp == nil {
		return wallet.SignResult{Error: msg}, nil
	}
	if opts.Address != "" && opts.Address != kp.Address() {
		return wallet.SignResult{Error: msgWrongSigner}, nil
	}
	passphrase := opts.NetworkPassphrase
	if passphrase == "" {
		passphrase = k.network.NetworkPassphrase
	}

	generic, err := txnbuild.TransactionFromXDR(xdr)
	if err != nil {
		return wallet.SignResult{Error: "cannot parse transaction: " + err.Error()}, nil
	}
	tx, ok := generic.Transaction()
	if !ok {
		return wallet.SignResult{Error: "fee bump transactions are not supported"}, nil
	}
	tx, err = tx.Sign(passphrase, kp)
	if err != nil {
		return wallet.SignResult{Error: err.Error()}, nil
	}
	signed, err := tx.Base64()
	if err != nil {
		return wallet.SignResult{Error: err.Error()}, nil
	}
	return wallet.SignResult{SignedXDR: signed, SignerAddress: kp.Address()}, nil
}

func (k *Keystore) GetNetworkDetails(context.Context) (wallet.NetworkDetails, error) {
	return k.network, nil
}

func (k *Keystore) active() (*keypair.Full, string) {
	k.mu.RLock()
	kp := k.kp
	k.mu.RUnlock()
	if kp != nil {
		return kp, ""
	}
	if !k.Exists() {
		return nil, msgNoKeystore
	}
	return nil, msgLocked
}

func (k *Keystore) onFailedAttemptLocked() {
	k.failedAttempts++
	if k.failedAttempts >= maxFailures {
		k.lockedUntil = k.now().Add(lockoutPeriod)
		k.failedAttempts = 0
	}
}

func (k *Keystore) resetAttemptsLocked() {
	k.failedAttempts = 0
	k.lockedUntil = time.Time{}
}
