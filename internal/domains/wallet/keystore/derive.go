package keystore

import (
	"crypto/sha256"
	"io"

	"github.com/stellar/go/keypair"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/hkdf"
)

const hkdfInfoStellarSigning = "jetlumen/stellar/signing/v1"

// deriveKeypair turns a validated mnemonic into the account signing key.
func deriveKeypair(mnemonic string) (*keypair.Full, error) {
	seed := bip39.NewSeed(mnemonic, "")
	defer zero(seed)

	reader := hkdf.New(sha256.New, seed, nil, []byte(hkdfInfoStellarSigning))
	var raw [32]byte
	if _, err := io.ReadFull(reader, raw[:]); err != nil {
		return nil, err
	}
	defer zero(raw[:])
	return keypair.FromRawSeed(raw)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
