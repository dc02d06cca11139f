// Package privacylog keeps wallet secrets out of logs and replaces account
// addresses with per-process fingerprints.
package privacylog

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mr-tron/base58/base58"
	"github.com/stellar/go/strkey"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/blake2b"
)

const (
	Redacted          = "[REDACTED]"
	fingerprintPrefix = "fp_"
	fingerprintSuffix = "_fp"
)

type action int

const (
	keep action = iota
	redact
	fingerprint
)

var (
	fingerprintKey = newFingerprintKey()
	// Stellar addresses are public, but logs should not link a wallet to an operator.
	addressKeys = map[string]struct{}{
		"address":        {},
		"source":         {},
		"sender":         {},
		"recipient":      {},
		"counterparty":   {},
		"signer":         {},
		"last_recipient": {},
	}
	secretKeyParts = []string{"token", "secret", "password", "passphrase", "mnemonic", "seed", "authorization", "xdr"}
)

// Handler rewrites every attribute before it reaches the wrapped handler.
type Handler struct {
	next slog.Handler
}

func WrapHandler(next slog.Handler) slog.Handler {
	if next == nil {
		return nil
	}
	if _, ok := next.(*Handler); ok {
		return next
	}
	return &Handler{next: next}
}

// Wrap returns logger with a sanitizing handler. Already sanitized loggers
// are returned as-is.
func Wrap(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if _, ok := logger.Handler().(*Handler); ok {
		return logger
	}
	return slog.New(WrapHandler(logger.Handler()))
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(SanitizeAttr(attr))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		clean[i] = SanitizeAttr(attr)
	}
	return &Handler{next: h.next.WithAttrs(clean)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(name)}
}

func SanitizeAttr(attr slog.Attr) slog.Attr {
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		group := attr.Value.Group()
		clean := make([]slog.Attr, len(group))
		for i, member := range group {
			clean[i] = SanitizeAttr(member)
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(clean...)}
	}
	switch classify(attr.Key, attr.Value) {
	case redact:
		return slog.String(attr.Key, Redacted)
	case fingerprint:
		return slog.String(fingerprintName(attr.Key), FingerprintID(attr.Value.String()))
	default:
		return attr
	}
}

// FingerprintID is stable for the life of the process and unlinkable across restarts.
func FingerprintID(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	mac, err := blake2b.New(8, fingerprintKey)
	if err != nil {
		return fingerprintPrefix + "unavailable"
	}
	_, _ = mac.Write([]byte(trimmed))
	return fingerprintPrefix + base58.Encode(mac.Sum(nil))
}

func classify(key string, value slog.Value) action {
	lower := strings.ToLower(strings.TrimSpace(key))
	for _, part := range secretKeyParts {
		if strings.Contains(lower, part) {
			return redact
		}
	}
	if value.Kind() == slog.KindString && looksSecret(value.String()) {
		return redact
	}
	if _, ok := addressKeys[lower]; ok || strings.HasSuffix(lower, "_address") {
		return fingerprint
	}
	return keep
}

// looksSecret catches secret seeds and recovery phrases logged under an
// innocuous key.
func looksSecret(v string) bool {
	v = strings.TrimSpace(v)
	if len(v) == 56 && v[0] == 'S' && strkey.IsValidEd25519SecretSeed(v) {
		return true
	}
	words := len(strings.Fields(v))
	return (words == 12 || words == 24) && bip39.IsMnemonicValid(v)
}

func fingerprintName(key string) string {
	if strings.HasSuffix(strings.ToLower(key), fingerprintSuffix) {
		return key
	}
	return key + fingerprintSuffix
}

func newFingerprintKey() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(fmt.Sprintf("privacylog: read random key: %v", err))
	}
	return key
}
