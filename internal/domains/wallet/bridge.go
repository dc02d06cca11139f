package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"jetlumen/go-backend/internal/domains/contracts"
	"jetlumen/go-backend/internal/domains/ledger"
)

// Bridge normalizes an Extension into typed results and sentinel errors.
// A nil extension means there is no host context.
type Bridge struct {
	ext        Extension
	passphrase string
	logger     *slog.Logger
}

func NewBridge(ext Extension, passphrase string, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{ext: ext, passphrase: passphrase, logger: logger.With("component", "wallet.bridge")}
}

func (b *Bridge) RequestAccess(ctx context.Context) (string, error) {
	if b.ext == nil {
		return "", walletError(contracts.ErrWalletUnavailable)
	}
	res, err := b.ext.RequestAccess(ctx)
	if err != nil {
		return "", walletError(fmt.Errorf("%w: %s", contracts.ErrAccessDenied, err.Error()))
	}
	if msg := strings.TrimSpace(res.Error); msg != "" {
		return "", walletError(fmt.Errorf("%w: %s", contracts.ErrAccessDenied, msg))
	}
	address := strings.TrimSpace(res.Address)
	if address == "" {
		return "", walletError(contracts.ErrNoAddress)
	}
	return address, nil
}

// GetAddress never fails; any problem is logged and reported as "".
func (b *Bridge) GetAddress(ctx context.Context) string {
	if b.ext == nil {
		return ""
	}
	res, err := b.ext.GetAddress(ctx)
	if err == nil && strings.TrimSpace(res.Error) != "" {
		err = fmt.Errorf("%s", res.Error)
	}
	if err != nil {
		b.logger.Warn("get address failed", "operation", "wallet.get_address", "error", err.Error())
		return ""
	}
	return strings.TrimSpace(res.Address)
}

func (b *Bridge) IsAvailable(ctx context.Context) bool {
	if b.ext == nil {
		return false
	}
	ok, err := b.ext.IsConnected(ctx)
	if err != nil {
		b.logger.Warn("availability check failed", "operation", "wallet.is_available", "error", err.Error())
		return false
	}
	return ok
}

func (b *Bridge) Sign(ctx context.Context, envelopeXDR, address string) (ledger.SignedEnvelope, error) {
	if b.ext == nil {
		return ledger.SignedEnvelope{}, walletError(contracts.ErrWalletUnavailable)
	}
	res, err := b.ext.SignTransaction(ctx, envelopeXDR, SignOptions{
		NetworkPassphrase: b.passphrase,
		Address:           address,
	})
	if err != nil {
		return ledger.SignedEnvelope{}, walletError(fmt.Errorf("%w: %s", contracts.ErrSigningFailed, err.Error()))
	}
	if msg := strings.TrimSpace(res.Error); msg != "" {
		return ledger.SignedEnvelope{}, walletError(fmt.Errorf("%w: %s", contracts.ErrSigningFailed, msg))
	}
	if strings.TrimSpace(res.SignedXDR) == "" {
		return ledger.SignedEnvelope{}, walletError(fmt.Errorf("%w: empty signed transaction", contracts.ErrSigningFailed))
	}
	signer := res.SignerAddress
	if signer == "" {
		signer = address
	}
	return ledger.SignedEnvelope{XDR: res.SignedXDR, SignerAddress: signer}, nil
}

func (b *Bridge) NetworkDetails(ctx context.Context) (NetworkDetails, error) {
	if b.ext == nil {
		return NetworkDetails{}, walletError(contracts.ErrWalletUnavailable)
	}
	details, err := b.ext.GetNetworkDetails(ctx)
	if err != nil {
		return NetworkDetails{}, walletError(fmt.Errorf("%w: network details: %s", contracts.ErrAccessDenied, err.Error()))
	}
	return details, nil
}

func walletError(err error) error {
	return contracts.WrapCategorizedError(contracts.ErrorCategoryWallet, err)
}
