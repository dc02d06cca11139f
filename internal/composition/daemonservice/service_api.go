package daemonservice

import (
	"context"
	"fmt"

	"jetlumen/go-backend/internal/domains/contracts"
	"jetlumen/go-backend/internal/domains/contracts/ports"
	"jetlumen/go-backend/internal/domains/ledger"
	"jetlumen/go-backend/internal/domains/mirror"
	"jetlumen/go-backend/internal/domains/wallet"
	"jetlumen/go-backend/internal/domains/workflow"
)

var errKeystoreDisabled = fmt.Errorf("%w: keystore extension is not configured", contracts.ErrWalletUnavailable)

func (s *Service) WalletStatus(ctx context.Context) workflow.Status {
	return s.workflow.Status(ctx)
}

func (s *Service) ConnectWallet(ctx context.Context) (workflow.Status, error) {
	return s.workflow.Connect(ctx)
}

func (s *Service) DisconnectWallet(ctx context.Context) (workflow.Status, error) {
	return s.workflow.Disconnect(ctx)
}

func (s *Service) WalletNetwork(ctx context.Context) (wallet.NetworkDetails, error) {
	return s.workflow.Network(ctx)
}

func (s *Service) CreateKeystore(password string) (ports.KeystoreCreated, error) {
	if s.keystore == nil {
		return ports.KeystoreCreated{}, errKeystoreDisabled
	}
	mnemonic, address, err := s.keystore.Create(password)
	if err != nil {
		return ports.KeystoreCreated{}, s.fail(contracts.ErrorCategoryWallet, "keystore.create", "", err)
	}
	s.opLog("keystore.create", "").Info("keystore created", "address", address)
	return ports.KeystoreCreated{Address: address, Mnemonic: mnemonic}, nil
}

func (s *Service) ImportKeystore(mnemonic, password string) (ports.KeystoreAccount, error) {
	if s.keystore == nil {
		return ports.KeystoreAccount{}, errKeystoreDisabled
	}
	address, err := s.keystore.Import(mnemonic, password)
	if err != nil {
		return ports.KeystoreAccount{}, s.fail(contracts.ErrorCategoryWallet, "keystore.import", "", err)
	}
	s.opLog("keystore.import", "").Info("keystore imported", "address", address)
	return ports.KeystoreAccount{Address: address}, nil
}

func (s *Service) UnlockKeystore(password string) (ports.KeystoreAccount, error) {
	if s.keystore == nil {
		return ports.KeystoreAccount{}, errKeystoreDisabled
	}
	address, err := s.keystore.Unlock(password)
	if err != nil {
		return ports.KeystoreAccount{}, s.fail(contracts.ErrorCategoryWallet, "keystore.unlock", "", err)
	}
	return ports.KeystoreAccount{Address: address}, nil
}

func (s *Service) LockKeystore() error {
	if s.keystore == nil {
		return errKeystoreDisabled
	}
	s.keystore.Lock()
	return nil
}

func (s *Service) SubmitAction(ctx context.Context, req ledger.Request) (workflow.ActionResult, error) {
	return s.workflow.Submit(ctx, req)
}

func (s *Service) GetState(ctx context.Context) (mirror.State, error) {
	return s.workflow.State(ctx)
}

func (s *Service) RecordTransfer(ctx context.Context, sender, recipient, amount string) (mirror.State, error) {
	return s.workflow.RecordTransfer(ctx, sender, recipient, amount)
}

func (s *Service) LedgerTransaction(ctx context.Context, hash string) (ledger.TransactionRecord, error) {
	record, err := s.reader.Transaction(ctx, hash)
	return record, s.fail(contracts.ErrorCategoryLedger, "ledger.transaction", hash, err)
}

func (s *Service) LedgerOperations(ctx context.Context, hash string) ([]ledger.OperationRecord, error) {
	ops, err := s.reader.Operations(ctx, hash)
	return ops, s.fail(contracts.ErrorCategoryLedger, "ledger.operations", hash, err)
}
