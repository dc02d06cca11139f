package daemonservice

import "jetlumen/go-backend/internal/domains/contracts/ports"

var _ ports.WalletAPI = (*Service)(nil)
var _ ports.KeystoreAPI = (*Service)(nil)
var _ ports.ActionAPI = (*Service)(nil)
var _ ports.StateAPI = (*Service)(nil)
var _ ports.LedgerAPI = (*Service)(nil)
var _ ports.DaemonService = (*Service)(nil)
