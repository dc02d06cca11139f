package wallet

import "context"

// Extension is the host wallet. Implementations report user-facing failures
// through the Error fields and reserve the returned error for transport faults.
type Extension interface {
	RequestAccess(ctx context.Context) (AccessResult, error)
	GetAddress(ctx context.Context) (AccessResult, error)
	IsConnected(ctx context.Context) (bool, error)
	SignTransaction(ctx context.Context, xdr string, opts SignOptions) (SignResult, error)
	GetNetworkDetails(ctx context.Context) (NetworkDetails, error)
}

type AccessResult struct {
	Address string `json:"address"`
	Error   string `json:"error,omitempty"`
}

type SignOptions struct {
	NetworkPassphrase string `json:"networkPassphrase"`
	Address           string `json:"address,omitempty"`
}

type SignResult struct {
	SignedXDR     string `json:"signedTxXdr"`
	SignerAddress string `json:"signerAddress,omitempty"`
	Error         string `json:"error,omitempty"`
}

type NetworkDetails struct {
	Network           string `json:"network"`
	NetworkURL        string `json:"networkUrl"`
	NetworkPassphrase string `json:"networkPassphrase"`
	SorobanRPCURL     string `json:"sorobanRpcUrl,omitempty"`
}
