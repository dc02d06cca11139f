package workflow

import (
	"jetlumen/go-backend/internal/domains/contract"
	"jetlumen/go-backend/internal/domains/ledger"
	"jetlumen/go-backend/internal/domains/mirror"
)

const (
	RouteLedger   = "ledger"
	RouteContract = "contract"

	EventActionCompleted    = "action.completed"
	EventActionFailed       = "action.failed"
	EventStateUpdated       = "state.updated"
	EventWalletConnected    = "wallet.connected"
	EventWalletDisconnected = "wallet.disconnected"
)

type ActionResult struct {
	ID          string                   `json:"id"`
	Mode        ledger.Mode              `json:"mode"`
	Address     string                   `json:"address"`
	Route       string                   `json:"route"`
	Transaction *ledger.SubmissionResult `json:"transaction,omitempty"`
	Contract    *contract.Result         `json:"contract,omitempty"`
	State       *mirror.State            `json:"state,omitempty"`
	Message     string                   `json:"message"`
}

type ActionFailure struct {
	ID       string      `json:"id"`
	Mode     ledger.Mode `json:"mode"`
	Category string      `json:"category"`
	Error    string      `json:"error"`
}

type Status struct {
	Available      bool   `json:"available"`
	Connected      bool   `json:"connected"`
	Address        string `json:"address,omitempty"`
	SessionID      string `json:"sessionId,omitempty"`
	Remembered     string `json:"rememberedAddress,omitempty"`
	ContractRouted bool   `json:"contractRouted"`
}

type ContractRoute struct {
	ID     string
	RPCURL string
}
