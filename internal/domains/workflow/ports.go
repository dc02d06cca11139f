package workflow

import (
	"context"
	"time"

	"jetlumen/go-backend/internal/domains/ledger"
	"jetlumen/go-backend/internal/domains/mirror"
	"jetlumen/go-backend/internal/domains/wallet"
	"jetlumen/go-backend/internal/platform/notify"
)

type Identity interface {
	Resolve(ctx context.Context) (string, error)
	Disconnect() error
	Current() string
	Remembered() string
}

type Wallet interface {
	IsAvailable(ctx context.Context) bool
	Sign(ctx context.Context, envelopeXDR, address string) (ledger.SignedEnvelope, error)
	NetworkDetails(ctx context.Context) (wallet.NetworkDetails, error)
}

type TxBuilder interface {
	Build(ctx context.Context, source string, req ledger.Request) (ledger.Envelope, error)
}

type TxSubmitter interface {
	Submit(ctx context.Context, signed ledger.SignedEnvelope) (ledger.SubmissionResult, error)
}

type StateMirror interface {
	Read(ctx context.Context) (mirror.State, error)
	MirrorTransfer(ctx context.Context, recipient, amount string) (mirror.State, error)
}

type Notifier interface {
	Publish(method string, payload any) notify.Event
}

type Metrics interface {
	ObserveAction(mode, route, outcome string, elapsed time.Duration)
	RecordError(category string)
}
