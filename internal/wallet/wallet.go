package wallet

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Provider names the two independently implemented chains.
type Provider string

const (
	ProviderEVM    Provider = "evm"
	ProviderSolana Provider = "solana"
)

var ErrNotConnected = errors.New("wallet is not connected")

// Wallet is the narrow capability the purchase flow needs from a
// connected account. The two concrete variants are selected explicitly
// by the caller, never by ambient context.
type Wallet interface {
	Provider() Provider
	Address() string
	IsConnected() bool
	Connect(ctx context.Context) error
	Disconnect()
	SendTransaction(ctx context.Context, amount decimal.Decimal, recipient string) (string, error)
}
