package wallet

import (
	"fmt"
)

// Factory creates wallet instances per provider. Callers name the
// provider explicitly; there is no ambient default.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) CreateWallet(provider Provider, address string) (Wallet, error) {
	switch provider {
	case ProviderEVM:
		return NewEVMWallet(address), nil
	case ProviderSolana:
		return NewSolanaWallet(address), nil
	default:
		return nil, fmt.Errorf("unsupported wallet provider: %s", provider)
	}
}

func (f *Factory) SupportedProviders() []Provider {
	return []Provider{ProviderEVM, ProviderSolana}
}
