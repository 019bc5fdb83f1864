package wallet

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// SolanaWallet is the alternate-chain variant.
type SolanaWallet struct {
	mu        sync.Mutex
	address   string
	connected bool
	nonce     uint64
}

func NewSolanaWallet(address string) *SolanaWallet {
	return &SolanaWallet{address: address}
}

func (w *SolanaWallet) Provider() Provider {
	return ProviderSolana
}

func (w *SolanaWallet) Address() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.connected {
		return ""
	}
	return w.address
}

func (w *SolanaWallet) IsConnected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

func (w *SolanaWallet) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.address == "" {
		return fmt.Errorf("no Solana account configured")
	}
	w.connected = true
	return nil
}

func (w *SolanaWallet) Disconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = false
}

func (w *SolanaWallet) SendTransaction(ctx context.Context, amount decimal.Decimal, recipient string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.connected {
		return "", ErrNotConnected
	}

	w.nonce++
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d", w.address, recipient, amount.String(), w.nonce)))
	return hex.EncodeToString(sum[:]), nil
}
