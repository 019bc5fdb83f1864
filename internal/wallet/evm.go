package wallet

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// EVMWallet is the primary-chain variant (ethereum/polygon addresses).
type EVMWallet struct {
	mu        sync.Mutex
	address   string
	connected bool
	nonce     uint64
}

func NewEVMWallet(address string) *EVMWallet {
	return &EVMWallet{address: address}
}

func (w *EVMWallet) Provider() Provider {
	return ProviderEVM
}

func (w *EVMWallet) Address() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.connected {
		return ""
	}
	return w.address
}

func (w *EVMWallet) IsConnected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

func (w *EVMWallet) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.address == "" {
		return fmt.Errorf("no EVM account configured")
	}
	w.connected = true
	return nil
}

func (w *EVMWallet) Disconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = false
}

func (w *EVMWallet) SendTransaction(ctx context.Context, amount decimal.Decimal, recipient string) (string, error) {
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
	return "0x" + hex.EncodeToString(sum[:]), nil
}
