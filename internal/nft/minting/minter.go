package minting

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/shopspring/decimal"

	"ms-nft-ticketing/internal/models"
	"ms-nft-ticketing/internal/wallet"
)

// HTTPMinter calls an external mint service.
type HTTPMinter struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPMinter(baseURL string, client *http.Client) *HTTPMinter {
	return &HTTPMinter{BaseURL: baseURL, Client: client}
}

type mintRequest struct {
	MetadataURI string `json:"metadata_uri"`
	Chain       string `json:"chain"`
	Recipient   string `json:"recipient"`
	Reference   string `json:"reference"`
}

func (m *HTTPMinter) Mint(ctx context.Context, metadataURI, chain, recipient, reference string) (*models.MintResult, error) {
	body, err := json.Marshal(mintRequest{
		MetadataURI: metadataURI,
		Chain:       chain,
		Recipient:   recipient,
		Reference:   reference,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.BaseURL+"/api/v1/mint", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create mint request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mint service error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mint service returned status %d", resp.StatusCode)
	}

	var result models.MintResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode mint response: %w", err)
	}
	return &result, nil
}

func (m *HTTPMinter) LookupMint(ctx context.Context, reference string) (*models.MintResult, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", m.BaseURL+"/api/v1/mint/"+reference, nil)
	if err != nil {
		return nil, err
	}

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mint service error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mint service returned status %d", resp.StatusCode)
	}

	var result models.MintResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Operator accounts the simulated minter submits from.
const (
	simulatedEVMOperator    = "0x000000000000000000000000000000000000dEaD"
	simulatedSolanaOperator = "11111111111111111111111111111111"
)

// SimulatedMinter derives deterministic mint addresses from the request
// content and submits through an operator wallet per chain. Used when
// no mint service is configured (local and test environments).
type SimulatedMinter struct {
	mu      sync.Mutex
	wallets map[wallet.Provider]wallet.Wallet
	history map[string]*models.MintResult
}

func NewSimulatedMinter() *SimulatedMinter {
	factory := wallet.NewFactory()
	evm, _ := factory.CreateWallet(wallet.ProviderEVM, simulatedEVMOperator)
	sol, _ := factory.CreateWallet(wallet.ProviderSolana, simulatedSolanaOperator)
	return &SimulatedMinter{
		wallets: map[wallet.Provider]wallet.Wallet{
			wallet.ProviderEVM:    evm,
			wallet.ProviderSolana: sol,
		},
		history: make(map[string]*models.MintResult),
	}
}

func (m *SimulatedMinter) operatorWallet(ctx context.Context, chain string) (wallet.Wallet, error) {
	provider := wallet.ProviderEVM
	if chain == models.ChainSolana {
		provider = wallet.ProviderSolana
	}

	m.mu.Lock()
	w := m.wallets[provider]
	m.mu.Unlock()

	if !w.IsConnected() {
		if err := w.Connect(ctx); err != nil {
			return nil, fmt.Errorf("operator wallet connect failed: %w", err)
		}
	}
	return w, nil
}

func (m *SimulatedMinter) Mint(ctx context.Context, metadataURI, chain, recipient, reference string) (*models.MintResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, err := m.operatorWallet(ctx, chain)
	if err != nil {
		return nil, err
	}
	txHash, err := w.SendTransaction(ctx, decimal.Zero, recipient)
	if err != nil {
		return nil, fmt.Errorf("simulated mint submit failed: %w", err)
	}

	sum := sha256.Sum256([]byte(metadataURI + "|" + chain + "|" + recipient))
	result := &models.MintResult{
		MintAddress: "0x" + hex.EncodeToString(sum[:20]),
		TxHash:      txHash,
		Chain:       chain,
	}
	if chain == models.ChainSolana {
		result.MintAddress = hex.EncodeToString(sum[:22])
	}

	m.mu.Lock()
	m.history[reference] = result
	m.mu.Unlock()
	return result, nil
}

func (m *SimulatedMinter) LookupMint(ctx context.Context, reference string) (*models.MintResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history[reference], nil
}
