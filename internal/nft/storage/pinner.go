package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
)

// InlineURIPrefix is the scheme of the degraded fallback encoding used
// when the pinning service is unreachable.
const InlineURIPrefix = "data:application/json;base64,"

// Pinner uploads content to an off-chain pinning service and returns the
// content URI it was stored under.
type Pinner struct {
	BaseURL string
	Client  *http.Client
}

func NewPinner(baseURL string, client *http.Client) *Pinner {
	return &Pinner{BaseURL: baseURL, Client: client}
}

type pinResponse struct {
	URI string `json:"uri"`
}

// Upload sends the payload to the pin service. Callers treat any error
// as recoverable via InlineURI.
func (p *Pinner) Upload(ctx context.Context, data []byte) (string, error) {
	if p.BaseURL == "" {
		return "", fmt.Errorf("pin service not configured")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.BaseURL+"/api/v1/pins", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create pin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("pin service error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("pin service returned status %d", resp.StatusCode)
	}

	var pinned pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&pinned); err != nil {
		return "", fmt.Errorf("failed to decode pin response: %w", err)
	}
	if pinned.URI == "" {
		return "", fmt.Errorf("pin service returned empty URI")
	}
	return pinned.URI, nil
}

// InlineURI embeds the payload directly in a data URI. Degraded but
// non-blocking: minting proceeds even with the storage dependency down.
func InlineURI(data []byte) string {
	return InlineURIPrefix + base64.StdEncoding.EncodeToString(data)
}
